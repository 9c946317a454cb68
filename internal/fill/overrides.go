package fill

import (
	"strings"

	"planfill/internal/domain"
	"planfill/internal/infer"
)

// identityAliases maps a normalized label to the UserContext fields it
// can be filled from, in lookup order. These fields are identity data
// the backend must never rewrite.
var identityAliases = map[string][]string{
	"serial number":   {"serial_number", "serial number", "no"},
	"no.":             {"serial_number", "serial number", "no"},
	"course name":     {"course", "course_name", "course name"},
	"course title":    {"course", "course_name", "course name"},
	"instructor":      {"instructor", "teacher", "instructor_name"},
	"instructor name": {"instructor", "teacher", "instructor_name"},
	"teacher":         {"instructor", "teacher", "instructor_name"},
	"teacher name":    {"instructor", "teacher", "instructor_name"},
	"class":           {"class", "class_name"},
	"time":            {"time", "schedule", "date", "schedule_time"},
	"date":            {"time", "schedule", "date", "schedule_time"},
	"date and time":   {"time", "schedule", "date", "schedule_time"},
	"schedule":        {"time", "schedule", "date", "schedule_time"},
	"location":        {"location", "venue", "place"},
	"venue":           {"location", "venue", "place"},
	"department":      {"department", "dept"},
	"course nature":   {"course_nature", "nature"},
}

// ApplyOverrides forces user-supplied identity values into the content
// map, after generation, for every binding whose label aliases an
// identity field. Both the qualified key and the bare label entry are
// overridden so later lookups by either form see the user's value.
func ApplyOverrides(content domain.ContentMap, structure domain.Structure, userCtx domain.UserContext) {
	for _, b := range structure {
		if b.Sequential {
			continue
		}
		value, ok := lookupIdentity(b.Label, userCtx)
		if !ok {
			continue
		}
		content[b.Key] = value
		if _, exists := content[b.Label]; exists && b.Label != b.Key {
			content[b.Label] = value
		}
	}
}

// lookupIdentity resolves a label to a user-supplied identity value.
func lookupIdentity(label string, userCtx domain.UserContext) (string, bool) {
	fields, ok := identityAliases[infer.Normalize(label)]
	if !ok {
		return "", false
	}
	for _, f := range fields {
		if v := strings.TrimSpace(userCtx[f]); v != "" {
			return v, true
		}
	}
	return "", false
}
