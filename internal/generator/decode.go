package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// DecodeContentMap extracts a flat key→string object from free-form
// model output. Repair passes run in order: strip code fences, cut to
// the outermost brace block, drop trailing commas. Returns an error
// instead of panicking on anything unsalvageable.
func DecodeContentMap(raw string) (map[string]string, error) {
	text := stripFences(raw)

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	content, err := decodeObject(text)
	if err == nil {
		return content, nil
	}

	repaired := trailingCommaRe.ReplaceAllString(text, "$1")
	content, rerr := decodeObject(repaired)
	if rerr == nil {
		return content, nil
	}

	return nil, fmt.Errorf("decoding content object: %w (raw: %s)", err, truncate(raw, 500))
}

func decodeObject(text string) (map[string]string, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, err
	}
	content := make(map[string]string, len(obj))
	for k, v := range obj {
		content[k] = coerceString(v)
	}
	return content, nil
}

// stripFences removes a leading ```json (or bare ```) fence and the
// matching closing fence.
func stripFences(s string) string {
	text := strings.TrimSpace(s)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	} else {
		return text
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
