package generator

import (
	"encoding/json"
	"fmt"

	"planfill/internal/port"
)

// BuildFillPrompt returns the system directive for template fill generation.
func BuildFillPrompt() string {
	return `You are a professional instructional-design writer. You will receive a form-fill request containing [Form Information] (metadata the user supplied) and [Field List] (the keys of every blank to fill). Write the content for every key in the field list, grounded in the form information and especially the course outline.

IMPORTANT INSTRUCTIONS:
- Keys of the form "{phase} > {column}_row{N}" are consecutive steps of a classroom process. Write one short, concrete action phrase per key. No numbering, no bullet lists, no repetition across rows of the same phase.
- Keys containing "analysis", "objective", "objectives", "rationale" or "reflection" are narrative fields. Write several sentences of substantive prose covering multiple distinct points.
- Keys containing "rationale" or "policy" must be concrete and specific to this course; never write generic filler.
- All other keys get one or two sentences appropriate to the label.
- Write in the language of the course outline.

Return ONLY a valid JSON object with no markdown formatting, no code fences, no explanation — just the raw JSON object. Every key from the field list must appear exactly once, mapped to a string. Do not add, drop, or rename keys.`
}

// BuildFillPayload serializes the user context and batch keys into the
// user message body.
func BuildFillPayload(input port.GenerateInput) (string, error) {
	ctxJSON, err := json.MarshalIndent(input.Context, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling user context: %w", err)
	}
	keysJSON, err := json.Marshal(input.Keys)
	if err != nil {
		return "", fmt.Errorf("marshaling keys: %w", err)
	}
	return fmt.Sprintf("[Form Information]\n%s\n\n[Field List]\n%s", ctxJSON, keysJSON), nil
}
