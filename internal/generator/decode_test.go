package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planfill/internal/generator"
)

func TestDecodeContentMap_PlainJSON(t *testing.T) {
	content, err := generator.DecodeContentMap(`{"Course Name":"Algorithms","Objectives":"sorting"}`)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Course Name": "Algorithms",
		"Objectives":  "sorting",
	}, content)
}

func TestDecodeContentMap_StripsCodeFences(t *testing.T) {
	raw := "```json\n{\"A\": \"x\"}\n```"

	content, err := generator.DecodeContentMap(raw)

	require.NoError(t, err)
	assert.Equal(t, "x", content["A"])
}

func TestDecodeContentMap_BareFence(t *testing.T) {
	raw := "```\n{\"A\": \"x\"}\n```"

	content, err := generator.DecodeContentMap(raw)

	require.NoError(t, err)
	assert.Equal(t, "x", content["A"])
}

func TestDecodeContentMap_SurroundingProse(t *testing.T) {
	raw := `Here is the filled template you asked for: {"A": "x", "B": "y"} Hope this helps!`

	content, err := generator.DecodeContentMap(raw)

	require.NoError(t, err)
	assert.Len(t, content, 2)
}

func TestDecodeContentMap_RepairsTrailingComma(t *testing.T) {
	raw := `{"A": "x", "B": "y",}`

	content, err := generator.DecodeContentMap(raw)

	require.NoError(t, err)
	assert.Equal(t, "y", content["B"])
}

func TestDecodeContentMap_CoercesNonStringValues(t *testing.T) {
	raw := `{"count": 3, "flag": true, "nothing": null, "list": ["a","b"]}`

	content, err := generator.DecodeContentMap(raw)

	require.NoError(t, err)
	assert.Equal(t, "3", content["count"])
	assert.Equal(t, "true", content["flag"])
	assert.Equal(t, "", content["nothing"])
	assert.Equal(t, `["a","b"]`, content["list"])
}

func TestDecodeContentMap_Unsalvageable(t *testing.T) {
	_, err := generator.DecodeContentMap("I could not produce any JSON today.")

	require.Error(t, err)
}

func TestDecodeContentMap_TruncatesRawInError(t *testing.T) {
	raw := "{" + string(make([]byte, 1000))

	_, err := generator.DecodeContentMap(raw)

	require.Error(t, err)
	assert.Less(t, len(err.Error()), 700)
}
