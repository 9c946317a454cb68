package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planfill/internal/config"
	"planfill/internal/generator/gemini"
	"planfill/internal/port"
)

func newTestGenerator(serverURL string) *gemini.Generator {
	cfg := &config.GeneratorProviderConfig{
		Provider:     "gemini",
		APIKey:       "test-gemini-key",
		DefaultModel: "gemini-2.0-flash",
		TimeoutSecs:  30,
	}
	return gemini.NewGeneratorWithEndpoint(cfg, serverURL)
}

func successResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		gc := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", gc["responseMimeType"])
		assert.NotNil(t, reqBody["systemInstruction"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(successResponse(`{"Course Name":"Algorithms"}`))
	}))
	defer server.Close()

	result, err := newTestGenerator(server.URL).Generate(context.Background(), port.GenerateInput{
		Context: map[string]string{"course": "Algorithms"},
		Keys:    []string{"Course Name"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Algorithms", result.Content["Course Name"])
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), port.GenerateInput{Keys: []string{"A"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad request"}}`))
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), port.GenerateInput{Keys: []string{"A"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
