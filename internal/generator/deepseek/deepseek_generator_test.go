package deepseek_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planfill/internal/config"
	"planfill/internal/generator"
	"planfill/internal/generator/deepseek"
	"planfill/internal/port"
)

func newTestGenerator(serverURL string) *deepseek.Generator {
	cfg := &config.GeneratorProviderConfig{
		Provider:     "deepseek",
		APIKey:       "test-deepseek-key",
		DefaultModel: "deepseek-chat",
		TimeoutSecs:  30,
	}
	return deepseek.NewGeneratorWithEndpoint(cfg, serverURL)
}

func successResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

func testInput() port.GenerateInput {
	return port.GenerateInput{
		Context: map[string]string{"course": "Algorithms", "instructor": "J. Chen"},
		Keys:    []string{"Course Name", "Objectives"},
	}
}

func TestGenerate_Success(t *testing.T) {
	llmJSON := `{"Course Name":"Intro to Algorithms","Objectives":"Understand asymptotic analysis."}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-deepseek-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "deepseek-chat", reqBody["model"])
		assert.Equal(t, 0.7, reqBody["temperature"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 2)
		system := messages[0].(map[string]interface{})
		assert.Equal(t, "system", system["role"])
		user := messages[1].(map[string]interface{})
		assert.Equal(t, "user", user["role"])
		assert.Contains(t, user["content"], "[Form Information]")
		assert.Contains(t, user["content"], "Course Name")

		rf := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", rf["type"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(successResponse(llmJSON))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)

	result, err := g.Generate(context.Background(), testInput())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "deepseek-chat", result.ModelUsed)
	assert.Equal(t, "Intro to Algorithms", result.Content["Course Name"])
}

func TestGenerate_FencedContentDecoded(t *testing.T) {
	fenced := "```json\n{\"Course Name\": \"Algorithms\"}\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(successResponse(fenced))
	}))
	defer server.Close()

	result, err := newTestGenerator(server.URL).Generate(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, "Algorithms", result.Content["Course Name"])
}

func TestGenerate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), testInput())

	var rlErr *generator.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "deepseek", rlErr.Provider)
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), testInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGenerate_TruncatedOutput(t *testing.T) {
	resp := successResponse(`{"partial":`)
	resp["choices"].([]map[string]interface{})[0]["finish_reason"] = "length"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), testInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestGenerate_UnparseableContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(successResponse("sorry, no JSON from me"))
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), testInput())

	require.Error(t, err)
}
