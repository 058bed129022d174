package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func completionServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestComplete(t *testing.T) {
	var captured chatRequest

	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "generated text"}},
			},
		})
	})

	client := NewClientWithURL("test-key", server.URL)

	content, err := client.Complete(context.Background(), CompletionRequest{
		System:      "you are a test",
		User:        "say something",
		Temperature: 0.3,
		JSONObject:  true,
	})

	assert.NoError(t, err)
	assert.Equal(t, "generated text", content)

	assert.Equal(t, defaultModel, captured.Model)
	assert.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "you are a test", captured.Messages[0].Content)
	assert.Equal(t, 0.3, captured.Temperature)
	assert.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
}

func TestComplete_OmitsResponseFormatForPlainText(t *testing.T) {
	var captured chatRequest

	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	})

	client := NewClientWithURL("test-key", server.URL)
	_, err := client.Complete(context.Background(), CompletionRequest{User: "hi"})

	assert.NoError(t, err)
	assert.Nil(t, captured.ResponseFormat)
}

func TestComplete_NoAPIKey(t *testing.T) {
	client := NewClient("")

	assert.False(t, client.Configured())

	_, err := client.Complete(context.Background(), CompletionRequest{User: "hi"})
	assert.Error(t, err)
}

func TestComplete_NonOKStatus(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	})

	client := NewClientWithURL("test-key", server.URL)
	_, err := client.Complete(context.Background(), CompletionRequest{User: "hi"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestComplete_EmptyChoices(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	})

	client := NewClientWithURL("test-key", server.URL)
	_, err := client.Complete(context.Background(), CompletionRequest{User: "hi"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestComplete_APIErrorBody(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "model overloaded", "type": "server_error"},
		})
	})

	client := NewClientWithURL("test-key", server.URL)
	_, err := client.Complete(context.Background(), CompletionRequest{User: "hi"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}
