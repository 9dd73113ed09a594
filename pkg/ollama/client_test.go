package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("localhost")
	assert.Error(t, err)

	c, err := NewClient("http://localhost:11434/api/chat")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.timeout)
}

func TestQuery(t *testing.T) {
	var got api.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/x-ndjson")
		json.NewEncoder(w).Encode(api.ChatResponse{
			Model:   got.Model,
			Message: api.Message{Role: "assistant", Content: `{"primary":{"label":"cat"}}`},
			Done:    true,
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	c.SetTimeout(5 * time.Second)

	img := base64.StdEncoding.EncodeToString([]byte("fake image"))
	out, err := c.Query(context.Background(), "minicpm-v4", "where?", img)
	require.NoError(t, err)
	assert.Equal(t, `{"primary":{"label":"cat"}}`, out)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "where?", got.Messages[0].Content)
	require.Len(t, got.Messages[0].Images, 1)
	assert.Equal(t, "fake image", string(got.Messages[0].Images[0]))
	assert.Equal(t, 4096.0, got.Options["num_ctx"])
}

func TestQueryBadImage(t *testing.T) {
	c, err := NewClient("http://localhost:1")
	require.NoError(t, err)
	_, err = c.Query(context.Background(), "m", "p", "%%%")
	assert.Error(t, err)
}

func TestModelOptions(t *testing.T) {
	assert.Empty(t, modelOptions("llava:7b"))
	assert.Equal(t, 0.7, modelOptions("openbmb/MiniCPM-V-4")["temperature"])
}
