package groq

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedocs/termsheet-extractor/constants"
	"github.com/tradedocs/termsheet-extractor/internal/common"
	"github.com/tradedocs/termsheet-extractor/internal/llm"
)

// chatServer fakes an OpenAI-compatible chat/completions endpoint and
// captures the request body it received.
func chatServer(t *testing.T, reply string, status int) (*httptest.Server, *[]byte) {
	t.Helper()
	var lastBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		if status/100 == 2 {
			resp, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": reply}},
				},
			})
			_, _ = w.Write(resp)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &lastBody
}

func TestRunSummarization(t *testing.T) {
	srv, body := chatServer(t, "A concise summary.", http.StatusOK)
	c := NewClient(Config{BaseURL: srv.URL}, nil)

	res, err := c.Run(context.Background(), llm.Request{
		Text:      "long document text",
		Operation: constants.OperationSummarization,
		APIKey:    "gsk_test",
	})
	require.NoError(t, err)
	assert.Equal(t, "A concise summary.", res.Text)
	assert.Equal(t, "llama3-8b-8192", res.Model)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(*body, &sent))
	assert.Equal(t, "llama3-8b-8192", sent["model"])
	messages := sent["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].(string)
	assert.Contains(t, content, "long document text")
	assert.Contains(t, content, "concise summary")
}

func TestRunQAEmbedsQuestion(t *testing.T) {
	srv, body := chatServer(t, "EUR 10m", http.StatusOK)
	c := NewClient(Config{BaseURL: srv.URL}, nil)

	_, err := c.Run(context.Background(), llm.Request{
		Text:      "the document",
		Operation: constants.OperationQA,
		Question:  "What is the notional?",
		APIKey:    "gsk_test",
	})
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(*body, &sent))
	content := sent["messages"].([]any)[0].(map[string]any)["content"].(string)
	assert.Contains(t, content, "What is the notional?")
	assert.Contains(t, content, "the document")
}

func TestRunRequiresAPIKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://localhost:0"}, nil)
	_, err := c.Run(context.Background(), llm.Request{Text: "x", Operation: constants.OperationQA})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRunUpstreamFailure(t *testing.T) {
	srv, _ := chatServer(t, "", http.StatusInternalServerError)
	c := NewClient(Config{BaseURL: srv.URL}, nil)

	_, err := c.Run(context.Background(), llm.Request{
		Text:      "doc",
		Operation: constants.OperationSummarization,
		APIKey:    "gsk_test",
	})
	assert.ErrorIs(t, err, common.ErrModelUnavailable)
}

func TestRunEntityExtractionReturnsModelTextEvenWhenInvalid(t *testing.T) {
	// Schema violations are logged, not fatal: the caller still gets the
	// raw model output.
	srv, _ := chatServer(t, "not json at all", http.StatusOK)
	c := NewClient(Config{BaseURL: srv.URL}, nil)

	res, err := c.Run(context.Background(), llm.Request{
		Text:      "doc",
		Operation: constants.OperationEntityExtraction,
		APIKey:    "gsk_test",
	})
	require.NoError(t, err)
	assert.Equal(t, "not json at all", res.Text)
}

func TestRunDefaults(t *testing.T) {
	c := NewClient(Config{}, nil)
	assert.Equal(t, "https://api.groq.com/openai/v1", c.cfg.BaseURL)
	assert.Equal(t, "llama3-8b-8192", c.cfg.Model)
	assert.Equal(t, 6000, c.cfg.MaxTokens)
}
