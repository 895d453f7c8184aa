package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageJSON(text string) map[string]any {
	return map[string]any{
		"id":          "msg_test_001",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-sonnet-4-5-20250929",
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":                1200,
			"output_tokens":               80,
			"cache_creation_input_tokens": 0,
			"cache_read_input_tokens":     900,
		},
	}
}

func TestCreateMessage_WithImage(t *testing.T) {
	img := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/messages")

		var body struct {
			System   []map[string]any `json:"system"`
			Messages []struct {
				Role    string           `json:"role"`
				Content []map[string]any `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 1)
		content := body.Messages[0].Content
		require.Len(t, content, 2)
		assert.Equal(t, "image", content[0]["type"])
		src := content[0]["source"].(map[string]any)
		assert.Equal(t, "base64", src["type"])
		assert.Equal(t, "image/jpeg", src["media_type"])
		assert.Equal(t, base64.StdEncoding.EncodeToString(img), src["data"])
		assert.Equal(t, "text", content[1]["type"])
		require.Len(t, body.System, 1)
		assert.NotNil(t, body.System[0]["cache_control"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageJSON(`{"street":"Rue de la Roquette"}`)) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewClient("test-key", option.WithBaseURL(ts.URL))
	resp, err := c.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 512,
		System:    BuildCachedSystemBlocks("find the street"),
		Messages: []Message{{
			Role:    "user",
			Content: "Where is this?",
			Images:  []Image{{MediaType: "image/jpeg", Data: img}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"street":"Rue de la Roquette"}`, resp.Text())
	assert.Equal(t, int64(900), resp.Usage.CacheReadInputTokens)
}

func TestCreateMessage_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad image"}}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", option.WithBaseURL(ts.URL))
	_, err := c.CreateMessage(context.Background(), MessageRequest{Model: "m", MaxTokens: 1, Messages: []Message{{Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
}

func TestToSDKMessages_Roles(t *testing.T) {
	msgs := toSDKMessages([]Message{{Role: "user", Content: "a"}, {Role: "assistant", Content: "b"}, {Role: "x", Content: "c"}})
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
	assert.Equal(t, "user", string(msgs[2].Role))
	assert.Empty(t, toSDKMessages(nil))
}

func TestToSDKSystemBlocks(t *testing.T) {
	blocks := toSDKSystemBlocks([]SystemBlock{{Text: "plain"}, {Text: "cached", CacheControl: &CacheControl{}}})
	require.Len(t, blocks, 2)
	assert.Equal(t, "plain", blocks[0].Text)
	assert.Equal(t, "cached", blocks[1].Text)
}

func TestEstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 18.0, u.EstimateCost("claude-sonnet-4-5-20250929"), 1e-9)
	assert.Zero(t, u.EstimateCost("unknown"))

	u = TokenUsage{CacheReadInputTokens: 1_000_000}
	assert.InDelta(t, 0.3, u.EstimateCost("claude-sonnet-4-5-20250929"), 1e-9)
}

func TestMessageResponse_Text(t *testing.T) {
	r := &MessageResponse{Content: []ContentBlock{{Type: "text", Text: "a"}, {Type: "tool_use"}, {Type: "text", Text: "b"}}}
	assert.Equal(t, "ab", r.Text())
}
