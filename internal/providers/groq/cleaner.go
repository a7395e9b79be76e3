package groq

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"voxtype/internal/cleanup"
	"voxtype/internal/domain"
)

// Cleaner rewrites transcriptions with a chat-completion model.
type Cleaner struct {
	client client
}

func NewCleaner(cfg Config) *Cleaner {
	return &Cleaner{client: newClient(cfg)}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Cleaner) Cleanup(ctx context.Context, text string, mode domain.CleanupMode, prompt string) (string, error) {
	request := chatRequest{
		Model: c.client.cfg.ChatModel,
		Messages: []chatMessage{
			{Role: "system", Content: cleanup.SystemPrompt(mode, prompt)},
			{Role: "user", Content: cleanup.UserPrompt(mode, text)},
		},
		MaxTokens: c.client.cfg.MaxTokens,
	}
	body, err := json.Marshal(request)
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}

	payload, err := c.client.post(ctx, "/chat/completions", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", errors.Wrap(err, "parse chat response")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq returned no choices")
	}
	return cleanup.Sanitize(resp.Choices[0].Message.Content), nil
}
