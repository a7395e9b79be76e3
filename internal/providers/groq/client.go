// Package groq talks to the Groq OpenAI-compatible API for Whisper
// transcription and chat-completion cleanup.
package groq

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL    = "https://api.groq.com/openai/v1"
	defaultSTTModel   = "whisper-large-v3"
	defaultChatModel  = "llama-3.1-8b-instant"
	defaultMaxTokens  = 2048
	defaultHTTPTimeout = 60 * time.Second
)

// Config configures both Groq adapters.
type Config struct {
	APIKey     string
	BaseURL    string
	STTModel   string
	ChatModel  string
	Language   string
	MaxTokens  int
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

type client struct {
	cfg  Config
	http *http.Client
}

func newClient(cfg Config) client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.STTModel == "" {
		cfg.STTModel = defaultSTTModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultChatModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client{cfg: cfg, http: httpClient}
}

// post sends body to path and returns the response payload for 2xx statuses.
func (c client) post(ctx context.Context, path string, contentType string, body io.Reader) ([]byte, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("GROQ_API_KEY is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build groq request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "groq request")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read groq response")
	}

	c.cfg.Logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Str("ratelimit_remaining", resp.Header.Get("x-ratelimit-remaining-requests")).
		Msg("groq response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf("groq API error %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return payload, nil
}
