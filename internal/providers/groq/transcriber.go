package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"

	"github.com/cockroachdb/errors"
)

// Transcriber uploads the recording to the Whisper transcription endpoint.
type Transcriber struct {
	client client
}

func NewTranscriber(cfg Config) *Transcriber {
	return &Transcriber{client: newClient(cfg)}
}

type whisperResponse struct {
	Text string `json:"text"`
}

func (t *Transcriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", errors.Wrap(err, "create form file")
	}
	if _, err := part.Write(wav); err != nil {
		return "", errors.Wrap(err, "write audio")
	}
	_ = writer.WriteField("model", t.client.cfg.STTModel)
	if t.client.cfg.Language != "" {
		_ = writer.WriteField("language", t.client.cfg.Language)
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "finish multipart body")
	}

	payload, err := t.client.post(ctx, "/audio/transcriptions", writer.FormDataContentType(), &body)
	if err != nil {
		return "", err
	}

	var resp whisperResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", errors.Wrap(err, "parse transcription response")
	}
	return resp.Text, nil
}
