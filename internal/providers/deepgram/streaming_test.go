package deepgram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"voxtype/internal/audio"
)

func TestNewTranscriberDefaults(t *testing.T) {
	t.Parallel()

	tr := NewTranscriber(Config{})
	if tr.cfg.APIBaseURL != "https://api.deepgram.com/v1" {
		t.Fatalf("unexpected base url: %q", tr.cfg.APIBaseURL)
	}
	if tr.cfg.Model != "nova-2" {
		t.Fatalf("unexpected model: %q", tr.cfg.Model)
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	t.Parallel()

	tr := NewTranscriber(Config{APIKey: ""})
	if _, err := tr.Transcribe(context.Background(), audio.EncodeWAV(nil, audio.Format{SampleRate: 16000, Channels: 1})); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestTranscribeRejectsNonWAV(t *testing.T) {
	t.Parallel()

	tr := NewTranscriber(Config{APIKey: "key"})
	_, err := tr.Transcribe(context.Background(), []byte("garbage"))
	require.ErrorContains(t, err, "decode recording")
}

func TestTranscribeStreamsAudioAndJoinsFinals(t *testing.T) {
	t.Parallel()

	server := newFakeDeepgram(t, []string{
		`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":"hello"}]}}`,
		`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"Hello world."}]}}`,
		`{"type":"Results","is_final":true,"speech_final":true,"channel":{"alternatives":[{"transcript":"It works."}]}}`,
		`{"type":"Metadata"}`,
	})

	tr := NewTranscriber(Config{APIKey: "secret", APIBaseURL: server.URL(), Logger: zerolog.Nop()})
	pcm := make([]byte, chunkSize+100)
	text, err := tr.Transcribe(context.Background(), audio.EncodeWAV(pcm, audio.Format{SampleRate: 16000, Channels: 1}))
	require.NoError(t, err)
	require.Equal(t, "Hello world. It works.", text)

	require.Equal(t, "Token secret", server.authHeader())
	require.Equal(t, len(pcm), server.receivedBytes())
	require.Contains(t, server.rawQuery(), "sample_rate=16000")
	require.Contains(t, server.rawQuery(), "model=nova-2")
}

func TestTranscribeReturnsProviderError(t *testing.T) {
	t.Parallel()

	server := newFakeDeepgram(t, []string{`{"type":"Error","message":"invalid audio"}`})

	tr := NewTranscriber(Config{APIKey: "secret", APIBaseURL: server.URL(), Logger: zerolog.Nop()})
	_, err := tr.Transcribe(context.Background(), audio.EncodeWAV([]byte{0, 0}, audio.Format{SampleRate: 16000, Channels: 1}))
	require.ErrorContains(t, err, "invalid audio")
}

func TestBuildListenURLDefaults(t *testing.T) {
	t.Parallel()

	url, err := buildListenURL(Config{APIBaseURL: "https://api.deepgram.com/v1", Model: "nova-2"}, audio.Format{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(url, "wss://api.deepgram.com/v1/listen") {
		t.Fatalf("unexpected ws url: %s", url)
	}
	if !strings.Contains(url, "encoding=linear16") {
		t.Fatalf("expected default encoding in url: %s", url)
	}
	if !strings.Contains(url, "sample_rate=16000") {
		t.Fatalf("expected default sample_rate in url: %s", url)
	}
	if !strings.Contains(url, "channels=1") {
		t.Fatalf("expected default channels in url: %s", url)
	}
}

func TestBuildListenURLWithLanguageAndSmartFormat(t *testing.T) {
	t.Parallel()

	url, err := buildListenURL(
		Config{APIBaseURL: "http://localhost:8080/v1", Model: "m", Language: "en-US", SmartFormat: true},
		audio.Format{SampleRate: 8000, Channels: 2},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"ws://localhost:8080/v1/listen", "language=en-US", "smart_format=true", "sample_rate=8000", "channels=2"} {
		if !strings.Contains(url, want) {
			t.Fatalf("expected %q in url: %s", want, url)
		}
	}
}

func TestBuildListenURLInvalidBase(t *testing.T) {
	t.Parallel()

	if _, err := buildListenURL(Config{APIBaseURL: ":// bad"}, audio.Format{}); err == nil {
		t.Fatalf("expected invalid base url error")
	}
}

func TestExtractTranscript(t *testing.T) {
	t.Parallel()

	var r1 deepgramResponse
	require.NoError(t, json.Unmarshal([]byte(`{"channel":{"alternatives":[{"transcript":" channel "}]}}`), &r1))
	if got := extractTranscript(r1); got != "channel" {
		t.Fatalf("unexpected transcript from channel: %q", got)
	}

	var r2 deepgramResponse
	require.NoError(t, json.Unmarshal([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"results"}]}]}}`), &r2))
	if got := extractTranscript(r2); got != "results" {
		t.Fatalf("unexpected transcript from results: %q", got)
	}

	if got := extractTranscript(deepgramResponse{}); got != "" {
		t.Fatalf("expected empty transcript, got %q", got)
	}
}

func TestStreamingSessionSendAudioClosed(t *testing.T) {
	t.Parallel()

	s := &streamingSession{sendClosed: true}
	if err := s.SendAudio([]byte("x")); err == nil {
		t.Fatalf("expected closed error")
	}
}

func TestStreamingSessionCloseSendIsIdempotent(t *testing.T) {
	t.Parallel()

	s := &streamingSession{audio: make(chan []byte, 1)}
	if err := s.CloseSend(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.CloseSend(); err != nil {
		t.Fatalf("unexpected second error: %v", err)
	}
}

func TestStreamingSessionSetErrIgnoresCloseErrors(t *testing.T) {
	t.Parallel()

	s := &streamingSession{}
	s.setErr(&websocket.CloseError{Code: websocket.CloseNormalClosure, Text: "closed"})
	if s.waitErr() != nil {
		t.Fatalf("expected close error to be ignored")
	}

	s.setErr(errors.New("boom"))
	if s.waitErr() == nil || s.waitErr().Error() != "boom" {
		t.Fatalf("expected non-close error to be captured")
	}
}

func TestStreamingSessionSetErrFirstWins(t *testing.T) {
	t.Parallel()

	s := &streamingSession{}
	s.setErr(errors.New("first"))
	s.setErr(errors.New("second"))
	if s.waitErr() == nil || s.waitErr().Error() != "first" {
		t.Fatalf("expected first error to win")
	}
}

// fakeDeepgram accepts one stream, counts binary audio until CloseStream and
// then replays responses before closing normally.
type fakeDeepgram struct {
	server *httptest.Server

	mu       sync.Mutex
	auth     string
	query    string
	received int
}

func newFakeDeepgram(t *testing.T, responses []string) *fakeDeepgram {
	t.Helper()

	f := &fakeDeepgram{}
	upgrader := websocket.Upgrader{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.auth = r.Header.Get("Authorization")
		f.query = r.URL.RawQuery
		f.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			kind, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind == websocket.BinaryMessage {
				f.mu.Lock()
				f.received += len(payload)
				f.mu.Unlock()
				continue
			}
			if strings.Contains(string(payload), "CloseStream") {
				break
			}
		}

		for _, response := range responses {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(response)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeDeepgram) URL() string { return f.server.URL + "/v1" }

func (f *fakeDeepgram) authHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth
}

func (f *fakeDeepgram) rawQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

func (f *fakeDeepgram) receivedBytes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.received
}

func TestStreamingSessionSetErrIgnoresWrappedCloseErrors(t *testing.T) {
	t.Parallel()

	s := &streamingSession{}
	s.setErr(errors.Wrap(&websocket.CloseError{Code: websocket.CloseGoingAway}, "read provider event"))
	if s.waitErr() != nil {
		t.Fatalf("expected wrapped close error to be ignored")
	}
}
