package deepgram

import (
	"strings"
	"sync"
)

type transcriptKind int

const (
	transcriptPartial transcriptKind = iota
	transcriptFinal
)

type transcriptEvent struct {
	Kind        transcriptKind
	Text        string
	SpeechFinal bool
}

// transcriptAggregator joins final segments. When the stream ends on an
// interim result that extends past the finals, the interim text is appended.
type transcriptAggregator struct {
	mu         sync.Mutex
	finals     []string
	lastSpoken string
}

func newTranscriptAggregator() *transcriptAggregator {
	return &transcriptAggregator{}
}

func (a *transcriptAggregator) Add(event transcriptEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	text := strings.TrimSpace(event.Text)
	if text == "" {
		return
	}
	a.lastSpoken = text
	if event.Kind == transcriptFinal {
		a.finals = append(a.finals, text)
	}
}

func (a *transcriptAggregator) Raw() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	joined := strings.TrimSpace(strings.Join(a.finals, " "))
	if joined == "" {
		return a.lastSpoken
	}
	if a.lastSpoken == "" || strings.HasSuffix(joined, a.lastSpoken) {
		return joined
	}
	if len(a.lastSpoken) > len(joined) {
		return strings.TrimSpace(joined + " " + a.lastSpoken)
	}
	return joined
}

// consume drains events into the aggregator until the session closes them.
func (a *transcriptAggregator) consume(events <-chan transcriptEvent, done chan struct{}) {
	defer close(done)
	for event := range events {
		a.Add(event)
	}
}
