package usecase

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"voxtype/internal/domain"
	"voxtype/internal/ports"
)

type levelPoller struct {
	source    ports.LevelSource
	session   *session
	notifier  *overlayNotifier
	interval  time.Duration
	window    int
	threshold float64
	logger    zerolog.Logger
}

type pollerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// start launches the sampling loop. The returned handle must be stopped
// before the session leaves the capturing states.
func (p levelPoller) start(parent context.Context) *pollerHandle {
	ctx, cancel := context.WithCancel(parent)
	h := &pollerHandle{cancel: cancel, done: make(chan struct{})}
	go p.run(ctx, h.done)
	return h
}

// stop cancels the loop and waits for it to exit. No samples are delivered
// after stop returns.
func (h *pollerHandle) stop() {
	h.cancel()
	<-h.done
}

func (p levelPoller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p levelPoller) tick(ctx context.Context) {
	raw, err := p.source.SampleLevels(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Debug().Err(err).Msg("failed to sample audio levels")
		return
	}

	levels := normalizeLevels(raw, p.window)
	p.session.setLevels(levels)
	p.notifier.NotifyLevels(levels)

	// Speech onset only ever promotes; silence never demotes back to listening.
	if maxLevel(levels) > p.threshold && p.session.promote(domain.SessionStateListening, domain.SessionStateRecording) {
		p.logger.Debug().Float64("level", maxLevel(levels)).Msg("speech detected")
		p.notifier.NotifyState(domain.SessionStateRecording)
	}
}

// normalizeLevels pads with zeros or truncates to size and clamps to [0,1].
func normalizeLevels(raw []float64, size int) []float64 {
	levels := make([]float64, size)
	for i := 0; i < size && i < len(raw); i++ {
		switch v := raw[i]; {
		case math.IsNaN(v), v < 0:
			levels[i] = 0
		case v > 1:
			levels[i] = 1
		default:
			levels[i] = v
		}
	}
	return levels
}

func maxLevel(levels []float64) float64 {
	peak := 0.0
	for _, v := range levels {
		if v > peak {
			peak = v
		}
	}
	return peak
}
