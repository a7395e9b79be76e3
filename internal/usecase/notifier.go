package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"voxtype/internal/domain"
	"voxtype/internal/ports"
)

type overlayCall struct {
	name string
	fn   func(ctx context.Context) error
}

// overlayNotifier mirrors session state to the overlay. Calls are queued and
// delivered in order by a single worker; a full queue drops the call. Failures
// are logged and never retried.
type overlayNotifier struct {
	overlay ports.Overlay
	queue   chan overlayCall
	timeout time.Duration
	logger  zerolog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newOverlayNotifier(overlay ports.Overlay, queueSize int, timeout time.Duration, logger zerolog.Logger) *overlayNotifier {
	n := &overlayNotifier{
		overlay: overlay,
		queue:   make(chan overlayCall, queueSize),
		timeout: timeout,
		logger:  logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *overlayNotifier) NotifyState(state domain.SessionState) {
	n.enqueue("state", func(ctx context.Context) error {
		return n.overlay.EmitState(ctx, state)
	})
}

func (n *overlayNotifier) NotifyLevels(levels []float64) {
	copied := append([]float64(nil), levels...)
	n.enqueue("levels", func(ctx context.Context) error {
		return n.overlay.EmitLevels(ctx, copied)
	})
}

func (n *overlayNotifier) Show(position domain.OverlayPosition) {
	n.enqueue("show", func(ctx context.Context) error {
		return n.overlay.Show(ctx, position)
	})
}

func (n *overlayNotifier) Hide() {
	n.enqueue("hide", func(ctx context.Context) error {
		return n.overlay.Hide(ctx)
	})
}

// Close stops the worker. Queued calls that were not delivered are discarded.
func (n *overlayNotifier) Close() {
	n.stopOnce.Do(func() { close(n.stop) })
	<-n.done
}

func (n *overlayNotifier) enqueue(name string, fn func(ctx context.Context) error) {
	if n.overlay == nil {
		return
	}
	select {
	case <-n.stop:
		return
	default:
	}

	select {
	case n.queue <- overlayCall{name: name, fn: fn}:
	default:
		n.logger.Warn().Str("call", name).Msg("overlay queue full, dropping update")
	}
}

func (n *overlayNotifier) run() {
	defer close(n.done)
	for {
		select {
		case <-n.stop:
			return
		case call := <-n.queue:
			n.deliver(call)
		}
	}
}

func (n *overlayNotifier) deliver(call overlayCall) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			n.logFailure(call.name, errors.Newf("panic: %v", r))
		}
	}()

	if err := call.fn(ctx); err != nil {
		n.logFailure(call.name, err)
	}
}

func (n *overlayNotifier) logFailure(name string, err error) {
	err = errors.Mark(errors.Wrapf(err, "overlay %s", name), ErrOverlayFailure)
	n.logger.Warn().Err(err).Str("call", name).Msg("overlay update failed")
}
