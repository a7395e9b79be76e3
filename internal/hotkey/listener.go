package hotkey

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.design/x/hotkey"
)

// Listener calls onPress for key-downs of the registered binding. A press
// that arrives while the previous onPress is still running is dropped. The
// binding can be replaced while running.
type Listener struct {
	onPress  func()
	logger   zerolog.Logger
	inFlight atomic.Bool

	mu      sync.Mutex
	current *registration
}

type registration struct {
	binding Binding
	hk      *hotkey.Hotkey
	stop    chan struct{}
	done    chan struct{}
}

func NewListener(onPress func(), logger zerolog.Logger) *Listener {
	return &Listener{onPress: onPress, logger: logger}
}

// Bind registers accelerator, replacing the previous binding. Binding the
// accelerator that is already active is a no-op.
func (l *Listener) Bind(accelerator string) error {
	binding, err := Parse(accelerator)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil && l.current.binding.Accelerator == binding.Accelerator {
		return nil
	}

	hk := hotkey.New(binding.Mods, binding.Key)
	if err := hk.Register(); err != nil {
		return errors.Wrapf(err, "register hotkey %q", accelerator)
	}

	l.unbindLocked()
	reg := &registration{binding: binding, hk: hk, stop: make(chan struct{}), done: make(chan struct{})}
	l.current = reg
	go l.loop(reg)

	l.logger.Info().Str("hotkey", accelerator).Msg("hotkey registered")
	return nil
}

// Close unregisters the active binding.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unbindLocked()
}

func (l *Listener) unbindLocked() {
	if l.current == nil {
		return
	}
	close(l.current.stop)
	<-l.current.done
	if err := l.current.hk.Unregister(); err != nil {
		l.logger.Warn().Err(err).Str("hotkey", l.current.binding.Accelerator).Msg("failed to unregister hotkey")
	}
	l.current = nil
}

func (l *Listener) loop(reg *registration) {
	defer close(reg.done)
	for {
		select {
		case <-reg.stop:
			return
		case <-reg.hk.Keydown():
			l.logger.Debug().Str("hotkey", reg.binding.Accelerator).Msg("hotkey pressed")
			l.press()
		}
	}
}

// press runs onPress off the event loop, which must keep draining key
// events while a toggle blocks on the pipeline.
func (l *Listener) press() bool {
	if !l.inFlight.CompareAndSwap(false, true) {
		l.logger.Debug().Msg("hotkey press dropped; previous toggle still running")
		return false
	}
	go func() {
		defer l.inFlight.Store(false)
		l.onPress()
	}()
	return true
}
