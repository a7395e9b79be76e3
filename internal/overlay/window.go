package overlay

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"voxtype/internal/domain"
)

// Event names consumed by the overlay frontend.
const (
	EventStateChanged  = "recording-state-changed"
	EventLevelsChanged = "audio-levels-changed"
)

// ErrNotAttached is returned before the Wails runtime has started.
var ErrNotAttached = errors.New("overlay window is not attached to a runtime")

// Runtime is the subset of the Wails runtime the overlay drives.
type Runtime interface {
	EventsEmit(ctx context.Context, name string, data ...interface{})
	ScreenGetAll(ctx context.Context) ([]runtime.Screen, error)
	WindowSetPosition(ctx context.Context, x, y int)
	WindowShow(ctx context.Context)
	WindowHide(ctx context.Context)
}

type wailsRuntime struct{}

func (wailsRuntime) EventsEmit(ctx context.Context, name string, data ...interface{}) {
	runtime.EventsEmit(ctx, name, data...)
}

func (wailsRuntime) ScreenGetAll(ctx context.Context) ([]runtime.Screen, error) {
	return runtime.ScreenGetAll(ctx)
}

func (wailsRuntime) WindowSetPosition(ctx context.Context, x, y int) {
	runtime.WindowSetPosition(ctx, x, y)
}

func (wailsRuntime) WindowShow(ctx context.Context) { runtime.WindowShow(ctx) }
func (wailsRuntime) WindowHide(ctx context.Context) { runtime.WindowHide(ctx) }

// Window implements ports.Overlay on top of the Wails main window.
// Runtime calls are made with the application context captured at startup;
// the per-call context only bounds how long the caller is willing to wait.
type Window struct {
	rt     Runtime
	logger zerolog.Logger

	mu       sync.RWMutex
	appCtx   context.Context
	visible  bool
	position domain.OverlayPosition
}

func NewWindow(logger zerolog.Logger) *Window {
	return newWindow(wailsRuntime{}, logger)
}

func newWindow(rt Runtime, logger zerolog.Logger) *Window {
	return &Window{rt: rt, logger: logger, position: domain.OverlayBottomCenter}
}

// Attach binds the window to the Wails application context.
func (w *Window) Attach(ctx context.Context) {
	w.mu.Lock()
	w.appCtx = ctx
	w.mu.Unlock()
}

func (w *Window) Show(ctx context.Context, position domain.OverlayPosition) error {
	appCtx, err := w.runtimeContext(ctx)
	if err != nil {
		return err
	}
	if err := w.place(appCtx, position); err != nil {
		return err
	}
	w.rt.WindowShow(appCtx)

	w.mu.Lock()
	w.visible = true
	w.position = position
	w.mu.Unlock()
	return nil
}

func (w *Window) Hide(ctx context.Context) error {
	appCtx, err := w.runtimeContext(ctx)
	if err != nil {
		return err
	}
	w.rt.WindowHide(appCtx)

	w.mu.Lock()
	w.visible = false
	w.mu.Unlock()
	return nil
}

func (w *Window) EmitState(ctx context.Context, state domain.SessionState) error {
	appCtx, err := w.runtimeContext(ctx)
	if err != nil {
		return err
	}
	w.rt.EventsEmit(appCtx, EventStateChanged, map[string]string{"state": string(state)})
	return nil
}

func (w *Window) EmitLevels(ctx context.Context, levels []float64) error {
	appCtx, err := w.runtimeContext(ctx)
	if err != nil {
		return err
	}
	w.rt.EventsEmit(appCtx, EventLevelsChanged, map[string][]float64{"levels": levels})
	return nil
}

// Reposition moves a visible overlay after the position setting changed.
// A hidden overlay picks up the new position on its next Show.
func (w *Window) Reposition(ctx context.Context, position domain.OverlayPosition) error {
	w.mu.RLock()
	visible, current := w.visible, w.position
	w.mu.RUnlock()
	if !visible || current == position {
		return nil
	}

	appCtx, err := w.runtimeContext(ctx)
	if err != nil {
		return err
	}
	if err := w.place(appCtx, position); err != nil {
		return err
	}

	w.mu.Lock()
	w.position = position
	w.mu.Unlock()
	return nil
}

// Visible reports whether the last Show has not been followed by a Hide.
func (w *Window) Visible() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.visible
}

func (w *Window) place(appCtx context.Context, position domain.OverlayPosition) error {
	screens, err := w.rt.ScreenGetAll(appCtx)
	if err != nil {
		return errors.Wrap(err, "list screens")
	}
	screen, ok := primaryScreen(screens)
	if !ok {
		return errors.New("no screen available for overlay")
	}

	origin := Place(position, screen)
	w.rt.WindowSetPosition(appCtx, origin.X, origin.Y)
	w.logger.Debug().
		Str("position", string(position)).
		Int("x", origin.X).
		Int("y", origin.Y).
		Msg("overlay placed")
	return nil
}

func (w *Window) runtimeContext(ctx context.Context) (context.Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.appCtx == nil {
		return nil, ErrNotAttached
	}
	return w.appCtx, nil
}

// primaryScreen prefers the primary screen, then the current one, then the first.
func primaryScreen(screens []runtime.Screen) (Size, bool) {
	if len(screens) == 0 {
		return Size{}, false
	}
	pick := screens[0]
	for _, s := range screens {
		if s.IsPrimary {
			pick = s
			break
		}
		if s.IsCurrent {
			pick = s
		}
	}
	return Size{Width: pick.Size.Width, Height: pick.Size.Height}, true
}
