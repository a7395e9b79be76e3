package overlay

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"voxtype/internal/domain"
)

func TestPlace(t *testing.T) {
	t.Parallel()

	screen := Size{Width: 1920, Height: 1080}
	cases := []struct {
		pos  domain.OverlayPosition
		want Point
	}{
		{domain.OverlayTopLeft, Point{X: 20, Y: 20}},
		{domain.OverlayTopCenter, Point{X: 820, Y: 20}},
		{domain.OverlayTopRight, Point{X: 1620, Y: 20}},
		{domain.OverlayBottomLeft, Point{X: 20, Y: 950}},
		{domain.OverlayBottomCenter, Point{X: 820, Y: 950}},
		{domain.OverlayBottomRight, Point{X: 1620, Y: 950}},
		{"middle", Point{X: 820, Y: 950}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.pos), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Place(tc.pos, screen))
		})
	}
}

func TestPrimaryScreen(t *testing.T) {
	t.Parallel()

	_, ok := primaryScreen(nil)
	require.False(t, ok)

	size, ok := primaryScreen([]runtime.Screen{
		testScreen(false, true, 800, 600),
		testScreen(true, false, 2560, 1440),
	})
	require.True(t, ok)
	assert.Equal(t, Size{Width: 2560, Height: 1440}, size)

	size, ok = primaryScreen([]runtime.Screen{
		testScreen(false, false, 1024, 768),
		testScreen(false, true, 800, 600),
	})
	require.True(t, ok)
	assert.Equal(t, Size{Width: 800, Height: 600}, size)
}

func TestWindowRequiresAttach(t *testing.T) {
	t.Parallel()

	w := newWindow(&fakeRuntime{}, zerolog.Nop())
	err := w.Show(context.Background(), domain.OverlayTopLeft)
	require.True(t, errors.Is(err, ErrNotAttached), "got %v", err)
	require.True(t, errors.Is(w.EmitState(context.Background(), domain.SessionStateIdle), ErrNotAttached))
}

func TestWindowShowPlacesAndShows(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{screens: []runtime.Screen{testScreen(true, false, 1920, 1080)}}
	w := newWindow(rt, zerolog.Nop())
	w.Attach(context.Background())

	require.NoError(t, w.Show(context.Background(), domain.OverlayTopRight))
	require.True(t, w.Visible())

	snap := rt.snapshot()
	assert.Equal(t, []Point{{X: 1620, Y: 20}}, snap.positions)
	assert.Equal(t, 1, snap.shows)

	require.NoError(t, w.Hide(context.Background()))
	require.False(t, w.Visible())
	assert.Equal(t, 1, rt.snapshot().hides)
}

func TestWindowShowFailsWithoutScreens(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{screenErr: errors.New("no display")}
	w := newWindow(rt, zerolog.Nop())
	w.Attach(context.Background())

	require.Error(t, w.Show(context.Background(), domain.OverlayTopLeft))
	require.False(t, w.Visible())
	assert.Zero(t, rt.snapshot().shows)
}

func TestWindowEmitsEvents(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{}
	w := newWindow(rt, zerolog.Nop())
	w.Attach(context.Background())

	require.NoError(t, w.EmitState(context.Background(), domain.SessionStateRecording))
	require.NoError(t, w.EmitLevels(context.Background(), []float64{0.1, 0.2}))

	events := rt.snapshot().events
	require.Len(t, events, 2)
	assert.Equal(t, EventStateChanged, events[0].name)
	assert.Equal(t, map[string]string{"state": "recording"}, events[0].data)
	assert.Equal(t, EventLevelsChanged, events[1].name)
	assert.Equal(t, map[string][]float64{"levels": {0.1, 0.2}}, events[1].data)
}

func TestWindowRepositionOnlyWhenVisible(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{screens: []runtime.Screen{testScreen(true, false, 1000, 800)}}
	w := newWindow(rt, zerolog.Nop())
	w.Attach(context.Background())

	require.NoError(t, w.Reposition(context.Background(), domain.OverlayTopLeft))
	assert.Empty(t, rt.snapshot().positions)

	require.NoError(t, w.Show(context.Background(), domain.OverlayBottomCenter))
	require.NoError(t, w.Reposition(context.Background(), domain.OverlayBottomCenter))
	require.NoError(t, w.Reposition(context.Background(), domain.OverlayTopLeft))
	assert.Equal(t, []Point{{X: 360, Y: 670}, {X: 20, Y: 20}}, rt.snapshot().positions)
}

func TestWindowHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	w := newWindow(&fakeRuntime{}, zerolog.Nop())
	w.Attach(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, w.Hide(ctx), context.Canceled)
}

func testScreen(primary, current bool, width, height int) runtime.Screen {
	s := runtime.Screen{IsPrimary: primary, IsCurrent: current}
	s.Size.Width = width
	s.Size.Height = height
	return s
}

type emitted struct {
	name string
	data interface{}
}

type runtimeSnapshot struct {
	events    []emitted
	positions []Point
	shows     int
	hides     int
}

type fakeRuntime struct {
	mu        sync.Mutex
	screens   []runtime.Screen
	screenErr error
	state     runtimeSnapshot
}

func (f *fakeRuntime) EventsEmit(_ context.Context, name string, data ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payload interface{}
	if len(data) > 0 {
		payload = data[0]
	}
	f.state.events = append(f.state.events, emitted{name: name, data: payload})
}

func (f *fakeRuntime) ScreenGetAll(context.Context) ([]runtime.Screen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screens, f.screenErr
}

func (f *fakeRuntime) WindowSetPosition(_ context.Context, x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.positions = append(f.state.positions, Point{X: x, Y: y})
}

func (f *fakeRuntime) WindowShow(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.shows++
}

func (f *fakeRuntime) WindowHide(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.hides++
}

func (f *fakeRuntime) snapshot() runtimeSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := runtimeSnapshot{shows: f.state.shows, hides: f.state.hides}
	out.events = append(out.events, f.state.events...)
	out.positions = append(out.positions, f.state.positions...)
	return out
}
