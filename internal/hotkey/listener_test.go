package hotkey

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestListenerDropsPressWhileToggleRuns(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var calls atomic.Int32
	l := NewListener(func() {
		calls.Add(1)
		<-release
	}, zerolog.Nop())

	require.True(t, l.press())
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.False(t, l.press())
	require.False(t, l.press())

	close(release)
	require.Eventually(t, func() bool { return l.press() }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}
