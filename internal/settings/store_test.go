package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxtype/internal/domain"
)

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "settings.yaml"), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), store.Snapshot())
}

func TestOpenKeepsExplicitFalse(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, "cleanup_enabled: false\nauto_paste: false\n")
	store, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	got := store.Snapshot()
	assert.False(t, got.CleanupEnabled)
	assert.False(t, got.AutoPaste)
	assert.Equal(t, "Control+Shift+Space", got.Hotkey)
	assert.Equal(t, domain.PasteMethodClipboard, got.PasteMethod)
}

func TestOpenNormalisesUnknownValues(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, strings.Join([]string{
		"selected_device: '  USB Mic '",
		"cleanup_mode: pirate",
		"paste_method: telepathy",
		"overlay_position: middle",
		"waveform_style: spiral",
	}, "\n"))
	store, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	got := store.Snapshot()
	assert.Equal(t, "USB Mic", got.SelectedDevice)
	assert.Equal(t, domain.CleanupModeCustom, got.CleanupMode)
	assert.Equal(t, domain.PasteMethodClipboard, got.PasteMethod)
	assert.Equal(t, domain.OverlayBottomCenter, got.OverlayPosition)
	assert.Equal(t, "bars", got.WaveformStyle)
}

func TestOpenRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	_, err := Open(writeSettings(t, "hotkey: [unclosed"), zerolog.Nop())
	require.Error(t, err)

	_, err = Open(writeSettings(t, "hotkey: ''"), zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Hotkey")
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, "paste_method: typing\n")
	store, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("paste_method: [\n"), 0o600))
	got, err := store.Reload()
	require.Error(t, err)
	assert.Equal(t, domain.PasteMethodTyping, got.PasteMethod)
	assert.Equal(t, domain.PasteMethodTyping, store.Snapshot().PasteMethod)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	want := domain.DefaultSettings()
	want.SelectedDevice = "alsa_input.usb"
	want.CleanupMode = domain.CleanupModeFormal
	want.PasteMethod = domain.PasteMethodClipboardRestore
	want.OverlayPosition = domain.OverlayTopRight
	want.AutoPaste = false
	require.NoError(t, store.Save(want))
	assert.Equal(t, want, store.Snapshot())

	reopened, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, want, reopened.Snapshot())
}

func TestSaveRejectsEmptyHotkey(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "settings.yaml"), zerolog.Nop())
	require.NoError(t, err)

	bad := domain.DefaultSettings()
	bad.Hotkey = ""
	require.Error(t, store.Save(bad))
	assert.Equal(t, domain.DefaultSettings(), store.Snapshot())
}

func TestWatchReloadsOnChange(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, "overlay_position: top_left\n")
	store, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	changes := make(chan domain.Settings, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func(_, next domain.Settings) { changes <- next })
	}()

	// Rewrite until the watcher has been registered and sees the change.
	require.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte("overlay_position: top_right\n"), 0o600); err != nil {
			return false
		}
		select {
		case next := <-changes:
			return next.OverlayPosition == domain.OverlayTopRight
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, domain.OverlayTopRight, store.Snapshot().OverlayPosition)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("watch did not stop after cancel")
	}
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
