package paste

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/micmonay/keybd_event"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxtype/internal/domain"
)

func TestPasteClipboardMethod(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{contents: "old"}
	keys := &fakeKeyboard{clip: clip}
	p := newPaster(clip, keys, Config{SettleDelay: time.Millisecond, Logger: zerolog.Nop()})

	require.NoError(t, p.Paste(context.Background(), "It works.", domain.PasteMethodClipboard))

	assert.Equal(t, []string{"It works."}, keys.pastedSnapshot())
	assert.Equal(t, "It works.", clip.current())
}

func TestPasteUnknownMethodUsesClipboard(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	keys := &fakeKeyboard{clip: clip}
	p := newPaster(clip, keys, Config{SettleDelay: time.Millisecond})

	require.NoError(t, p.Paste(context.Background(), "hi", domain.PasteMethod("bogus")))
	assert.Equal(t, []string{"hi"}, keys.pastedSnapshot())
}

func TestPasteClipboardRestoreMethod(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{contents: "previous"}
	keys := &fakeKeyboard{clip: clip}
	p := newPaster(clip, keys, Config{SettleDelay: time.Millisecond, RestoreDelay: time.Millisecond})

	require.NoError(t, p.Paste(context.Background(), "dictated", domain.PasteMethodClipboardRestore))

	assert.Equal(t, []string{"dictated"}, keys.pastedSnapshot())
	assert.Equal(t, "previous", clip.current())
}

func TestPasteClipboardRestoreWithUnreadableClipboard(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{readErr: errors.New("no text")}
	keys := &fakeKeyboard{clip: clip}
	p := newPaster(clip, keys, Config{SettleDelay: time.Millisecond, RestoreDelay: time.Millisecond, Logger: zerolog.Nop()})

	require.NoError(t, p.Paste(context.Background(), "dictated", domain.PasteMethodClipboardRestore))
	assert.Equal(t, "dictated", clip.current())
}

func TestPasteChordFailure(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	keys := &fakeKeyboard{clip: clip, chordErr: errors.New("uinput missing")}
	p := newPaster(clip, keys, Config{SettleDelay: time.Millisecond})

	err := p.Paste(context.Background(), "x", domain.PasteMethodClipboard)
	require.ErrorContains(t, err, "uinput missing")
}

func TestPasteHonoursCancellation(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	keys := &fakeKeyboard{clip: clip}
	p := newPaster(clip, keys, Config{SettleDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Paste(ctx, "x", domain.PasteMethodClipboard)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, keys.pastedSnapshot())
}

func TestPasteTypingMethod(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{contents: "untouched"}
	keys := &fakeKeyboard{clip: clip}
	p := newPaster(clip, keys, Config{})

	require.NoError(t, p.Paste(context.Background(), "hello", domain.PasteMethodTyping))
	assert.Equal(t, []string{"hello"}, keys.typedSnapshot())
	assert.Equal(t, "untouched", clip.current())
}

func TestSetText(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	p := newPaster(clip, &fakeKeyboard{clip: clip}, Config{})
	require.NoError(t, p.SetText(context.Background(), "copied"))
	assert.Equal(t, "copied", clip.current())

	clip.writeErr = errors.New("locked")
	require.ErrorContains(t, p.SetText(context.Background(), "again"), "locked")
}

func TestPlanStrokes(t *testing.T) {
	t.Parallel()

	strokes, err := planStrokes("Hi 7")
	require.NoError(t, err)
	assert.Equal(t, []stroke{
		{code: keybd_event.VK_H, shift: true},
		{code: keybd_event.VK_I},
		{code: keybd_event.VK_SPACE},
		{code: keybd_event.VK_7},
	}, strokes)

	strokes, err = planStrokes("Go!")
	require.NoError(t, err)
	assert.Equal(t, stroke{code: keybd_event.VK_1, shift: true}, strokes[2])

	_, err = planStrokes("café")
	require.ErrorContains(t, err, "offset 3")
}

type fakeClipboard struct {
	mu       sync.Mutex
	contents string
	readErr  error
	writeErr error
}

func (f *fakeClipboard) ReadAll() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.contents, nil
}

func (f *fakeClipboard) WriteAll(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.contents = text
	return nil
}

func (f *fakeClipboard) current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contents
}

// fakeKeyboard records what a paste chord would have inserted.
type fakeKeyboard struct {
	mu       sync.Mutex
	clip     *fakeClipboard
	chordErr error
	pasted   []string
	typed    []string
}

func (f *fakeKeyboard) PasteChord() error {
	if f.chordErr != nil {
		return f.chordErr
	}
	text := f.clip.current()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pasted = append(f.pasted, text)
	return nil
}

func (f *fakeKeyboard) Type(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typed = append(f.typed, text)
	return nil
}

func (f *fakeKeyboard) pastedSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.pasted...)
}

func (f *fakeKeyboard) typedSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.typed...)
}
