// Package paste delivers text into the focused window through the system
// clipboard and synthesised keystrokes.
package paste

import (
	"context"
	"time"

	cb "github.com/atotto/clipboard"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"voxtype/internal/domain"
)

type clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type keyboard interface {
	PasteChord() error
	Type(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return cb.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return cb.WriteAll(text) }

// Config tunes the delays around the paste chord.
type Config struct {
	// SettleDelay lets the clipboard owner publish the new text before the
	// paste chord is sent.
	SettleDelay time.Duration
	// RestoreDelay is how long clipboard_restore waits after pasting before
	// putting the previous contents back.
	RestoreDelay time.Duration
	Logger       zerolog.Logger
}

// Paster implements both the paste methods and the plain clipboard copy.
type Paster struct {
	clip   clipboard
	keys   keyboard
	cfg    Config
	logger zerolog.Logger
}

func New(cfg Config) *Paster {
	return newPaster(systemClipboard{}, newKeybdKeyboard(), cfg)
}

func newPaster(clip clipboard, keys keyboard, cfg Config) *Paster {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 50 * time.Millisecond
	}
	if cfg.RestoreDelay <= 0 {
		cfg.RestoreDelay = 100 * time.Millisecond
	}
	return &Paster{clip: clip, keys: keys, cfg: cfg, logger: cfg.Logger}
}

// Paste delivers text with method. Unknown methods use the clipboard method.
func (p *Paster) Paste(ctx context.Context, text string, method domain.PasteMethod) error {
	switch method {
	case domain.PasteMethodTyping:
		return p.typeText(text)
	case domain.PasteMethodClipboardRestore:
		return p.pasteAndRestore(ctx, text)
	default:
		return p.pasteViaClipboard(ctx, text)
	}
}

// SetText copies text to the clipboard without pasting.
func (p *Paster) SetText(_ context.Context, text string) error {
	if err := p.clip.WriteAll(text); err != nil {
		return errors.Wrap(err, "write clipboard")
	}
	return nil
}

func (p *Paster) pasteViaClipboard(ctx context.Context, text string) error {
	if err := p.clip.WriteAll(text); err != nil {
		return errors.Wrap(err, "write clipboard")
	}
	if err := sleep(ctx, p.cfg.SettleDelay); err != nil {
		return err
	}
	if err := p.keys.PasteChord(); err != nil {
		return errors.Wrap(err, "send paste keystroke")
	}
	return nil
}

func (p *Paster) pasteAndRestore(ctx context.Context, text string) error {
	previous, readErr := p.clip.ReadAll()
	if readErr != nil {
		p.logger.Debug().Err(readErr).Msg("clipboard unreadable, nothing to restore")
	}

	if err := p.pasteViaClipboard(ctx, text); err != nil {
		return err
	}
	if readErr != nil {
		return nil
	}

	if err := sleep(ctx, p.cfg.RestoreDelay); err != nil {
		return err
	}
	if err := p.clip.WriteAll(previous); err != nil {
		p.logger.Warn().Err(err).Msg("failed to restore clipboard")
	}
	return nil
}

func (p *Paster) typeText(text string) error {
	if err := p.keys.Type(text); err != nil {
		return errors.Wrap(err, "type text")
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
