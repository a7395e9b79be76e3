package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"voxtype/internal/domain"
	"voxtype/internal/ports"
)

// pipeline runs transcribe → clean up → deliver for one captured buffer.
// Stages run strictly in order; only transcription failure ends the run
// without output.
type pipeline struct {
	transcriber ports.Transcriber
	cleaner     ports.Cleaner
	paster      ports.Paster
	clipboard   ports.Clipboard
	settings    ports.SettingsReader
	session     *session
	notifier    *overlayNotifier
	logger      zerolog.Logger
}

// Run returns nil when transcription failed.
func (p pipeline) Run(ctx context.Context, audio []byte) *domain.Transcription {
	raw, err := p.transcribe(ctx, audio)
	if err != nil {
		p.session.recordError(err)
		p.logger.Error().Err(err).Int("audio_bytes", len(audio)).Msg("transcription failed")
		return nil
	}

	result := domain.Transcription{Original: raw}

	// Settings are read per stage so an edit made mid-session applies here.
	if settings := p.settings.Snapshot(); settings.CleanupEnabled {
		p.session.setState(domain.SessionStateCleanup)
		p.notifier.NotifyState(domain.SessionStateCleanup)

		cleaned, err := p.cleanup(ctx, raw, settings)
		if err != nil {
			p.session.recordError(err)
			p.logger.Warn().Err(err).Str("mode", string(settings.CleanupMode)).Msg("cleanup failed, using raw transcription")
		} else {
			result.Cleaned = &cleaned
		}
	}

	p.deliver(ctx, result.Final())
	p.session.setResult(result)
	return &result
}

func (p pipeline) transcribe(ctx context.Context, audio []byte) (string, error) {
	text, err := p.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", stageError(err, ErrTranscriptionFailure, "transcribe audio")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.Mark(ErrNoSpeech, ErrTranscriptionFailure)
	}
	return text, nil
}

func (p pipeline) cleanup(ctx context.Context, text string, settings domain.Settings) (string, error) {
	cleaned, err := p.cleaner.Cleanup(ctx, text, settings.CleanupMode, settings.CustomPrompt())
	if err != nil {
		return "", stageError(err, ErrCleanupFailure, "clean up text")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", errors.Mark(errors.New("cleanup returned empty text"), ErrCleanupFailure)
	}
	return cleaned, nil
}

func (p pipeline) deliver(ctx context.Context, text string) {
	settings := p.settings.Snapshot()
	if !settings.AutoPaste {
		p.copy(ctx, text)
		return
	}

	if err := p.paster.Paste(ctx, text, settings.PasteMethod); err != nil {
		err = stageError(err, ErrPasteFailure, "paste text")
		p.session.recordError(err)
		p.logger.Warn().Err(err).Str("method", string(settings.PasteMethod)).Msg("paste failed, copying to clipboard")
		p.copy(ctx, text)
		return
	}
	p.logger.Info().Str("method", string(settings.PasteMethod)).Int("chars", len(text)).Msg("text pasted")
}

func (p pipeline) copy(ctx context.Context, text string) {
	if err := p.clipboard.SetText(ctx, text); err != nil {
		err = stageError(err, ErrClipboardFailure, "copy to clipboard")
		p.session.recordError(err)
		p.logger.Error().Err(err).Msg("clipboard copy failed")
		return
	}
	p.logger.Info().Int("chars", len(text)).Msg("text copied to clipboard")
}
