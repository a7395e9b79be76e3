package usecase

import (
	"github.com/cockroachdb/errors"

	"voxtype/internal/domain"
)

// Fatal errors abort the session and reach the caller of Begin/End.
var (
	ErrStartFailure = errors.New("start capture failed")
	ErrStopFailure  = errors.New("stop capture failed")
)

// Recoverable errors are absorbed by the pipeline stage that produced them.
var (
	ErrTranscriptionFailure = errors.New("transcription failed")
	ErrCleanupFailure       = errors.New("cleanup failed")
	ErrPasteFailure         = errors.New("paste failed")
	ErrClipboardFailure     = errors.New("clipboard copy failed")
	ErrOverlayFailure       = errors.New("overlay update failed")
)

var (
	ErrSessionActive   = errors.New("a recording session is already active")
	ErrPipelineBusy    = errors.New("transcription pipeline is still running")
	ErrNoActiveSession = errors.New("no active recording session")
	ErrNoSpeech        = errors.New("no speech detected")
)

// stageError wraps err with context and marks it with the stage sentinel.
func stageError(err error, mark error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), mark)
}

// CodeOf maps an error to the code shown by the presentation layer.
func CodeOf(err error) domain.ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStartFailure), errors.Is(err, ErrSessionActive):
		return domain.ErrorCodeStart
	case errors.Is(err, ErrStopFailure), errors.Is(err, ErrPipelineBusy), errors.Is(err, ErrNoActiveSession):
		return domain.ErrorCodeStop
	case errors.Is(err, ErrTranscriptionFailure):
		return domain.ErrorCodeTranscription
	case errors.Is(err, ErrCleanupFailure):
		return domain.ErrorCodeCleanup
	case errors.Is(err, ErrPasteFailure):
		return domain.ErrorCodePaste
	case errors.Is(err, ErrClipboardFailure):
		return domain.ErrorCodeClipboard
	case errors.Is(err, ErrOverlayFailure):
		return domain.ErrorCodeOverlay
	default:
		return domain.ErrorCodeUnknown
	}
}
