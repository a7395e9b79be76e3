package ports

import (
	"context"

	"voxtype/internal/domain"
)

// Recorder owns the microphone and the captured audio buffer.
type Recorder interface {
	StartCapture(ctx context.Context, device string) error
	StopCapture(ctx context.Context) ([]byte, error)
	IsRecording(ctx context.Context) bool
}

// DeviceLister enumerates the capture sources a Recorder accepts.
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]domain.AudioDevice, error)
}

// LevelSource reports the most recent normalized amplitude window.
type LevelSource interface {
	SampleLevels(ctx context.Context) ([]float64, error)
}

// Transcriber turns captured audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Cleaner improves raw transcription text. prompt is empty unless mode is custom.
type Cleaner interface {
	Cleanup(ctx context.Context, text string, mode domain.CleanupMode, prompt string) (string, error)
}

// Paster delivers text into the focused window.
type Paster interface {
	Paste(ctx context.Context, text string, method domain.PasteMethod) error
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// Overlay is the secondary presentation surface. Implementations may fail;
// callers treat every method as best effort.
type Overlay interface {
	Show(ctx context.Context, position domain.OverlayPosition) error
	Hide(ctx context.Context) error
	EmitState(ctx context.Context, state domain.SessionState) error
	EmitLevels(ctx context.Context, levels []float64) error
}

// SettingsReader returns the current user settings snapshot.
type SettingsReader interface {
	Snapshot() domain.Settings
}
