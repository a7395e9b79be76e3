package domain

// SessionState models the record → transcribe → clean up → deliver lifecycle.
type SessionState string

const (
	SessionStateIdle         SessionState = "idle"
	SessionStateListening    SessionState = "listening"
	SessionStateRecording    SessionState = "recording"
	SessionStateTranscribing SessionState = "transcribing"
	SessionStateCleanup      SessionState = "cleanup"
	SessionStateDone         SessionState = "done"
)

// Capturing reports whether the microphone is open in this state.
func (s SessionState) Capturing() bool {
	return s == SessionStateListening || s == SessionStateRecording
}

// Processing reports whether the pipeline owns the session in this state.
func (s SessionState) Processing() bool {
	return s == SessionStateTranscribing || s == SessionStateCleanup
}

// LevelWindowSize is the fixed number of level samples kept per session.
const LevelWindowSize = 32

// ErrorCode identifies which stage produced an error.
type ErrorCode string

const (
	ErrorCodeStart         ErrorCode = "start"
	ErrorCodeStop          ErrorCode = "stop"
	ErrorCodeTranscription ErrorCode = "transcription"
	ErrorCodeCleanup       ErrorCode = "cleanup"
	ErrorCodePaste         ErrorCode = "paste"
	ErrorCodeClipboard     ErrorCode = "clipboard"
	ErrorCodeOverlay       ErrorCode = "overlay"
	ErrorCodeUnknown       ErrorCode = "unknown"
)

// Transcription is the result of one successful session.
// Cleaned is nil when cleanup was disabled or failed.
type Transcription struct {
	Original string  `json:"originalText"`
	Cleaned  *string `json:"cleanedText,omitempty"`
}

// Final returns the text that was delivered.
func (t Transcription) Final() string {
	if t.Cleaned != nil {
		return *t.Cleaned
	}
	return t.Original
}

// AudioDevice is a capture source the recorder can open. Name is the value
// passed as the device when starting a session.
type AudioDevice struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"isDefault"`
}

// SessionError is the presentation form of the last error.
type SessionError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Status summarizes the current session for the presentation layer.
type Status struct {
	State      SessionState   `json:"state"`
	Active     bool           `json:"active"`
	Levels     []float64      `json:"levels"`
	LastResult *Transcription `json:"lastResult,omitempty"`
	LastError  *SessionError  `json:"lastError,omitempty"`
}
