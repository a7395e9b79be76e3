package domain

import "strings"

// PasteMethod selects how delivered text reaches the focused window.
type PasteMethod string

const (
	PasteMethodClipboard        PasteMethod = "clipboard"
	PasteMethodClipboardRestore PasteMethod = "clipboard_restore"
	PasteMethodTyping           PasteMethod = "typing"
)

// ParsePasteMethod maps unknown values to the clipboard method.
func ParsePasteMethod(value string) PasteMethod {
	switch PasteMethod(strings.ToLower(strings.TrimSpace(value))) {
	case PasteMethodClipboardRestore:
		return PasteMethodClipboardRestore
	case PasteMethodTyping:
		return PasteMethodTyping
	default:
		return PasteMethodClipboard
	}
}

// CleanupMode selects the cleanup prompt.
type CleanupMode string

const (
	CleanupModeBasic  CleanupMode = "basic"
	CleanupModeFormal CleanupMode = "formal"
	CleanupModeCasual CleanupMode = "casual"
	CleanupModeCustom CleanupMode = "custom"
)

// ParseCleanupMode treats empty as basic and anything unrecognised as custom.
func ParseCleanupMode(value string) CleanupMode {
	switch mode := CleanupMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "", CleanupModeBasic:
		return CleanupModeBasic
	case CleanupModeFormal, CleanupModeCasual:
		return mode
	default:
		return CleanupModeCustom
	}
}

// OverlayPosition anchors the overlay window on the primary screen.
type OverlayPosition string

const (
	OverlayTopLeft      OverlayPosition = "top_left"
	OverlayTopCenter    OverlayPosition = "top_center"
	OverlayTopRight     OverlayPosition = "top_right"
	OverlayBottomLeft   OverlayPosition = "bottom_left"
	OverlayBottomCenter OverlayPosition = "bottom_center"
	OverlayBottomRight  OverlayPosition = "bottom_right"
)

// ParseOverlayPosition maps unknown values to bottom_center.
func ParseOverlayPosition(value string) OverlayPosition {
	switch pos := OverlayPosition(strings.ToLower(strings.TrimSpace(value))); pos {
	case OverlayTopLeft, OverlayTopCenter, OverlayTopRight,
		OverlayBottomLeft, OverlayBottomCenter, OverlayBottomRight:
		return pos
	default:
		return OverlayBottomCenter
	}
}

// DefaultCleanupPrompt is used for custom mode when the user left the prompt empty.
const DefaultCleanupPrompt = "You clean up transcribed speech. Output ONLY the cleaned text with no explanations, comments, or annotations. Remove filler words (um, uh, like, you know), fix grammar, and improve clarity while preserving the original meaning."

// Settings is an immutable snapshot of user configuration.
type Settings struct {
	SelectedDevice  string          `json:"selectedDevice"`
	CleanupEnabled  bool            `json:"cleanupEnabled"`
	CleanupMode     CleanupMode     `json:"cleanupMode"`
	CleanupPrompt   string          `json:"cleanupPrompt"`
	AutoPaste       bool            `json:"autoPaste"`
	PasteMethod     PasteMethod     `json:"pasteMethod"`
	OverlayPosition OverlayPosition `json:"overlayPosition"`
	Hotkey          string          `json:"hotkey"`
	WaveformStyle   string          `json:"waveformStyle"`
}

// DefaultSettings mirrors a fresh install.
func DefaultSettings() Settings {
	return Settings{
		CleanupEnabled:  true,
		CleanupMode:     CleanupModeBasic,
		CleanupPrompt:   DefaultCleanupPrompt,
		AutoPaste:       true,
		PasteMethod:     PasteMethodClipboard,
		OverlayPosition: OverlayBottomCenter,
		Hotkey:          "Control+Shift+Space",
		WaveformStyle:   "bars",
	}
}

// CustomPrompt returns the prompt to send with a cleanup request, or "" when
// the mode carries its own template.
func (s Settings) CustomPrompt() string {
	if s.CleanupMode != CleanupModeCustom {
		return ""
	}
	if strings.TrimSpace(s.CleanupPrompt) == "" {
		return DefaultCleanupPrompt
	}
	return s.CleanupPrompt
}
