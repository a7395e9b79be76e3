package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"voxtype/internal/bootstrap"
	"voxtype/internal/config"
	"voxtype/internal/domain"
	"voxtype/internal/hotkey"
	"voxtype/internal/overlay"
	"voxtype/internal/usecase"
)

const eventError = "voxtype:error"

type hotkeyBinder interface {
	Bind(accelerator string) error
	Close()
}

// App is the Wails application root.
type App struct {
	ctx    context.Context
	cfg    config.Config
	logger zerolog.Logger

	overlay    *overlay.Window
	hotkeys    hotkeyBinder
	controller *usecase.SessionController
	services   bootstrap.Services
	bootErr    error

	stopWatch context.CancelFunc
}

func NewApp(cfg config.Config, logger zerolog.Logger) *App {
	return &App{
		cfg:     cfg,
		logger:  logger.With().Str("component", "app").Logger(),
		overlay: overlay.NewWindow(logger.With().Str("component", "overlay-window").Logger()),
	}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.overlay.Attach(ctx)

	services, err := bootstrap.Build(a.cfg, a.overlay, &wailsClipboard{ctx: ctx}, a.logger)
	if err != nil {
		a.bootErr = err
		a.logger.Error().Err(err).Msg("startup failed")
		a.sessionError(err)
		return
	}
	a.services = services
	a.controller = services.Controller

	a.hotkeys = hotkey.NewListener(a.onHotkey, a.logger.With().Str("component", "hotkey").Logger())
	a.registerHotkey(services.Settings.Snapshot().Hotkey)

	watchCtx, cancel := context.WithCancel(ctx)
	a.stopWatch = cancel
	go func() {
		if err := services.Settings.Watch(watchCtx, a.onSettingsChanged); err != nil {
			a.logger.Warn().Err(err).Msg("settings hot reload disabled")
		}
	}()

	a.logger.Info().
		Str("transcription", a.cfg.Transcription.Provider).
		Str("cleanup", a.cfg.Cleanup.Provider).
		Str("settings", services.Settings.Path()).
		Msg("voxtype ready")
}

func (a *App) shutdown(_ context.Context) {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.hotkeys != nil {
		a.hotkeys.Close()
	}
	if a.controller != nil {
		a.controller.Close()
	}
}

// Toggle starts a session when idle and ends it when recording.
func (a *App) Toggle() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.Toggle(a.ctx, ""); err != nil {
		a.sessionError(err)
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// StartRecording opens the given device, or the configured one when empty.
func (a *App) StartRecording(device string) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.Begin(a.ctx, device); err != nil {
		a.sessionError(err)
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// StopRecording ends the session and returns the delivered text. A nil
// result with a nil error means transcription failed; see GetStatus.
func (a *App) StopRecording() (*domain.Transcription, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	result, err := a.controller.End(a.ctx)
	if err != nil {
		a.sessionError(err)
		return nil, err
	}
	return result, nil
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		status := domain.Status{State: domain.SessionStateIdle, Levels: make([]float64, domain.LevelWindowSize)}
		if a.bootErr != nil {
			status.LastError = &domain.SessionError{Code: domain.ErrorCodeStart, Message: a.bootErr.Error()}
		}
		return status
	}
	return a.controller.Status()
}

// GetSettings returns the current settings snapshot.
func (a *App) GetSettings() (domain.Settings, error) {
	if err := a.requireReady(); err != nil {
		return domain.Settings{}, err
	}
	return a.services.Settings.Snapshot(), nil
}

// SaveSettings persists settings. The hotkey and overlay follow the change.
func (a *App) SaveSettings(next domain.Settings) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	prev := a.services.Settings.Snapshot()
	if err := a.services.Settings.Save(next); err != nil {
		return err
	}
	a.onSettingsChanged(prev, a.services.Settings.Snapshot())
	return nil
}

// GetAudioDevices lists the capture sources StartRecording accepts.
func (a *App) GetAudioDevices() ([]domain.AudioDevice, error) {
	if a.bootErr != nil {
		return nil, a.bootErr
	}
	if a.services.Devices == nil {
		return nil, errors.New("application is not initialized")
	}
	return a.services.Devices.ListDevices(a.ctx)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	info := map[string]string{
		"transcription":    a.cfg.Transcription.Provider,
		"cleanup":          a.cfg.Cleanup.Provider,
		"rulesFile":        a.cfg.Rules.Path,
		"settingsFile":     a.cfg.Settings.Path,
		"audioInputFormat": a.cfg.Audio.InputFormat,
	}
	switch a.cfg.Transcription.Provider {
	case config.TranscriptionGroq:
		info["model"] = a.cfg.Groq.STTModel
		info["language"] = a.cfg.Groq.Language
	default:
		info["model"] = a.cfg.Deepgram.Model
		info["language"] = a.cfg.Deepgram.Language
	}
	return info
}

func (a *App) onHotkey() {
	if a.controller == nil {
		return
	}
	if err := a.controller.Toggle(a.ctx, ""); err != nil {
		a.logger.Warn().Err(err).Msg("hotkey toggle failed")
		a.sessionError(err)
	}
}

func (a *App) onSettingsChanged(prev, next domain.Settings) {
	if prev.Hotkey != next.Hotkey && a.hotkeys != nil {
		a.registerHotkey(next.Hotkey)
	}
	if prev.OverlayPosition != next.OverlayPosition && a.ctx != nil {
		if err := a.overlay.Reposition(a.ctx, next.OverlayPosition); err != nil {
			a.logger.Warn().Err(err).Msg("failed to move overlay")
		}
	}
}

// registerHotkey binds accelerator. When that fails the default chord is
// bound instead and saved, so the settings show what actually works.
func (a *App) registerHotkey(accelerator string) {
	err := a.hotkeys.Bind(accelerator)
	if err == nil {
		return
	}
	a.logger.Error().Err(err).Str("hotkey", accelerator).Msg("failed to register global hotkey")

	fallback := domain.DefaultSettings().Hotkey
	if accelerator == fallback {
		return
	}
	if err := a.hotkeys.Bind(fallback); err != nil {
		a.logger.Error().Err(err).Str("hotkey", fallback).Msg("failed to register default hotkey")
		return
	}
	a.logger.Warn().Str("hotkey", fallback).Msg("falling back to default hotkey")

	if a.services.Settings == nil {
		return
	}
	current := a.services.Settings.Snapshot()
	current.Hotkey = fallback
	if err := a.services.Settings.Save(current); err != nil {
		a.logger.Warn().Err(err).Msg("failed to save default hotkey")
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return errors.New("application is not initialized")
	}
	return nil
}

// sessionError emits backend errors to the UI.
func (a *App) sessionError(err error) {
	if a.ctx == nil || err == nil {
		return
	}
	code := usecase.CodeOf(err)
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, err.Error()),
		"detail":  err.Error(),
	})
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStart:
		return "Could not start recording"
	case domain.ErrorCodeStop:
		return "Could not stop recording"
	case domain.ErrorCodeTranscription:
		return "Transcription failed"
	case domain.ErrorCodeCleanup:
		return "Cleanup failed; raw text was used"
	case domain.ErrorCodePaste:
		return "Paste failed; text copied to clipboard"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	case domain.ErrorCodeOverlay:
		return "Overlay update failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct {
	ctx context.Context
}

func (c *wailsClipboard) SetText(_ context.Context, text string) error {
	return runtime.ClipboardSetText(c.ctx, text)
}
