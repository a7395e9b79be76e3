package bootstrap

import (
	"net/http"

	"github.com/rs/zerolog"

	"voxtype/internal/audio"
	"voxtype/internal/cleanup"
	"voxtype/internal/config"
	"voxtype/internal/paste"
	"voxtype/internal/ports"
	"voxtype/internal/providers/deepgram"
	"voxtype/internal/providers/groq"
	"voxtype/internal/rules"
	"voxtype/internal/settings"
	"voxtype/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.SessionController
	Settings   *settings.Store
	Devices    ports.DeviceLister
	Config     config.Config
}

// Build wires all backend dependencies for the current runtime. A nil
// clipboard falls back to the system clipboard used by the paster.
func Build(cfg config.Config, overlay ports.Overlay, clipboard ports.Clipboard, logger zerolog.Logger) (Services, error) {
	for _, key := range cfg.MissingCredentials() {
		logger.Warn().Str("env", key).Msg("API key is not configured; the provider will fail until it is set")
	}

	store, err := settings.Open(cfg.Settings.Path, logger)
	if err != nil {
		return Services{}, err
	}

	cleaner, err := buildCleaner(cfg, logger)
	if err != nil {
		return Services{}, err
	}

	recorder := audio.NewRecorder(audio.RecorderConfig{
		Command:     cfg.Audio.RecorderCommand,
		InputFormat: cfg.Audio.InputFormat,
		SampleRate:  cfg.Audio.SampleRate,
		Channels:    cfg.Audio.Channels,
		LevelWindow: cfg.Session.LevelWindow,
		Logger:      component(logger, "recorder"),
	})

	paster := paste.New(paste.Config{
		SettleDelay:  cfg.Paste.SettleDelay,
		RestoreDelay: cfg.Paste.RestoreDelay,
		Logger:       component(logger, "paste"),
	})
	if clipboard == nil {
		clipboard = paster
	}

	controller := usecase.NewSessionController(
		usecase.Deps{
			Recorder:    recorder,
			Levels:      recorder,
			Transcriber: buildTranscriber(cfg, logger),
			Cleaner:     cleaner,
			Paster:      paster,
			Clipboard:   clipboard,
			Overlay:     overlay,
			Settings:    store,
		},
		usecase.Config{
			PollInterval:    cfg.Session.PollInterval,
			LevelWindow:     cfg.Session.LevelWindow,
			SpeechThreshold: cfg.Session.SpeechThreshold,
			ResetDelay:      cfg.Session.ResetDelay,
			NotifyQueue:     cfg.Session.NotifyQueue,
			OverlayTimeout:  cfg.Session.OverlayTimeout,
			Logger:          &logger,
		},
	)

	return Services{Controller: controller, Settings: store, Devices: recorder, Config: cfg}, nil
}

func buildTranscriber(cfg config.Config, logger zerolog.Logger) ports.Transcriber {
	if cfg.Transcription.Provider == config.TranscriptionGroq {
		return groq.NewTranscriber(groqConfig(cfg, logger))
	}
	return deepgram.NewTranscriber(deepgram.Config{
		APIKey:      cfg.Deepgram.APIKey,
		APIBaseURL:  cfg.Deepgram.APIBaseURL,
		Model:       cfg.Deepgram.Model,
		Language:    cfg.Deepgram.Language,
		SmartFormat: cfg.Deepgram.SmartFormat,
		Logger:      component(logger, "deepgram"),
	})
}

func buildCleaner(cfg config.Config, logger zerolog.Logger) (ports.Cleaner, error) {
	switch cfg.Cleanup.Provider {
	case config.CleanupGroq:
		return groq.NewCleaner(groqConfig(cfg, logger)), nil
	case config.CleanupNone:
		return cleanup.Passthrough{}, nil
	default:
		engine, err := rules.NewEngine(cfg.Rules.Path, cfg.Rules.IterationLimit)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
}

func groqConfig(cfg config.Config, logger zerolog.Logger) groq.Config {
	return groq.Config{
		APIKey:     cfg.Groq.APIKey,
		BaseURL:    cfg.Groq.BaseURL,
		STTModel:   cfg.Groq.STTModel,
		ChatModel:  cfg.Groq.ChatModel,
		Language:   cfg.Groq.Language,
		MaxTokens:  cfg.Groq.MaxTokens,
		HTTPClient: &http.Client{Timeout: cfg.Groq.Timeout},
		Logger:     component(logger, "groq"),
	}
}

func component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
