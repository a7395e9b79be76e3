package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxtype/internal/cleanup"
	"voxtype/internal/config"
	"voxtype/internal/domain"
	"voxtype/internal/providers/deepgram"
	"voxtype/internal/providers/groq"
	"voxtype/internal/rules"
)

func TestBuildSuccess(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	services, err := Build(cfg, noopOverlay{}, noopClipboard{}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(services.Controller.Close)

	require.NotNil(t, services.Controller)
	require.NotNil(t, services.Settings)
	require.NotNil(t, services.Devices)
	assert.Equal(t, domain.DefaultSettings(), services.Settings.Snapshot())
	assert.Equal(t, domain.SessionStateIdle, services.Controller.Status().State)
}

func TestBuildReadsSettingsFile(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Settings.Path, []byte("paste_method: typing\n"), 0o600))

	services, err := Build(cfg, noopOverlay{}, nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(services.Controller.Close)
	assert.Equal(t, domain.PasteMethodTyping, services.Settings.Snapshot().PasteMethod)
}

func TestBuildFailsOnInvalidRules(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Rules.Path = filepath.Join(t.TempDir(), "bad.rules")
	require.NoError(t, os.WriteFile(cfg.Rules.Path, []byte("not a valid rule\n"), 0o600))

	_, err := Build(cfg, noopOverlay{}, noopClipboard{}, zerolog.Nop())
	require.Error(t, err)
}

func TestBuildFailsOnInvalidSettings(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Settings.Path, []byte("hotkey: ''\n"), 0o600))

	_, err := Build(cfg, noopOverlay{}, noopClipboard{}, zerolog.Nop())
	require.Error(t, err)
}

func TestBuildSelectsProviders(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	assert.IsType(t, &deepgram.Transcriber{}, buildTranscriber(cfg, zerolog.Nop()))
	cfg.Transcription.Provider = config.TranscriptionGroq
	assert.IsType(t, &groq.Transcriber{}, buildTranscriber(cfg, zerolog.Nop()))

	cases := map[string]interface{}{
		config.CleanupRules: &rules.Engine{},
		config.CleanupGroq:  &groq.Cleaner{},
		config.CleanupNone:  cleanup.Passthrough{},
	}
	for provider, want := range cases {
		cfg.Cleanup.Provider = provider
		cleaner, err := buildCleaner(cfg, zerolog.Nop())
		require.NoError(t, err, provider)
		assert.IsType(t, want, cleaner, provider)
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Transcription: config.TranscriptionConfig{Provider: config.TranscriptionDeepgram},
		Cleanup:       config.CleanupConfig{Provider: config.CleanupRules},
		Deepgram:      config.DeepgramConfig{APIKey: "test-key"},
		Rules:         config.RulesConfig{Path: filepath.Join(dir, "missing.rules"), IterationLimit: 30},
		Settings:      config.SettingsConfig{Path: filepath.Join(dir, "settings.yaml")},
	}
}

type noopOverlay struct{}

func (noopOverlay) Show(context.Context, domain.OverlayPosition) error   { return nil }
func (noopOverlay) Hide(context.Context) error                           { return nil }
func (noopOverlay) EmitState(context.Context, domain.SessionState) error { return nil }
func (noopOverlay) EmitLevels(context.Context, []float64) error          { return nil }

type noopClipboard struct{}

func (noopClipboard) SetText(_ context.Context, _ string) error { return nil }
