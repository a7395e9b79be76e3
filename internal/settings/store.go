// Package settings keeps the user settings snapshot in a YAML file and
// reloads it when the file changes.
package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"voxtype/internal/domain"
)

// file is the on-disk layout. Enum fields are plain strings so that an
// unknown value falls back to its default instead of failing the load.
type file struct {
	SelectedDevice  string `yaml:"selected_device"`
	CleanupEnabled  bool   `yaml:"cleanup_enabled" default:"true"`
	CleanupMode     string `yaml:"cleanup_mode" default:"basic"`
	CleanupPrompt   string `yaml:"cleanup_prompt" validate:"max=4096"`
	AutoPaste       bool   `yaml:"auto_paste" default:"true"`
	PasteMethod     string `yaml:"paste_method" default:"clipboard"`
	OverlayPosition string `yaml:"overlay_position" default:"bottom_center"`
	Hotkey          string `yaml:"hotkey" default:"Control+Shift+Space" validate:"required"`
	WaveformStyle   string `yaml:"waveform_style" default:"bars"`
}

// Store is a concurrency-safe settings snapshot backed by a YAML file.
type Store struct {
	path     string
	logger   zerolog.Logger
	validate *validator.Validate

	mu      sync.RWMutex
	current domain.Settings
}

// Open loads path. A missing file yields the default settings.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		path:     filepath.Clean(path),
		logger:   logger.With().Str("component", "settings").Logger(),
		validate: validator.New(),
		current:  domain.DefaultSettings(),
	}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns the current settings.
func (s *Store) Snapshot() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload re-reads the file. On error the previous snapshot is kept.
func (s *Store) Reload() (domain.Settings, error) {
	next, err := s.read()
	if err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}

// Save writes settings to disk and makes them the current snapshot.
func (s *Store) Save(settings domain.Settings) error {
	f := toFile(settings)
	if err := s.validate.Struct(f); err != nil {
		return errors.Wrap(err, "settings validation failed")
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "failed to encode settings")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create settings directory")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write settings")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "failed to replace settings file")
	}

	s.mu.Lock()
	s.current = f.toDomain()
	s.mu.Unlock()
	return nil
}

// Watch reloads the snapshot whenever the file changes and calls onChange
// with the old and new values when they differ. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, onChange func(prev, next domain.Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create settings watcher")
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create settings directory")
	}
	// The directory is watched so that editors replacing the file by rename
	// keep producing events.
	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "watch settings dir %q", dir)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.reloadAndNotify(onChange)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("settings watcher error")
		}
	}
}

func (s *Store) reloadAndNotify(onChange func(prev, next domain.Settings)) {
	prev := s.Snapshot()
	next, err := s.Reload()
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to reload settings, keeping previous values")
		return
	}
	if prev == next {
		return
	}
	s.logger.Info().Str("path", s.path).Msg("settings reloaded")
	if onChange != nil {
		onChange(prev, next)
	}
}

func (s *Store) read() (domain.Settings, error) {
	var f file
	if err := defaults.Set(&f); err != nil {
		return domain.Settings{}, errors.Wrap(err, "failed to set settings defaults")
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f.toDomain(), nil
	case err != nil:
		return domain.Settings{}, errors.Wrap(err, "failed to read settings file")
	}

	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Settings{}, errors.Wrap(err, "failed to parse settings file")
	}
	if err := s.validate.Struct(f); err != nil {
		return domain.Settings{}, errors.Wrap(err, "settings validation failed")
	}
	return f.toDomain(), nil
}

func (f file) toDomain() domain.Settings {
	return domain.Settings{
		SelectedDevice:  strings.TrimSpace(f.SelectedDevice),
		CleanupEnabled:  f.CleanupEnabled,
		CleanupMode:     domain.ParseCleanupMode(f.CleanupMode),
		CleanupPrompt:   f.CleanupPrompt,
		AutoPaste:       f.AutoPaste,
		PasteMethod:     domain.ParsePasteMethod(f.PasteMethod),
		OverlayPosition: domain.ParseOverlayPosition(f.OverlayPosition),
		Hotkey:          strings.TrimSpace(f.Hotkey),
		WaveformStyle:   parseWaveformStyle(f.WaveformStyle),
	}
}

func toFile(s domain.Settings) file {
	return file{
		SelectedDevice:  s.SelectedDevice,
		CleanupEnabled:  s.CleanupEnabled,
		CleanupMode:     string(s.CleanupMode),
		CleanupPrompt:   s.CleanupPrompt,
		AutoPaste:       s.AutoPaste,
		PasteMethod:     string(s.PasteMethod),
		OverlayPosition: string(s.OverlayPosition),
		Hotkey:          s.Hotkey,
		WaveformStyle:   s.WaveformStyle,
	}
}

func parseWaveformStyle(value string) string {
	switch style := strings.ToLower(strings.TrimSpace(value)); style {
	case "wave", "circular":
		return style
	default:
		return "bars"
	}
}
