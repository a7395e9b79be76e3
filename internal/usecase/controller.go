package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"voxtype/internal/domain"
	"voxtype/internal/ports"
)

// Config controls session timing.
type Config struct {
	PollInterval    time.Duration
	LevelWindow     int
	SpeechThreshold float64
	ResetDelay      time.Duration
	NotifyQueue     int
	OverlayTimeout  time.Duration
	Logger          *zerolog.Logger
}

// Deps are the collaborators the controller drives.
type Deps struct {
	Recorder    ports.Recorder
	Levels      ports.LevelSource
	Transcriber ports.Transcriber
	Cleaner     ports.Cleaner
	Paster      ports.Paster
	Clipboard   ports.Clipboard
	Overlay     ports.Overlay
	Settings    ports.SettingsReader
}

// SessionController owns the single recording session and moves it through
// idle → listening → recording → transcribing → cleanup → done → idle.
type SessionController struct {
	recorder ports.Recorder
	settings ports.SettingsReader
	cfg      Config
	logger   zerolog.Logger

	session  *session
	notifier *overlayNotifier
	poller   levelPoller
	pipeline pipeline

	// toggleMu makes Toggle's query-then-act atomic against other Toggle calls.
	toggleMu sync.Mutex

	// mu serialises Begin, End and the delayed reset.
	mu         sync.Mutex
	active     *pollerHandle
	resetTimer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

func NewSessionController(deps Deps, cfg Config) *SessionController {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 50 * time.Millisecond
	}
	if cfg.LevelWindow <= 0 {
		cfg.LevelWindow = domain.LevelWindowSize
	}
	if cfg.SpeechThreshold <= 0 {
		cfg.SpeechThreshold = 0.1
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = time.Second
	}
	if cfg.NotifyQueue <= 0 {
		cfg.NotifyQueue = 64
	}
	if cfg.OverlayTimeout <= 0 {
		cfg.OverlayTimeout = 500 * time.Millisecond
	}

	base := zlog.Logger
	if cfg.Logger != nil {
		base = *cfg.Logger
	}
	logger := base.With().Str("component", "session").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	sess := newSession()
	notifier := newOverlayNotifier(deps.Overlay, cfg.NotifyQueue, cfg.OverlayTimeout,
		base.With().Str("component", "overlay").Logger())

	return &SessionController{
		recorder: deps.Recorder,
		settings: deps.Settings,
		cfg:      cfg,
		logger:   logger,
		session:  sess,
		notifier: notifier,
		poller: levelPoller{
			source:    deps.Levels,
			session:   sess,
			notifier:  notifier,
			interval:  cfg.PollInterval,
			window:    cfg.LevelWindow,
			threshold: cfg.SpeechThreshold,
			logger:    base.With().Str("component", "levels").Logger(),
		},
		pipeline: pipeline{
			transcriber: deps.Transcriber,
			cleaner:     deps.Cleaner,
			paster:      deps.Paster,
			clipboard:   deps.Clipboard,
			settings:    deps.Settings,
			session:     sess,
			notifier:    notifier,
			logger:      base.With().Str("component", "pipeline").Logger(),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Toggle asks the recorder whether capture is running and starts or ends a
// session accordingly.
func (c *SessionController) Toggle(ctx context.Context, deviceHint string) error {
	c.toggleMu.Lock()
	defer c.toggleMu.Unlock()

	if c.recorder.IsRecording(ctx) {
		_, err := c.End(ctx)
		return err
	}
	return c.Begin(ctx, deviceHint)
}

// Begin opens the microphone and starts level sampling. An empty deviceHint
// falls back to the device selected in settings.
func (c *SessionController) Begin(ctx context.Context, deviceHint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.session.getState()
	if previous.Capturing() || previous.Processing() || c.recorder.IsRecording(ctx) {
		return ErrSessionActive
	}
	c.cancelResetLocked()

	settings := c.settings.Snapshot()
	device := strings.TrimSpace(deviceHint)
	if device == "" {
		device = settings.SelectedDevice
	}

	generation := c.session.reset(domain.SessionStateIdle)

	if err := c.recorder.StartCapture(ctx, device); err != nil {
		err = stageError(err, ErrStartFailure, "start capture")
		c.session.recordError(err)
		c.logger.Error().Err(err).Str("device", device).Msg("failed to start recording")
		if previous == domain.SessionStateDone {
			c.notifier.NotifyState(domain.SessionStateIdle)
			c.notifier.Hide()
		}
		return err
	}

	c.session.setState(domain.SessionStateListening)
	c.notifier.NotifyState(domain.SessionStateListening)
	c.startPollerLocked()
	c.notifier.Show(settings.OverlayPosition)

	c.logger.Info().Str("device", device).Uint64("session", generation).Msg("recording started")
	return nil
}

// End stops capture and runs the pipeline. It returns the delivered
// transcription, or nil when transcription failed. Only a stop failure is
// returned as an error.
func (c *SessionController) End(ctx context.Context) (*domain.Transcription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.session.getState()
	if state.Processing() {
		return nil, ErrPipelineBusy
	}
	if !state.Capturing() && !c.recorder.IsRecording(ctx) {
		return nil, ErrNoActiveSession
	}
	c.cancelResetLocked()
	c.stopPollerLocked()

	c.session.setState(domain.SessionStateTranscribing)
	c.notifier.NotifyState(domain.SessionStateTranscribing)

	audio, err := c.recorder.StopCapture(ctx)
	if err != nil {
		err = stageError(err, ErrStopFailure, "stop capture")
		c.session.recordError(err)
		c.session.setState(domain.SessionStateIdle)
		c.notifier.NotifyState(domain.SessionStateIdle)
		c.notifier.Hide()
		c.logger.Error().Err(err).Msg("failed to stop recording")
		return nil, err
	}

	result := c.pipeline.Run(ctx, audio)

	c.session.setState(domain.SessionStateDone)
	c.notifier.NotifyState(domain.SessionStateDone)
	c.scheduleResetLocked(c.session.getGeneration())

	if result != nil {
		c.logger.Info().Bool("cleaned", result.Cleaned != nil).Int("chars", len(result.Final())).Msg("session complete")
	}
	return result, nil
}

// Status returns a copy of the session for display.
func (c *SessionController) Status() domain.Status {
	return c.session.snapshot()
}

// Close stops background work. The controller must not be used afterwards.
func (c *SessionController) Close() {
	c.mu.Lock()
	c.stopPollerLocked()
	c.cancelResetLocked()
	c.mu.Unlock()

	c.cancel()
	c.notifier.Close()
}

func (c *SessionController) startPollerLocked() {
	c.stopPollerLocked()
	c.active = c.poller.start(c.ctx)
}

func (c *SessionController) stopPollerLocked() {
	if c.active == nil {
		return
	}
	c.active.stop()
	c.active = nil
}

func (c *SessionController) scheduleResetLocked(generation uint64) {
	c.resetTimer = time.AfterFunc(c.cfg.ResetDelay, func() {
		c.resetToIdle(generation)
	})
}

func (c *SessionController) cancelResetLocked() {
	if c.resetTimer == nil {
		return
	}
	c.resetTimer.Stop()
	c.resetTimer = nil
}

func (c *SessionController) resetToIdle(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.getGeneration() != generation {
		return
	}
	if !c.session.promote(domain.SessionStateDone, domain.SessionStateIdle) {
		return
	}
	c.resetTimer = nil
	c.notifier.NotifyState(domain.SessionStateIdle)
	c.notifier.Hide()
}
