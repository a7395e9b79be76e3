package audio

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ErrNotRecording is returned by StopCapture when no capture is running.
var ErrNotRecording = errors.New("recorder is not capturing")

// ErrAlreadyRecording is returned by StartCapture while a capture is running.
var ErrAlreadyRecording = errors.New("recorder is already capturing")

const (
	levelBlockSize = 1024
	readChunkSize  = 4096
)

// RecorderConfig selects the ffmpeg binary, input backend and PCM format.
type RecorderConfig struct {
	Command     string
	InputFormat string
	SampleRate  int
	Channels    int
	LevelWindow int
	Logger      zerolog.Logger
}

// Recorder captures microphone audio through ffmpeg, buffers it in memory and
// keeps a rolling window of RMS levels for the overlay waveform.
type Recorder struct {
	command     string
	inputFormat string
	format      Format
	logger      zerolog.Logger
	meter       *levelMeter

	mu       sync.Mutex
	proc     *ffmpegProcess
	cancel   context.CancelFunc
	buffer   bytes.Buffer
	readDone chan struct{}
	readErr  error
}

func NewRecorder(cfg RecorderConfig) *Recorder {
	if cfg.Command == "" {
		cfg.Command = "ffmpeg"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.LevelWindow <= 0 {
		cfg.LevelWindow = 32
	}
	return &Recorder{
		command:     cfg.Command,
		inputFormat: cfg.InputFormat,
		format:      Format{SampleRate: cfg.SampleRate, Channels: cfg.Channels},
		logger:      cfg.Logger,
		meter:       newLevelMeter(cfg.LevelWindow, levelBlockSize),
	}
}

// StartCapture opens device. An empty device selects the backend default.
func (r *Recorder) StartCapture(_ context.Context, device string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.proc != nil {
		return ErrAlreadyRecording
	}

	// The process outlives the request that started it; StopCapture ends it.
	procCtx, cancel := context.WithCancel(context.Background())
	proc, err := startFFMPEG(procCtx, r.command, captureArgs(r.inputFormat, device, r.format))
	if err != nil {
		cancel()
		return errors.Wrapf(err, "open input device %q", device)
	}

	r.buffer.Reset()
	r.meter.Reset()
	r.readErr = nil
	r.proc = proc
	r.cancel = cancel
	r.readDone = make(chan struct{})
	go r.readLoop(proc, r.readDone)

	r.logger.Debug().Str("device", device).Int("sample_rate", r.format.SampleRate).Msg("capture started")
	return nil
}

// StopCapture ends the capture and returns the recording as a WAV file.
func (r *Recorder) StopCapture(_ context.Context) ([]byte, error) {
	r.mu.Lock()
	proc, cancel, done := r.proc, r.cancel, r.readDone
	r.proc, r.cancel, r.readDone = nil, nil, nil
	r.mu.Unlock()

	if proc == nil {
		return nil, ErrNotRecording
	}

	stopErr := proc.Stop()
	select {
	case <-done:
	case <-time.After(drainTimeout):
		// A child of the capture command still holds the pipe open.
		r.logger.Warn().Msg("capture output did not reach EOF; closing pipe")
	}
	closeErr := proc.Close()
	<-done
	cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if stopErr != nil {
		return nil, errors.Wrap(stopErr, "stop ffmpeg")
	}
	if r.readErr != nil {
		return nil, errors.Wrap(r.readErr, "read captured audio")
	}
	if closeErr != nil {
		return nil, closeErr
	}

	pcm := append([]byte(nil), r.buffer.Bytes()...)
	r.buffer.Reset()
	r.logger.Debug().Int("pcm_bytes", len(pcm)).Msg("capture stopped")
	return EncodeWAV(pcm, r.format), nil
}

func (r *Recorder) IsRecording(_ context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.proc != nil
}

// SampleLevels returns the current level window, oldest first.
func (r *Recorder) SampleLevels(_ context.Context) ([]float64, error) {
	return r.meter.Levels(), nil
}

func (r *Recorder) readLoop(source io.Reader, done chan struct{}) {
	defer close(done)

	chunk := make([]byte, readChunkSize)
	for {
		n, err := source.Read(chunk)
		if n > 0 {
			r.meter.Write(chunk[:n])
			r.mu.Lock()
			r.buffer.Write(chunk[:n])
			r.mu.Unlock()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !isClosedPipe(err) {
				r.mu.Lock()
				r.readErr = err
				r.mu.Unlock()
			}
			return
		}
	}
}

// isClosedPipe reports the error a read gets once the pipe was closed after
// the drain timeout.
func isClosedPipe(err error) bool {
	return errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
