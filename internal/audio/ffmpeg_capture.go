package audio

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	startupGrace = 250 * time.Millisecond
	stopTimeout  = 1200 * time.Millisecond
	drainTimeout = 1200 * time.Millisecond
)

// captureArgs builds the ffmpeg command line that writes raw s16le PCM to stdout.
func captureArgs(inputFormat, device string, format Format) []string {
	if inputFormat == "" {
		inputFormat = "pulse"
	}
	if device == "" {
		device = "default"
	}
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", inputFormat,
		"-i", device,
		"-ac", strconv.Itoa(format.Channels),
		"-ar", strconv.Itoa(format.SampleRate),
		"-f", "s16le",
		"-",
	}
}

// ffmpegProcess is a running capture process. Its stdout is raw PCM read
// from a pipe the process owns the only write end of, so reads see EOF once
// ffmpeg has flushed and exited.
type ffmpegProcess struct {
	stdout *os.File
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

// startFFMPEG launches command and waits briefly so a missing device or bad
// input format is reported to the caller instead of surfacing at stop.
func startFFMPEG(ctx context.Context, command string, args []string) (*ffmpegProcess, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, pw, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, "create ffmpeg stdout pipe")
	}
	cmd.Stdout = pw
	if err := cmd.Start(); err != nil {
		_ = stdout.Close()
		_ = pw.Close()
		return nil, errors.Wrap(err, "start ffmpeg")
	}
	_ = pw.Close()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		_ = stdout.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "ffmpeg exited before capture started: %s", trimOutput(stderr.String()))
		}
		return nil, errors.New("ffmpeg exited before capture started")
	case <-time.After(startupGrace):
	}

	return &ffmpegProcess{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

func (p *ffmpegProcess) Read(b []byte) (int, error) {
	return p.stdout.Read(b)
}

// Stop interrupts ffmpeg, escalating to kill after stopTimeout, and waits for
// it to exit. Output still buffered in the pipe stays readable until Close.
// It is safe to call more than once.
func (p *ffmpegProcess) Stop() error {
	p.stopOnce.Do(func() {
		if p.process != nil {
			_ = p.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-p.waitErr:
			if ok {
				p.stopErr = normalizeStopErr(err)
			}
		case <-time.After(stopTimeout):
			if p.process != nil {
				_ = p.process.Kill()
			}
			if err, ok := <-p.waitErr; ok {
				p.stopErr = normalizeStopErr(err)
			}
		}

		if p.stopErr != nil && p.stderr.Len() > 0 {
			p.stopErr = errors.Wrap(p.stopErr, trimOutput(p.stderr.String()))
		}
	})
	return p.stopErr
}

// Close releases the read end of the pipe, unblocking a pending Read.
func (p *ffmpegProcess) Close() error {
	if err := p.stdout.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return errors.Wrap(err, "close ffmpeg stdout")
	}
	return nil
}

// normalizeStopErr treats a non-zero exit as a clean stop; ffmpeg exits 255
// when interrupted.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimOutput(input string) string {
	return string(bytes.TrimSpace([]byte(input)))
}
