package audio

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jfreymuth/pulse"

	"voxtype/internal/domain"
)

type sourceInfo struct {
	id          string
	description string
}

// ListDevices enumerates capture sources for the configured input backend.
// PulseAudio (and PipeWire's pulse server) is asked directly; other backends
// go through ffmpeg -sources.
func (r *Recorder) ListDevices(ctx context.Context) ([]domain.AudioDevice, error) {
	if r.inputFormat == "" || r.inputFormat == "pulse" {
		devices, err := listPulseSources()
		if err == nil {
			return devices, nil
		}
		r.logger.Debug().Err(err).Msg("pulse enumeration failed; asking ffmpeg")
	}
	return r.listFFMPEGSources(ctx)
}

func listPulseSources() ([]domain.AudioDevice, error) {
	client, err := pulse.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "connect to pulse")
	}
	defer client.Close()

	sources, err := client.ListSources()
	if err != nil {
		return nil, errors.Wrap(err, "list pulse sources")
	}
	infos := make([]sourceInfo, 0, len(sources))
	for _, s := range sources {
		infos = append(infos, sourceInfo{id: s.ID(), description: s.Name()})
	}

	var defaultID string
	if def, err := client.DefaultSource(); err == nil {
		defaultID = def.ID()
	}
	return toDevices(infos, defaultID), nil
}

// toDevices drops monitor sources, which capture playback rather than a
// microphone.
func toDevices(infos []sourceInfo, defaultID string) []domain.AudioDevice {
	devices := make([]domain.AudioDevice, 0, len(infos))
	for _, info := range infos {
		if strings.HasSuffix(info.id, ".monitor") {
			continue
		}
		devices = append(devices, domain.AudioDevice{
			Name:        info.id,
			Description: info.description,
			IsDefault:   info.id == defaultID,
		})
	}
	return devices
}

func (r *Recorder) listFFMPEGSources(ctx context.Context) ([]domain.AudioDevice, error) {
	format := r.inputFormat
	if format == "" {
		format = "pulse"
	}
	cmd := exec.CommandContext(ctx, r.command, "-hide_banner", "-sources", format)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	// ffmpeg exits non-zero after listing for several devices; trust the output.
	if err != nil && len(bytes.TrimSpace(out)) == 0 {
		return nil, errors.Wrapf(err, "list %s sources: %s", format, trimOutput(stderr.String()))
	}

	infos, defaultID := parseSources(out)
	return toDevices(infos, defaultID), nil
}

// parseSources reads the listing printed by ffmpeg -sources:
//
//	Auto-detected sources for pulse:
//	* alsa_input.usb-mic [USB Microphone]
//	  alsa_input.pci.analog-stereo [Built-in Audio]
func parseSources(out []byte) ([]sourceInfo, string) {
	var (
		infos     []sourceInfo
		defaultID string
	)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		isDefault := strings.HasPrefix(line, "*")
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))

		info := sourceInfo{id: line}
		if i := strings.Index(line, " ["); i > 0 && strings.HasSuffix(line, "]") {
			info = sourceInfo{id: line[:i], description: line[i+2 : len(line)-1]}
		}
		if isDefault {
			defaultID = info.id
		}
		infos = append(infos, info)
	}
	return infos, defaultID
}
