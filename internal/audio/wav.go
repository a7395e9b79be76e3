package audio

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

const wavHeaderSize = 44

// Format describes 16-bit little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

func (f Format) bytesPerFrame() int {
	return f.Channels * 2
}

// EncodeWAV prefixes pcm with a canonical 44-byte RIFF header.
func EncodeWAV(pcm []byte, format Format) []byte {
	dataSize := len(pcm)
	buf := make([]byte, wavHeaderSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(wavHeaderSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(format.Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(format.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(format.SampleRate*format.bytesPerFrame()))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(format.bytesPerFrame()))
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[wavHeaderSize:], pcm)

	return buf
}

// DecodeWAV returns the PCM payload of a 16-bit WAV file. Chunks other than
// fmt and data are skipped.
func DecodeWAV(data []byte) ([]byte, Format, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, Format{}, errors.New("not a RIFF/WAVE file")
	}

	var (
		format  Format
		haveFmt bool
	)
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if size < 0 || body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, Format{}, errors.New("wav fmt chunk is truncated")
			}
			if audioFormat := binary.LittleEndian.Uint16(data[body : body+2]); audioFormat != 1 {
				return nil, Format{}, errors.Newf("unsupported wav encoding %d", audioFormat)
			}
			if bits := binary.LittleEndian.Uint16(data[body+14 : body+16]); bits != 16 {
				return nil, Format{}, errors.Newf("unsupported wav sample size %d", bits)
			}
			format.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, Format{}, errors.New("wav data chunk before fmt chunk")
			}
			return data[body : body+size], format, nil
		}

		offset = body + size + size%2
	}

	return nil, Format{}, errors.New("wav file has no data chunk")
}
