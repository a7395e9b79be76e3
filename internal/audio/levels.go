package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// levelMeter turns raw s16le PCM into RMS levels, one per block of
// blockSize samples, kept in a fixed rolling window.
type levelMeter struct {
	mu        sync.Mutex
	blockSize int
	window    []float64

	sumSquares float64
	count      int
	carry      []byte
}

func newLevelMeter(windowSize int, blockSize int) *levelMeter {
	return &levelMeter{
		blockSize: blockSize,
		window:    make([]float64, windowSize),
	}
}

// Write consumes PCM bytes. An odd trailing byte is kept for the next call.
func (m *levelMeter) Write(p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.carry) > 0 {
		p = append(m.carry, p...)
		m.carry = nil
	}

	for len(p) >= 2 {
		sample := float64(int16(binary.LittleEndian.Uint16(p[:2]))) / math.MaxInt16
		m.sumSquares += sample * sample
		m.count++
		p = p[2:]

		if m.count >= m.blockSize {
			m.push(math.Min(math.Sqrt(m.sumSquares/float64(m.count)), 1.0))
			m.sumSquares = 0
			m.count = 0
		}
	}
	if len(p) == 1 {
		m.carry = []byte{p[0]}
	}
}

func (m *levelMeter) push(level float64) {
	copy(m.window, m.window[1:])
	m.window[len(m.window)-1] = level
}

// Levels returns a copy of the window, oldest first.
func (m *levelMeter) Levels() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.window...)
}

func (m *levelMeter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.window {
		m.window[i] = 0
	}
	m.sumSquares = 0
	m.count = 0
	m.carry = nil
}
