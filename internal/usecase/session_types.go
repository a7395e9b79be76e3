package usecase

import (
	"sync"

	"voxtype/internal/domain"
)

// session holds the mutable fields of the single active session. The
// controller, its poller and its pipeline are the only writers.
type session struct {
	mu sync.Mutex

	state      domain.SessionState
	levels     []float64
	lastResult *domain.Transcription
	lastError  error

	// generation increments on every accepted Begin so a stale reset timer
	// from a previous session can recognise itself.
	generation uint64
}

func newSession() *session {
	return &session{
		state:  domain.SessionStateIdle,
		levels: make([]float64, domain.LevelWindowSize),
	}
}

func (s *session) getState() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *session) setState(state domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// promote moves from → to only when the current state is from.
func (s *session) promote(from, to domain.SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

func (s *session) setLevels(levels []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = levels
}

func (s *session) setResult(result domain.Transcription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResult = &result
}

func (s *session) recordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
}

// reset starts a new attempt: clears the previous outcome and returns the
// new generation.
func (s *session) reset(state domain.SessionState) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.levels = make([]float64, domain.LevelWindowSize)
	s.lastResult = nil
	s.lastError = nil
	s.generation++
	return s.generation
}

func (s *session) getError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *session) getResult() *domain.Transcription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResult == nil {
		return nil
	}
	result := *s.lastResult
	return &result
}

func (s *session) getGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *session) snapshot() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	levels := make([]float64, len(s.levels))
	copy(levels, s.levels)

	status := domain.Status{
		State:  s.state,
		Active: s.state != domain.SessionStateIdle,
		Levels: levels,
	}
	if s.lastResult != nil {
		result := *s.lastResult
		status.LastResult = &result
	}
	if s.lastError != nil {
		status.LastError = &domain.SessionError{Code: CodeOf(s.lastError), Message: s.lastError.Error()}
	}
	return status
}
