package frame

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// Session holds the last quadrilateral accepted by the preview path. Preview
// writes it, capture reads a snapshot of it.
type Session struct {
	id string

	mu      sync.RWMutex
	quad    *geometry.Quadrilateral
	updated time.Time
}

// NewSession creates an empty session with a fresh id.
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

// ID returns the session id used in logs, spans and reports.
func (s *Session) ID() string {
	return s.id
}

// Store replaces the last accepted quadrilateral.
func (s *Session) Store(q geometry.Quadrilateral) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quad = &q
	s.updated = time.Now()
}

// Snapshot returns a copy of the last accepted quadrilateral.
func (s *Session) Snapshot() (geometry.Quadrilateral, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.quad == nil {
		return geometry.Quadrilateral{}, false
	}
	return *s.quad, true
}

// UpdatedAt is the time of the last Store, zero if none.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Reset forgets the accepted quadrilateral.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quad = nil
	s.updated = time.Time{}
}
