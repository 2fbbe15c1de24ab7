// SPDX-License-Identifier: Apache-2.0

package review

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/questionforge/qforge-mcp/internal/question"
)

// Manager holds review sessions keyed by ID so concurrent reviews stay
// isolated. Callers address a session explicitly; there is no ambient
// current session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// CreateOptions carries the session paths and course metadata.
type CreateOptions struct {
	ProjectPath string
	SourcePath  string
	OutputPath  string
	CourseCode  string
	CourseTitle string
}

// Create registers a new session over the interpretations and returns it.
func (m *Manager) Create(itps []*question.Interpretation, output OutputAppender, opts CreateOptions) *Session {
	s := NewSession(uuid.NewString(), itps, output)
	s.ProjectPath = opts.ProjectPath
	s.SourcePath = opts.SourcePath
	s.OutputPath = opts.OutputPath
	s.CourseCode = opts.CourseCode
	s.CourseTitle = opts.CourseTitle

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// Get looks up a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no review session %q", id)
	}
	return s, nil
}

// Clear removes a session. Clearing an unknown ID is a no-op.
func (m *Manager) Clear(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
