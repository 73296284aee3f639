package mocks

import (
	"fmt"
	"sync"

	"github.com/dojosmash/dojo-smash/internal/dependencies/ids"
)

// MockIDs hands out predictable sequential ids
type MockIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
	queued []string
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs producing "<prefix>-1", "<prefix>-2", ...
func NewMockIDs(prefix string) *MockIDs {
	return &MockIDs{prefix: prefix}
}

// NewID returns the next queued id, or the next sequential id if none queued
func (m *MockIDs) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queued) > 0 {
		id := m.queued[0]
		m.queued = m.queued[1:]
		return id
	}
	m.next++
	return fmt.Sprintf("%s-%d", m.prefix, m.next)
}

// Queue adds ids to be returned before the sequence resumes
func (m *MockIDs) Queue(values ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, values...)
}
