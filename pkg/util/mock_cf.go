package util

import (
	"sync"
	"time"

	"github.com/devlibx/gox-base/v2"
)

// MockCrossFunction is a CrossFunction with a manually driven clock. Sleep
// advances the clock instead of blocking, so time-dependent code runs
// instantly under test.
type MockCrossFunction struct {
	gox.CrossFunction
	mutex   sync.RWMutex
	current time.Time
}

func NewMockCrossFunction(start time.Time) *MockCrossFunction {
	return &MockCrossFunction{
		CrossFunction: gox.NewNoOpCrossFunction(),
		current:       start,
	}
}

func (m *MockCrossFunction) Now() time.Time {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.current
}

func (m *MockCrossFunction) SetTime(t time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.current = t
}

func (m *MockCrossFunction) AdvanceTime(d time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.current = m.current.Add(d)
}

func (m *MockCrossFunction) Sleep(d time.Duration) {
	m.AdvanceTime(d)
}
