package game

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// --- Client ---

type MockClient struct {
	mock.Mock
}

func (m *MockClient) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) Send(ev Event) error {
	args := m.Called(ev)
	return args.Error(0)
}

func (m *MockClient) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClient) CancelAndRelease() {
	m.Called()
}

// --- WordDrawer ---

type MockWordDrawer struct {
	mock.Mock
}

func (m *MockWordDrawer) Draw() string {
	args := m.Called()
	return args.String(0)
}

// --- Conn ---

type MockConn struct {
	mock.Mock
}

func (m *MockConn) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockConn) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockConn) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockConn) Close() {
	m.Called()
}

// --- TimerFactory ---

// fakeTimerFactory records every scheduled timer so tests can fire
// them, or deliberately fire stale ones, by hand.

type fakeTimer struct {
	cancels int
}

func (t *fakeTimer) Cancel() {
	t.cancels++
}

func (t *fakeTimer) cancelled() bool {
	return t.cancels > 0
}

type scheduledTimer struct {
	d     time.Duration
	fire  func()
	timer *fakeTimer
}

type fakeTimerFactory struct {
	scheduled []*scheduledTimer
}

func (f *fakeTimerFactory) NewTimer(d time.Duration, fire func()) Timer {
	st := &scheduledTimer{d: d, fire: fire, timer: &fakeTimer{}}
	f.scheduled = append(f.scheduled, st)
	return st.timer
}

func (f *fakeTimerFactory) last() *scheduledTimer {
	if len(f.scheduled) == 0 {
		return nil
	}
	return f.scheduled[len(f.scheduled)-1]
}
