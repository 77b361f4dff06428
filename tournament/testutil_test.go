package tournament

import (
	"context"
	"sync"
	"time"
)

// mockLogger is a simple no-op logger for testing.
type mockLogger struct{}

func (l *mockLogger) Debug(format string, v ...interface{})           {}
func (l *mockLogger) Info(format string, v ...interface{})            {}
func (l *mockLogger) Warn(format string, v ...interface{})            {}
func (l *mockLogger) Error(format string, v ...interface{})           {}
func (l *mockLogger) WithField(key string, v interface{}) Logger      { return l }
func (l *mockLogger) WithFields(fields map[string]interface{}) Logger { return l }
func (l *mockLogger) Fields() map[string]interface{}                  { return nil }

// fakeClock is a settable clock for deterministic time in tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// newTestHub initializes a full hub on in-memory storage with every system
// enabled.
func newTestHub(ctx context.Context, clock Clock, storage Storage) (Hub, error) {
	return Init(ctx, &mockLogger{}, storage, clock,
		NewSystemConfig(SystemTypeEventBus, ""),
		NewSystemConfig(SystemTypeScoring, ""),
		NewSystemConfig(SystemTypeAchievements, ""),
		NewSystemConfig(SystemTypeHistory, ""),
		NewSystemConfig(SystemTypeTournaments, ""),
	)
}

// capturePublisher records every publisher event it receives.
type capturePublisher struct {
	mu     sync.Mutex
	events []*PublisherEvent
}

func (p *capturePublisher) Send(ctx context.Context, logger Logger, events []*PublisherEvent) {
	p.mu.Lock()
	p.events = append(p.events, events...)
	p.mu.Unlock()
}

func (p *capturePublisher) Events() []*PublisherEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*PublisherEvent, len(p.events))
	copy(out, p.events)
	return out
}
