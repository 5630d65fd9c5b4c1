package presence

import (
	"fmt"
	"sync"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingObserver struct {
	mu      sync.Mutex
	started []Record
	beats   []Record
	expired []Record
}

func (o *recordingObserver) SessionStarted(rec Record) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, rec)
}

func (o *recordingObserver) Heartbeat(rec Record) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.beats = append(o.beats, rec)
}

func (o *recordingObserver) SessionsExpired(recs []Record) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.expired = append(o.expired, recs...)
}

func (o *recordingObserver) expiredIDs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, len(o.expired))
	for i, rec := range o.expired {
		ids[i] = rec.SessionID
	}
	return ids
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("session-%d", n)
	}
}

func newTestService(clock *fakeClock, observer Observer) (Service, *Store) {
	store := NewStore()
	svc := NewService(store, DefaultSettings(), observer, WithClock(clock.Now))
	return svc, store
}
