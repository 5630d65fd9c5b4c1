package presence

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

const DefaultEventBuffer = 256

// AsyncObserver queues lifecycle events and delivers them to the wrapped
// observer from Run's goroutine. Enqueueing never blocks: when the queue is
// full the event is dropped and logged.
type AsyncObserver struct {
	inner  Observer
	events chan func()
}

func NewAsyncObserver(inner Observer, buffer int) *AsyncObserver {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &AsyncObserver{
		inner:  inner,
		events: make(chan func(), buffer),
	}
}

func (o *AsyncObserver) SessionStarted(rec Record) {
	o.enqueue("session_started", 1, func() { o.inner.SessionStarted(rec) })
}

func (o *AsyncObserver) Heartbeat(rec Record) {
	o.enqueue("heartbeat", 1, func() { o.inner.Heartbeat(rec) })
}

func (o *AsyncObserver) SessionsExpired(recs []Record) {
	batch := append([]Record(nil), recs...)
	o.enqueue("sessions_expired", len(batch), func() { o.inner.SessionsExpired(batch) })
}

func (o *AsyncObserver) enqueue(event string, count int, deliver func()) {
	select {
	case o.events <- deliver:
	default:
		log.WithFields(logrus.Fields{
			"event": event,
			"count": count,
		}).Warn("Presence event queue full, event dropped")
	}
}

// Run delivers queued events until ctx is done. Events still queued at that
// point are discarded.
func (o *AsyncObserver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if pending := len(o.events); pending > 0 {
				log.WithField("pending", pending).Warn("Presence events discarded on shutdown")
			}
			return
		case deliver := <-o.events:
			if err := safeDeliver(deliver); err != nil {
				log.WithError(err).Error("Presence event delivery failed")
			}
		}
	}
}

func safeDeliver(deliver func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panicked: %v", r)
		}
	}()

	deliver()
	return nil
}
