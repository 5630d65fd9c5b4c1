package presence

import (
	"context"
	"time"

	"showroom-presence-svc/src/internal/models"

	"github.com/sirupsen/logrus"
)

// Observer is notified of session lifecycle events. Calls happen after the
// store lock is released.
type Observer interface {
	SessionStarted(rec Record)
	Heartbeat(rec Record)
	SessionsExpired(recs []Record)
}

type NopObserver struct{}

func (NopObserver) SessionStarted(Record)    {}
func (NopObserver) Heartbeat(Record)         {}
func (NopObserver) SessionsExpired([]Record) {}

// Observers fans every event out to each member in order.
type Observers []Observer

func (o Observers) SessionStarted(rec Record) {
	for _, observer := range o {
		observer.SessionStarted(rec)
	}
}

func (o Observers) Heartbeat(rec Record) {
	for _, observer := range o {
		observer.Heartbeat(rec)
	}
}

func (o Observers) SessionsExpired(recs []Record) {
	for _, observer := range o {
		observer.SessionsExpired(recs)
	}
}

// ActivityPublisher sends activity messages to the message broker.
type ActivityPublisher interface {
	Publish(message models.ActivityMessage) error
}

type activityObserver struct {
	publisher ActivityPublisher
	now       func() time.Time
}

// NewActivityObserver turns lifecycle events into published activity messages.
func NewActivityObserver(publisher ActivityPublisher) Observer {
	return &activityObserver{publisher: publisher, now: time.Now}
}

func (o *activityObserver) SessionStarted(rec Record) {
	o.publish(rec, models.ActionSessionStarted, models.ServicePresenceTracker)
}

func (o *activityObserver) Heartbeat(rec Record) {
	o.publish(rec, models.ActionHeartbeat, models.ServicePresenceHandler)
}

func (o *activityObserver) SessionsExpired(recs []Record) {
	for _, rec := range recs {
		o.publish(rec, models.ActionSessionExpired, models.ServicePresenceSweeper)
	}
}

func (o *activityObserver) publish(rec Record, action, serviceName string) {
	message := models.ActivityMessage{
		SessionID:   rec.SessionID,
		ServiceName: serviceName,
		Action:      action,
		IPAddress:   rec.IP,
		UserAgent:   rec.UserAgent,
		CurrentPage: rec.CurrentPage,
		Metadata: map[string]string{
			"created_at": models.FormatTimestamp(rec.CreatedAt),
			"last_seen":  models.FormatTimestamp(rec.LastSeen),
		},
		Timestamp: o.now(),
	}

	if err := o.publisher.Publish(message); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"session_id": rec.SessionID,
			"action":     action,
		}).Warn("Failed to publish presence activity")
	}
}

type archiveObserver struct {
	NopObserver
	repository Repository
	timeout    time.Duration
}

// NewArchiveObserver stores every expired session in the history repository.
func NewArchiveObserver(repository Repository, timeout time.Duration) Observer {
	return &archiveObserver{repository: repository, timeout: timeout}
}

func (o *archiveObserver) SessionsExpired(recs []Record) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	if err := o.repository.Archive(ctx, recs); err != nil {
		log.WithError(err).WithField("count", len(recs)).Warn("Failed to archive expired sessions")
	}
}
