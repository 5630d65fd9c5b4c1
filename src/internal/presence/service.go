package presence

import (
	"context"
	"time"
	"unicode/utf8"

	"showroom-presence-svc/src/internal/config"
	"showroom-presence-svc/src/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Service interface {
	Track(visit Visit) Record
	Heartbeat(sessionID, referrer string) *HeartbeatResponse
	ConnectedCount() *CountResponse
	ConnectedUsers() *ConnectedUsersResponse
	SessionInfo(sessionID string) *SessionInfoResponse
	Stats() *models.Stats
	Sweep() []Record
	Run(ctx context.Context)
}

// Settings holds the presence thresholds.
type Settings struct {
	SessionTimeout      time.Duration
	ActiveWindow        time.Duration
	RecentWindow        time.Duration
	CleanupInterval     time.Duration
	UserAgentMaxLength  int
	KeepFirstClientInfo bool
}

func SettingsFromConfig(cfg config.PresenceConfig) Settings {
	return Settings{
		SessionTimeout:      cfg.SessionTimeoutDuration(),
		ActiveWindow:        cfg.ActiveWindowDuration(),
		RecentWindow:        cfg.RecentWindowDuration(),
		CleanupInterval:     cfg.CleanupIntervalDuration(),
		UserAgentMaxLength:  cfg.UserAgentMaxLength,
		KeepFirstClientInfo: cfg.KeepFirstClientInfo,
	}
}

// DefaultSettings mirrors the thresholds shipped in cfg.yml.
func DefaultSettings() Settings {
	return Settings{
		SessionTimeout:     300 * time.Second,
		ActiveWindow:       120 * time.Second,
		RecentWindow:       60 * time.Second,
		CleanupInterval:    60 * time.Second,
		UserAgentMaxLength: 50,
	}
}

type Option func(*service)

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *service) {
		s.newID = newID
	}
}

type service struct {
	store    *Store
	settings Settings
	observer Observer
	now      func() time.Time
	newID    func() string
}

func NewService(store *Store, settings Settings, observer Observer, opts ...Option) Service {
	if observer == nil {
		observer = NopObserver{}
	}

	s := &service{
		store:    store,
		settings: settings,
		observer: observer,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Track(visit Visit) Record {
	now := s.now()

	sessionID := visit.SessionID
	if sessionID == "" {
		sessionID = s.newID()
		visit.CreatedAt = now
	}

	createdAt := visit.CreatedAt
	if createdAt.IsZero() || createdAt.After(now) {
		createdAt = now
	}

	rec, created := s.store.Upsert(sessionID, func(rec *Record, exists bool) {
		if !exists {
			rec.CreatedAt = createdAt
		}
		if !exists || !s.settings.KeepFirstClientInfo {
			rec.IP = visit.IP
			rec.UserAgent = visit.UserAgent
		}
		rec.CurrentPage = visit.Path
		rec.LastSeen = now
	})

	if created {
		log.WithFields(logrus.Fields{
			"session_id": rec.SessionID,
			"ip":         rec.IP,
			"page":       rec.CurrentPage,
		}).Debug("New session tracked")
		s.observer.SessionStarted(rec)
	}

	return rec
}

func (s *service) Heartbeat(sessionID, referrer string) *HeartbeatResponse {
	now := s.now()

	if referrer == "" {
		referrer = DefaultPage
	}

	if sessionID != "" {
		rec, ok := s.store.Update(sessionID, func(rec *Record) {
			rec.LastSeen = now
			rec.CurrentPage = referrer
		})
		if ok {
			s.observer.Heartbeat(rec)
		} else {
			log.WithField("session_id", sessionID).Debug("Heartbeat for unknown session ignored")
		}
	}

	return &HeartbeatResponse{
		Status:    StatusOK,
		SessionID: sessionID,
		Timestamp: models.FormatTimestamp(now),
	}
}

func (s *service) ConnectedCount() *CountResponse {
	now := s.now()

	count := 0
	for _, rec := range s.store.GetAll() {
		if s.isActive(rec, now) {
			count++
		}
	}

	return &CountResponse{
		ConnectedCount: count,
		Timestamp:      models.FormatTimestamp(now),
	}
}

func (s *service) ConnectedUsers() *ConnectedUsersResponse {
	now := s.now()

	active := make(map[string]ActiveUser)
	for _, rec := range s.store.GetAll() {
		if !s.isActive(rec, now) {
			continue
		}
		active[rec.SessionID] = ActiveUser{
			IP:             valueOr(rec.IP, UnknownAgent),
			UserAgentShort: truncate(valueOr(rec.UserAgent, UnknownAgent), s.settings.UserAgentMaxLength),
			LastSeen:       models.FormatTimestamp(rec.LastSeen),
			CurrentPage:    valueOr(rec.CurrentPage, DefaultPage),
			SessionAge:     rec.Idle(now).Seconds(),
		}
	}

	return &ConnectedUsersResponse{
		TotalConnected: len(active),
		ActiveUsers:    active,
		Timestamp:      models.FormatTimestamp(now),
	}
}

func (s *service) SessionInfo(sessionID string) *SessionInfoResponse {
	now := s.now()

	info := &SessionInfoResponse{SessionID: sessionID}
	for _, rec := range s.store.GetAll() {
		if s.isActive(rec, now) {
			info.ConnectedUsersCount++
		}
		if rec.SessionID == sessionID {
			createdAt := models.FormatTimestamp(rec.CreatedAt)
			lastActivity := models.FormatTimestamp(rec.LastSeen)
			info.CreatedAt = &createdAt
			info.LastActivity = &lastActivity
		}
	}

	return info
}

func (s *service) Stats() *models.Stats {
	now := s.now()
	stats := aggregate(s.store.GetAll(), now, s.settings.RecentWindow, s.settings.SessionTimeout)
	stats.Timestamp = models.FormatTimestamp(now)
	return stats
}

// Sweep evicts every record idle for longer than the session timeout.
func (s *service) Sweep() []Record {
	now := s.now()

	removed := s.store.RemoveIf(func(rec Record) bool {
		return rec.Idle(now) > s.settings.SessionTimeout
	})

	for _, rec := range removed {
		log.WithFields(logrus.Fields{
			"session_id": rec.SessionID,
			"last_seen":  models.FormatTimestamp(rec.LastSeen),
		}).Info("Expired session removed")
	}

	if len(removed) > 0 {
		s.observer.SessionsExpired(removed)
	}

	return removed
}

func (s *service) isActive(rec Record, now time.Time) bool {
	return rec.Idle(now) < s.settings.ActiveWindow
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func truncate(value string, max int) string {
	if max <= 0 || utf8.RuneCountInString(value) <= max {
		return value
	}
	return string([]rune(value)[:max])
}
