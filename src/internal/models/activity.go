package models

import "time"

// ActivityMessage is the payload published for every presence event.
type ActivityMessage struct {
	SessionID   string            `json:"session_id"`
	ServiceName string            `json:"service_name"`
	Action      string            `json:"action"`
	IPAddress   string            `json:"ip_address,omitempty"`
	UserAgent   string            `json:"user_agent,omitempty"`
	CurrentPage string            `json:"current_page,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Activity action constants
const (
	ActionSessionStarted = "session_started"
	ActionSessionExpired = "session_expired"
	ActionHeartbeat      = "heartbeat"
)

// Service name constants
const (
	ServicePresenceTracker = "presence.middleware.track"
	ServicePresenceSweeper = "presence.sweeper"
	ServicePresenceHandler = "presence.handler.heartbeat"
)
