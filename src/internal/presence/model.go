package presence

import (
	"time"
)

// Record is the last-seen state of one client session.
type Record struct {
	SessionID   string    `json:"session_id" bson:"session_id"`
	IP          string    `json:"ip" bson:"ip"`
	UserAgent   string    `json:"user_agent" bson:"user_agent"`
	CurrentPage string    `json:"current_page" bson:"current_page"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	LastSeen    time.Time `json:"last_seen" bson:"last_seen"`
}

// Idle reports how long the record has gone without activity at now.
func (r Record) Idle(now time.Time) time.Duration {
	return now.Sub(r.LastSeen)
}

// Visit describes one tracked request. SessionID and CreatedAt are empty
// when the client carried no session token.
type Visit struct {
	SessionID string
	CreatedAt time.Time
	IP        string
	UserAgent string
	Path      string
}

type HeartbeatResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

type CountResponse struct {
	ConnectedCount int    `json:"connected_count"`
	Timestamp      string `json:"timestamp"`
}

type ActiveUser struct {
	IP             string  `json:"ip"`
	UserAgentShort string  `json:"user_agent_short"`
	LastSeen       string  `json:"last_seen"`
	CurrentPage    string  `json:"current_page"`
	SessionAge     float64 `json:"session_age"`
}

type ConnectedUsersResponse struct {
	TotalConnected int                   `json:"total_connected"`
	ActiveUsers    map[string]ActiveUser `json:"active_users"`
	Timestamp      string                `json:"timestamp"`
}

// SessionInfoResponse carries null timestamps for sessions the store does
// not know about.
type SessionInfoResponse struct {
	SessionID           string  `json:"session_id"`
	CreatedAt           *string `json:"created_at"`
	LastActivity        *string `json:"last_activity"`
	ConnectedUsersCount int     `json:"connected_users_count"`
}

const (
	StatusOK       = "ok"
	UnknownBrowser = "Unknown"
	UnknownAgent   = "Unknown"
	DefaultPage    = "/"
)
