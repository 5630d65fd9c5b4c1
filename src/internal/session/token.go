package session

import (
	"errors"
	"fmt"
	"time"

	"showroom-presence-svc/src/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKeyID is the gin context key holding the tracked session id.
const ContextKeyID = "session_id"

// Claims is the content of the signed session cookie.
type Claims struct {
	SessionID    string    `json:"sessionId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies session cookies with HMAC-SHA256.
type TokenManager struct {
	secret []byte
	maxAge time.Duration
}

func NewTokenManager(secret string, maxAge time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		maxAge: maxAge,
	}
}

func (m *TokenManager) MaxAge() time.Duration {
	return m.maxAge
}

// Issue signs a token for the given session, valid for maxAge from now.
func (m *TokenManager) Issue(sessionID string, createdAt, lastActivity, now time.Time) (string, error) {
	claims := &Claims{
		SessionID:    sessionID,
		CreatedAt:    createdAt,
		LastActivity: lastActivity,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature and expiry of tokenString.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrSessionTokenExpired
		}
		return nil, models.ErrInvalidSessionToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, models.ErrInvalidSessionToken
	}

	return claims, nil
}
