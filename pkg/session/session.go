// Package session issues, resolves and revokes admin sessions.
//
// A session is a signed JWT whose jti is the session id. Sign-out records
// the id in a revocation store until the token would have expired anyway.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finsight/pkg/jwt"

	"github.com/google/uuid"
)

var (
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrRevoked        = errors.New("session has been signed out")
)

// Session is the proof of identity threaded through write operations.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type Manager struct {
	jwtService *jwt.Service
	store      RevocationStore
}

// NewManager builds a Manager. A nil store disables revocation checks.
func NewManager(jwtService *jwt.Service, store RevocationStore) *Manager {
	return &Manager{jwtService: jwtService, store: store}
}

func (m *Manager) Issue(userID, email string) (*Session, string, error) {
	id := uuid.New().String()
	token, expiresAt, err := m.jwtService.GenerateToken(id, userID, email)
	if err != nil {
		return nil, "", err
	}
	return &Session{ID: id, UserID: userID, Email: email, ExpiresAt: expiresAt}, token, nil
}

// Resolve validates a bearer token. Store errors fail closed.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := m.jwtService.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.ID == "" || claims.UserID == "" {
		return nil, ErrInvalidSession
	}

	if m.store != nil {
		revoked, err := m.store.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: revocation check failed: %v", ErrInvalidSession, err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}

	s := &Session{ID: claims.ID, UserID: claims.UserID, Email: claims.Email}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

func (m *Manager) Revoke(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrInvalidSession
	}
	if m.store == nil {
		return nil
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := m.store.Revoke(ctx, s.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
