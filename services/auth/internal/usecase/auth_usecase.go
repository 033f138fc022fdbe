package usecase

import (
	"context"
	"errors"
	"fmt"

	"finsight/pkg/logger"
	"finsight/pkg/session"
	"finsight/services/auth/internal/entity"
	"finsight/services/auth/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3VqGXkQWi0eTlCjWjSj1xKe")

type AuthUseCase interface {
	SignIn(ctx context.Context, email, password string) (*session.Session, string, *entity.User, error)
	SignOut(ctx context.Context, s *session.Session) error
	GetSession(ctx context.Context, token string) *session.Session
	CurrentUser(ctx context.Context, s *session.Session) (*entity.User, error)
}

type authUseCase struct {
	userRepo persistent.UserRepository
	sessions *session.Manager
	logger   *logger.Logger
}

func NewAuthUseCase(
	userRepo persistent.UserRepository,
	sessions *session.Manager,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo: userRepo,
		sessions: sessions,
		logger:   logger,
	}
}

func (uc *authUseCase) SignIn(ctx context.Context, email, password string) (*session.Session, string, *entity.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, entity.ErrUserNotFound) {
			uc.logger.Error("Failed to look up user email=%s: %v", email, err)
			return nil, "", nil, fmt.Errorf("failed to sign in: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, "", nil, entity.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", nil, entity.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", nil, entity.ErrAccountDisabled
	}

	s, token, err := uc.sessions.Issue(user.ID, user.Email)
	if err != nil {
		uc.logger.Error("Failed to issue session for user=%s: %v", user.ID, err)
		return nil, "", nil, fmt.Errorf("failed to issue session: %w", err)
	}

	uc.logger.Info("User %s signed in, session=%s", user.ID, s.ID)
	return s, token, user, nil
}

func (uc *authUseCase) SignOut(ctx context.Context, s *session.Session) error {
	if err := uc.sessions.Revoke(ctx, s); err != nil {
		return err
	}
	uc.logger.Info("Session %s signed out", s.ID)
	return nil
}

// GetSession returns the live session for token, or nil when there is none.
func (uc *authUseCase) GetSession(ctx context.Context, token string) *session.Session {
	if token == "" {
		return nil
	}
	s, err := uc.sessions.Resolve(ctx, token)
	if err != nil {
		uc.logger.Debug("Session lookup rejected: %v", err)
		return nil
	}
	return s
}

func (uc *authUseCase) CurrentUser(ctx context.Context, s *session.Session) (*entity.User, error) {
	if s == nil {
		return nil, session.ErrInvalidSession
	}
	return uc.userRepo.GetByID(ctx, s.UserID)
}
