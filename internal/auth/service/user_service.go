package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ivasibi/ascent/internal/auth/domain"
	"github.com/ivasibi/ascent/internal/auth/dto"
	"github.com/ivasibi/ascent/internal/auth/session"
	autherror "github.com/ivasibi/ascent/internal/errors"
	"github.com/ivasibi/ascent/internal/logging"
)

type UserService struct {
	repo       domain.UserRepository
	sessions   session.Store
	sessionTTL time.Duration
	logger     logging.Logger
}

func NewUserService(repo domain.UserRepository, sessions session.Store, sessionTTL time.Duration, logger logging.Logger) *UserService {
	return &UserService{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Register creates a new account with role USER. The two uniqueness checks
// run before the insert; a concurrent registration can still slip past both
// and collide on the unique index, in which case the repository surfaces the
// same conflict errors. That race is deliberately not re-checked here, the
// caller just sees the conflict.
func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) error {
	taken, err := s.repo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return autherror.ErrUsernameAlreadyInUse
	}

	taken, err = s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return autherror.ErrEmailAlreadyInUse
	}

	if strings.TrimSpace(input.Password) == "" {
		return autherror.ErrInvalidArgument
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Disabled:     false,
		Role:         domain.RoleUser,
		CreatedOn:    time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info(ctx, "user registered", "username", user.Username)
	return nil
}

// Login verifies the credentials and establishes a fresh session on the
// carrier. Any session the request already carries is invalidated first so
// a pre-authentication token can never become a post-authentication one.
func (s *UserService) Login(ctx context.Context, carrier *session.Carrier, input dto.LoginInput) error {
	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		return autherror.ErrInvalidCredentials
	}

	if user.Disabled {
		return autherror.ErrUserDisabled
	}

	if !PasswordMatches(input.Password, user.PasswordHash) {
		return autherror.ErrInvalidCredentials
	}

	if old := carrier.Token(); old != "" {
		if err := s.sessions.Delete(ctx, old); err != nil {
			return fmt.Errorf("failed to invalidate previous session: %w", err)
		}
		carrier.Clear()
	}

	token, err := s.sessions.New(ctx, s.sessionTTL, session.Attributes{
		Logged:   true,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	carrier.Bind(token)

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// The session is already live at this point; the stale
		// last_login is a documented, non-fatal inconsistency.
		s.logger.Warn(ctx, "failed to update last login", "username", user.Username, "error", err)
		return fmt.Errorf("failed to update last login: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "username", user.Username)
	return nil
}

// Logout invalidates the session bound to the carrier. A request without a
// session is a no-op, repeated logouts are harmless.
func (s *UserService) Logout(ctx context.Context, carrier *session.Carrier) error {
	token := carrier.Token()
	if token == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	carrier.Clear()
	return nil
}

// Navbar projects the carrier's session into navbar view state. A missing,
// expired or logged-out session all render the same logged-out view.
func (s *UserService) Navbar(ctx context.Context, carrier *session.Carrier) (dto.NavbarView, error) {
	token := carrier.Token()
	if token == "" {
		return dto.NavbarView{Logged: false}, nil
	}

	attrs, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		return dto.NavbarView{}, fmt.Errorf("failed to read session: %w", err)
	}

	if !ok || !attrs.Logged {
		return dto.NavbarView{Logged: false}, nil
	}

	return dto.NavbarView{
		Logged:   true,
		Username: attrs.Username,
		Role:     string(attrs.Role),
	}, nil
}
