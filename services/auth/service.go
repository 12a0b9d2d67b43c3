package auth

import (
	"context"
	"errors"
	"time"

	tokens "github.com/jwtpizza/pizza-service/internal/auth"
	"github.com/jwtpizza/pizza-service/internal/policy"
	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/services"
	"github.com/jwtpizza/pizza-service/services/identity"
	"github.com/jwtpizza/pizza-service/services/session"
	"go.uber.org/zap"
)

// Identity is an authenticated caller resolved from a bearer token
type Identity struct {
	User   *models.User
	Claims *tokens.Claims
	Token  string
}

// Principal returns the caller as seen by the authorization engine.
// Roles come from the token, so role changes apply after the next login.
func (i *Identity) Principal() *policy.Principal {
	if i == nil {
		return nil
	}
	return &policy.Principal{
		UserID: i.User.ID,
		Roles:  i.Claims.Roles,
	}
}

// Service orchestrates register, login, logout and per-request authentication
type Service struct {
	codec    *tokens.Codec
	sessions *session.Store
	users    *identity.Service
	logger   *zap.Logger
}

// NewService creates a new auth flow service
func NewService(codec *tokens.Codec, sessions *session.Store, users *identity.Service, logger *zap.Logger) *Service {
	return &Service{
		codec:    codec,
		sessions: sessions,
		users:    users,
		logger:   logger,
	}
}

// Register creates a diner account and logs it in
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	user, err := s.users.AddUser(ctx, identity.NewUserInput{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login resolves credentials and issues a token reflecting the user's current roles
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetUser(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return user, token, nil
}

// IssueToken signs a token for the user and registers it as a valid session
func (s *Service) IssueToken(ctx context.Context, user *models.User) (string, error) {
	token, claims, err := s.codec.Issue(user)
	if err != nil {
		return "", services.WrapInternal("failed to issue token", err)
	}

	if err := s.sessions.Register(ctx, token, user.ID, claims.ExpiresAt.Time); err != nil {
		return "", err
	}
	return token, nil
}

// Logout revokes a currently valid token
func (s *Service) Logout(ctx context.Context, token string) error {
	ident, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}

	s.logger.Info("user logged out", zap.Int64("user_id", ident.User.ID))
	return nil
}

// Authenticate verifies the token, checks it has not been revoked and resolves the user.
// Every failure is reported as ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, services.ErrUnauthorized
	}

	claims, err := s.codec.Verify(token)
	if err != nil {
		s.logger.Debug("token rejected", zap.String("reason", rejectReason(err)))
		return nil, services.ErrUnauthorized.Wrap(err)
	}

	valid, err := s.sessions.IsValid(ctx, token)
	if err != nil {
		return nil, err
	}
	if !valid {
		s.logger.Debug("token rejected", zap.String("reason", "revoked"))
		return nil, services.ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID())
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrUnauthorized.Wrap(err)
		}
		return nil, err
	}
	user.Roles = claims.Roles
	if user.Roles == nil {
		user.Roles = []models.RoleAssignment{}
	}

	return &Identity{User: user, Claims: claims, Token: token}, nil
}

// TokenTTL returns how long issued tokens stay valid
func (s *Service) TokenTTL() time.Duration {
	return s.codec.TTL()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, tokens.ErrExpired):
		return "expired"
	case errors.Is(err, tokens.ErrSignatureMismatch):
		return "signature"
	default:
		return "malformed"
	}
}
