package session

import (
	"context"
	"time"

	"github.com/jwtpizza/pizza-service/internal/auth"
	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/repositories"
	"github.com/jwtpizza/pizza-service/services"
	"go.uber.org/zap"
)

// Store tracks which issued tokens are still valid.
// Tokens are keyed by their SHA-256 hash; the raw token is never persisted.
type Store struct {
	repo   repositories.SessionRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewStore creates a session store over the repository
func NewStore(repo repositories.SessionRepository, logger *zap.Logger) *Store {
	return &Store{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock returns a copy of the store reading time from now
func (s *Store) WithClock(now func() time.Time) *Store {
	cp := *s
	cp.now = now
	return &cp
}

// Register marks a freshly issued token as valid until expiresAt
func (s *Store) Register(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	session := &models.Session{
		TokenHash: auth.HashToken(token),
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, session); err != nil {
		return services.WrapInternal("failed to register session", err)
	}
	return nil
}

// Revoke invalidates a token. Revoking an unknown or already revoked token is not an error.
func (s *Store) Revoke(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, auth.HashToken(token)); err != nil {
		return services.WrapInternal("failed to revoke session", err)
	}
	return nil
}

// IsValid reports whether the token was registered, not revoked and not expired
func (s *Store) IsValid(ctx context.Context, token string) (bool, error) {
	ok, err := s.repo.Exists(ctx, auth.HashToken(token), s.now())
	if err != nil {
		return false, services.WrapInternal("failed to check session", err)
	}
	return ok, nil
}

// Prune deletes expired sessions and returns how many were removed
func (s *Store) Prune(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, services.WrapInternal("failed to prune sessions", err)
	}
	if n > 0 {
		s.logger.Info("expired sessions pruned", zap.Int64("count", n))
	}
	return n, nil
}
