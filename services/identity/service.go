package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/repositories"
	"github.com/jwtpizza/pizza-service/services"
	"go.uber.org/zap"
)

// PasswordHasher hashes and checks passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// NewUserInput is a registration candidate
type NewUserInput struct {
	Name     string
	Email    string
	Password string
	Roles    []models.RoleAssignment
}

// Service holds users, their credentials and their role assignments
type Service struct {
	users  repositories.UserRepository
	txMgr  repositories.TransactionManager
	hasher PasswordHasher
	logger *zap.Logger
}

// NewService creates a new identity service
func NewService(users repositories.UserRepository, txMgr repositories.TransactionManager, hasher PasswordHasher, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		txMgr:  txMgr,
		hasher: hasher,
		logger: logger,
	}
}

// AddUser registers a user. Diner is assigned when no roles are given.
func (s *Service) AddUser(ctx context.Context, in NewUserInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, services.ErrMissingCredentials
	}

	for _, role := range in.Roles {
		if err := role.Validate(); err != nil {
			return nil, services.ErrInvalidInput.Wrap(err)
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, services.WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(name, email, hash, in.Roles...)

	err = services.WithTransaction(ctx, s.txMgr, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return services.ErrDuplicateEmail.Wrap(err)
			}
			return services.WrapInternal("failed to create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// GetUser resolves credentials. Unknown email and wrong password both yield ErrUnknownUser.
func (s *Service) GetUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUnknownUser
		}
		return nil, services.WrapInternal("failed to get user", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		s.logger.Warn("stored password hash unreadable", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, services.ErrUnknownUser
	}
	if !ok {
		return nil, services.ErrUnknownUser
	}

	return user, nil
}

// GetUserByID retrieves a user
func (s *Service) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUnknownUser
		}
		return nil, services.WrapInternal("failed to get user", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user without checking credentials
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUnknownUser
		}
		return nil, services.WrapInternal("failed to get user", err)
	}
	return user, nil
}

// UpdateUser changes name, email or password and returns the refreshed user
func (s *Service) UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	return services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context) (*models.User, error) {
		user, err := s.GetUserByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
			user.Name = strings.TrimSpace(*update.Name)
		}
		if update.Email != nil && normalizeEmail(*update.Email) != "" {
			user.Email = normalizeEmail(*update.Email)
		}
		if update.Password != nil && *update.Password != "" {
			hash, err := s.hasher.Hash(*update.Password)
			if err != nil {
				return nil, services.WrapInternal("failed to hash password", err)
			}
			user.PasswordHash = hash
		}
		user.UpdatedAt = time.Now()

		if err := s.users.Update(ctx, user); err != nil {
			switch {
			case errors.Is(err, repositories.ErrDuplicate):
				return nil, services.ErrDuplicateEmail.Wrap(err)
			case errors.Is(err, repositories.ErrNotFound):
				return nil, services.ErrUnknownUser
			}
			return nil, services.WrapInternal("failed to update user", err)
		}

		s.logger.Info("user updated", zap.Int64("user_id", user.ID))
		return s.GetUserByID(ctx, id)
	})
}

// AddFranchiseRole makes the user an admin of the franchise
func (s *Service) AddFranchiseRole(ctx context.Context, userID, franchiseID int64) error {
	if err := s.users.AddRole(ctx, userID, models.FranchiseAdmin(franchiseID)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrUnknownUser
		}
		return services.WrapInternal("failed to add franchise role", err)
	}
	return nil
}

// SeedAdmin creates an admin account unless the email is already registered
func (s *Service) SeedAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if _, err := s.GetUserByEmail(ctx, email); err == nil {
		s.logger.Debug("admin seed skipped, account exists")
		return false, nil
	} else if !errors.Is(err, services.ErrUnknownUser) {
		return false, err
	}

	_, err := s.AddUser(ctx, NewUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Roles:    []models.RoleAssignment{models.Admin()},
	})
	if errors.Is(err, services.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.logger.Info("admin account seeded")
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
