package franchise

import (
	"context"
	"errors"
	"strings"

	"github.com/jwtpizza/pizza-service/internal/policy"
	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/repositories"
	"github.com/jwtpizza/pizza-service/services"
	"go.uber.org/zap"
)

// Users resolves franchise admins and grants their role
type Users interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	AddFranchiseRole(ctx context.Context, userID, franchiseID int64) error
}

// CreateInput describes a new franchise
type CreateInput struct {
	Name        string
	AdminEmails []string
}

// Service manages franchises and their stores
type Service struct {
	franchises repositories.FranchiseRepository
	users      Users
	txMgr      repositories.TransactionManager
	engine     *policy.Engine
	logger     *zap.Logger
}

// NewService creates a new franchise service
func NewService(franchises repositories.FranchiseRepository, users Users, txMgr repositories.TransactionManager, engine *policy.Engine, logger *zap.Logger) *Service {
	return &Service{
		franchises: franchises,
		users:      users,
		txMgr:      txMgr,
		engine:     engine,
		logger:     logger,
	}
}

// List returns one page of franchises. Admin lists are only attached for admins.
func (s *Service) List(ctx context.Context, principal *policy.Principal, filter models.FranchiseFilter) ([]*models.Franchise, bool, error) {
	decision := s.engine.Evaluate(principal, policy.ActionListFranchises, policy.Target{})

	franchises, more, err := s.franchises.List(ctx, filter)
	if err != nil {
		return nil, false, services.WrapInternal("failed to list franchises", err)
	}

	for _, f := range franchises {
		if decision.Scope != policy.ScopeFull {
			f.Admins = nil
			continue
		}
		admins, err := s.franchises.ListAdmins(ctx, f.ID)
		if err != nil {
			return nil, false, services.WrapInternal("failed to list franchise admins", err)
		}
		f.Admins = admins
	}

	return franchises, more, nil
}

// ListForUser returns the franchises userID administers.
// Callers that are neither that user nor an admin get an empty list.
func (s *Service) ListForUser(ctx context.Context, principal *policy.Principal, userID int64) ([]*models.Franchise, error) {
	decision := s.engine.Evaluate(principal, policy.ActionListUserFranchises, policy.Target{UserID: userID})
	if !decision.Allowed {
		return nil, services.ErrUnauthorized
	}
	if decision.Scope == policy.ScopeNone {
		return []*models.Franchise{}, nil
	}

	franchises, err := s.franchises.ListByAdmin(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to list user franchises", err)
	}
	if franchises == nil {
		franchises = []*models.Franchise{}
	}
	return franchises, nil
}

// Create adds a franchise and grants every named admin the franchisee role.
// Nothing is stored when any admin email is unknown.
func (s *Service) Create(ctx context.Context, principal *policy.Principal, in CreateInput) (*models.Franchise, error) {
	if d := s.engine.Evaluate(principal, policy.ActionCreateFranchise, policy.Target{}); !d.Allowed {
		return nil, services.ErrCreateFranchiseDenied
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "name")
	}

	franchise := &models.Franchise{
		Name:   name,
		Admins: []models.FranchiseAdminRef{},
		Stores: []models.Store{},
	}

	err := services.WithTransaction(ctx, s.txMgr, func(ctx context.Context) error {
		for _, email := range in.AdminEmails {
			user, err := s.users.GetUserByEmail(ctx, email)
			if err != nil {
				if errors.Is(err, services.ErrUnknownUser) {
					return services.ErrUnknownUser.WithDetail("email", email)
				}
				return err
			}
			franchise.Admins = append(franchise.Admins, models.FranchiseAdminRef{ID: user.ID, Name: user.Name, Email: user.Email})
		}

		if err := s.franchises.Create(ctx, franchise); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return services.ErrDuplicateFranchise.Wrap(err)
			}
			return services.WrapInternal("failed to create franchise", err)
		}

		for _, admin := range franchise.Admins {
			if err := s.users.AddFranchiseRole(ctx, admin.ID, franchise.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("franchise created",
		zap.Int64("franchise_id", franchise.ID),
		zap.Int("admins", len(franchise.Admins)),
	)
	return franchise, nil
}

// Delete removes a franchise with its stores and admin roles.
// Deleting an unknown franchise succeeds.
func (s *Service) Delete(ctx context.Context, principal *policy.Principal, franchiseID int64) error {
	if d := s.engine.Evaluate(principal, policy.ActionDeleteFranchise, policy.Target{FranchiseID: franchiseID}); !d.Allowed {
		return services.ErrUnauthorized
	}

	err := services.WithTransaction(ctx, s.txMgr, func(ctx context.Context) error {
		if err := s.franchises.Delete(ctx, franchiseID); err != nil {
			return services.WrapInternal("failed to delete franchise", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("franchise deleted", zap.Int64("franchise_id", franchiseID))
	return nil
}

// CreateStore adds a store to a franchise the caller manages
func (s *Service) CreateStore(ctx context.Context, principal *policy.Principal, franchiseID int64, name string) (*models.Store, error) {
	if d := s.engine.Evaluate(principal, policy.ActionCreateStore, policy.Target{FranchiseID: franchiseID}); !d.Allowed {
		return nil, services.ErrCreateStoreDenied
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "name")
	}

	store := &models.Store{FranchiseID: franchiseID, Name: name}
	if err := s.franchises.CreateStore(ctx, store); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCreateStoreDenied.Wrap(err)
		}
		return nil, services.WrapInternal("failed to create store", err)
	}

	s.logger.Info("store created",
		zap.Int64("franchise_id", franchiseID),
		zap.Int64("store_id", store.ID),
	)
	return store, nil
}

// DeleteStore removes a store from a franchise the caller manages
func (s *Service) DeleteStore(ctx context.Context, principal *policy.Principal, franchiseID, storeID int64) error {
	if d := s.engine.Evaluate(principal, policy.ActionDeleteStore, policy.Target{FranchiseID: franchiseID}); !d.Allowed {
		return services.ErrDeleteStoreDenied
	}

	if _, err := s.franchises.GetByID(ctx, franchiseID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrDeleteStoreDenied.Wrap(err)
		}
		return services.WrapInternal("failed to get franchise", err)
	}

	if err := s.franchises.DeleteStore(ctx, franchiseID, storeID); err != nil {
		return services.WrapInternal("failed to delete store", err)
	}

	s.logger.Info("store deleted",
		zap.Int64("franchise_id", franchiseID),
		zap.Int64("store_id", storeID),
	)
	return nil
}
