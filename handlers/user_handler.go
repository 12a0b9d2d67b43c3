package handlers

import (
	"context"
	"net/http"

	"github.com/jwtpizza/pizza-service/internal/policy"
	"github.com/jwtpizza/pizza-service/middleware"
	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/services"
	"github.com/jwtpizza/pizza-service/utils"
	"go.uber.org/zap"
)

// UserService defines the user operations used by the HTTP layer
type UserService interface {
	UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
}

// TokenIssuer issues a session token for a user
type TokenIssuer interface {
	IssueToken(ctx context.Context, user *models.User) (string, error)
}

// UpdateUserRequest is the body of PUT /api/user/{userId}. Omitted fields are kept.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UserListResponse is returned by the unimplemented user listing endpoints
type UserListResponse struct {
	Message string         `json:"message"`
	Users   []*models.User `json:"users"`
	More    bool           `json:"more"`
}

// UserHandler handles user endpoints
type UserHandler struct {
	users  UserService
	tokens TokenIssuer
	engine *policy.Engine
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService, tokens TokenIssuer, engine *policy.Engine, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		tokens: tokens,
		engine: engine,
		logger: logger,
	}
}

// HandleMe handles GET /api/user/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r.Context())
	if identity == nil {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	_ = utils.WriteOK(w, identity.User)
}

// HandleUpdate handles PUT /api/user/{userId}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := idParam(r, "userId")
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	principal := middleware.GetPrincipalFromContext(ctx)
	if d := h.engine.Evaluate(principal, policy.ActionUpdateUser, policy.Target{UserID: userID}); !d.Allowed {
		h.logger.Warn("user update denied",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.Int64("target_user_id", userID))
		HandleServiceError(w, services.ErrUpdateUserDenied, h.logger)
		return
	}

	var req UpdateUserRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.UpdateUser(ctx, userID, models.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	token, err := h.tokens.IssueToken(ctx, user)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, AuthResponse{User: user, Token: token})
}

// HandleList handles GET /api/user
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if d := h.engine.Evaluate(principal, policy.ActionListUsers, policy.Target{}); !d.Allowed {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	_ = utils.WriteOK(w, UserListResponse{Message: "not implemented", Users: []*models.User{}, More: false})
}

// HandleDelete handles DELETE /api/user/{userId}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userId")
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	principal := middleware.GetPrincipalFromContext(r.Context())
	if d := h.engine.Evaluate(principal, policy.ActionDeleteUser, policy.Target{UserID: userID}); !d.Allowed {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	_ = utils.WriteOK(w, UserListResponse{Message: "not implemented", Users: []*models.User{}, More: false})
}
