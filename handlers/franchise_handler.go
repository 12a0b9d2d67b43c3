package handlers

import (
	"context"
	"net/http"

	"github.com/jwtpizza/pizza-service/internal/policy"
	"github.com/jwtpizza/pizza-service/middleware"
	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/services/franchise"
	"github.com/jwtpizza/pizza-service/utils"
	"go.uber.org/zap"
)

// FranchiseService defines the franchise operations used by the HTTP layer
type FranchiseService interface {
	List(ctx context.Context, principal *policy.Principal, filter models.FranchiseFilter) ([]*models.Franchise, bool, error)
	ListForUser(ctx context.Context, principal *policy.Principal, userID int64) ([]*models.Franchise, error)
	Create(ctx context.Context, principal *policy.Principal, in franchise.CreateInput) (*models.Franchise, error)
	Delete(ctx context.Context, principal *policy.Principal, franchiseID int64) error
	CreateStore(ctx context.Context, principal *policy.Principal, franchiseID int64, name string) (*models.Store, error)
	DeleteStore(ctx context.Context, principal *policy.Principal, franchiseID, storeID int64) error
}

// FranchiseAdminRequest names a franchise admin by email
type FranchiseAdminRequest struct {
	Email string `json:"email"`
}

// CreateFranchiseRequest is the body of POST /api/franchise
type CreateFranchiseRequest struct {
	Name   string                  `json:"name"`
	Admins []FranchiseAdminRequest `json:"admins"`
}

// CreateStoreRequest is the body of POST /api/franchise/{id}/store
type CreateStoreRequest struct {
	Name string `json:"name"`
}

// FranchiseListResponse is one page of franchises
type FranchiseListResponse struct {
	Franchises []*models.Franchise `json:"franchises"`
	More       bool                `json:"more"`
}

// FranchiseHandler handles franchise and store endpoints
type FranchiseHandler struct {
	franchises FranchiseService
	logger     *zap.Logger
}

// NewFranchiseHandler creates a new FranchiseHandler
func NewFranchiseHandler(franchises FranchiseService, logger *zap.Logger) *FranchiseHandler {
	return &FranchiseHandler{
		franchises: franchises,
		logger:     logger,
	}
}

// HandleList handles GET /api/franchise?page=&limit=&name=
func (h *FranchiseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := models.FranchiseFilter{
		Page:  intQuery(r, "page", 0),
		Limit: intQuery(r, "limit", 10),
		Name:  r.URL.Query().Get("name"),
	}

	franchises, more, err := h.franchises.List(ctx, middleware.GetPrincipalFromContext(ctx), filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, FranchiseListResponse{Franchises: franchises, More: more})
}

// HandleListForUser handles GET /api/franchise/{id} where id is a user id
func (h *FranchiseHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := idParam(r, "id")
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	franchises, err := h.franchises.ListForUser(ctx, middleware.GetPrincipalFromContext(ctx), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, franchises)
}

// HandleCreate handles POST /api/franchise
func (h *FranchiseHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateFranchiseRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	in := franchise.CreateInput{Name: req.Name}
	for _, admin := range req.Admins {
		in.AdminEmails = append(in.AdminEmails, admin.Email)
	}

	created, err := h.franchises.Create(ctx, middleware.GetPrincipalFromContext(ctx), in)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, created)
}

// HandleDelete handles DELETE /api/franchise/{id}
func (h *FranchiseHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	franchiseID, err := idParam(r, "id")
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := h.franchises.Delete(ctx, middleware.GetPrincipalFromContext(ctx), franchiseID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteMessage(w, http.StatusOK, "franchise deleted")
}

// HandleCreateStore handles POST /api/franchise/{id}/store
func (h *FranchiseHandler) HandleCreateStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	franchiseID, err := idParam(r, "id")
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	var req CreateStoreRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	store, err := h.franchises.CreateStore(ctx, middleware.GetPrincipalFromContext(ctx), franchiseID, req.Name)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, store)
}

// HandleDeleteStore handles DELETE /api/franchise/{id}/store/{storeId}
func (h *FranchiseHandler) HandleDeleteStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	franchiseID, err := idParam(r, "id")
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	storeID, err := idParam(r, "storeId")
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := h.franchises.DeleteStore(ctx, middleware.GetPrincipalFromContext(ctx), franchiseID, storeID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteMessage(w, http.StatusOK, "store deleted")
}
