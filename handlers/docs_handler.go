package handlers

import (
	"net/http"

	"github.com/jwtpizza/pizza-service/utils"
)

// Endpoint documents one route
type Endpoint struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	RequiresAuth bool   `json:"requiresAuth"`
	Description  string `json:"description"`
	Example      string `json:"example,omitempty"`
}

// Endpoints lists every public API route
var Endpoints = []Endpoint{
	{Method: "POST", Path: "/api/auth", Description: "Register a new user", Example: `{"name":"pizza diner","email":"d@jwt.com","password":"diner"}`},
	{Method: "PUT", Path: "/api/auth", Description: "Login existing user", Example: `{"email":"a@jwt.com","password":"admin"}`},
	{Method: "DELETE", Path: "/api/auth", RequiresAuth: true, Description: "Logout a user"},
	{Method: "GET", Path: "/api/user/me", RequiresAuth: true, Description: "Get authenticated user"},
	{Method: "PUT", Path: "/api/user/:userId", RequiresAuth: true, Description: "Update user"},
	{Method: "GET", Path: "/api/user", RequiresAuth: true, Description: "List users (not implemented)"},
	{Method: "DELETE", Path: "/api/user/:userId", RequiresAuth: true, Description: "Delete user (not implemented)"},
	{Method: "GET", Path: "/api/franchise?page=0&limit=10&name=*", Description: "List franchises"},
	{Method: "GET", Path: "/api/franchise/:userId", RequiresAuth: true, Description: "List a user's franchises"},
	{Method: "POST", Path: "/api/franchise", RequiresAuth: true, Description: "Create a new franchise", Example: `{"name":"pizzaPocket","admins":[{"email":"f@jwt.com"}]}`},
	{Method: "DELETE", Path: "/api/franchise/:franchiseId", Description: "Delete a franchise"},
	{Method: "POST", Path: "/api/franchise/:franchiseId/store", RequiresAuth: true, Description: "Create a new franchise store", Example: `{"name":"SLC"}`},
	{Method: "DELETE", Path: "/api/franchise/:franchiseId/store/:storeId", RequiresAuth: true, Description: "Delete a store"},
	{Method: "GET", Path: "/api/order/menu", Description: "Get the pizza menu"},
	{Method: "PUT", Path: "/api/order/menu", RequiresAuth: true, Description: "Add an item to the menu", Example: `{"title":"Student","description":"No topping, no sauce, just carbs","image":"pizza9.png","price":0.0001}`},
	{Method: "GET", Path: "/api/order?page=1", RequiresAuth: true, Description: "Get the orders for the authenticated user"},
	{Method: "POST", Path: "/api/order", RequiresAuth: true, Description: "Create an order for the authenticated user", Example: `{"franchiseId":1,"storeId":1,"items":[{"menuId":1,"description":"Veggie","price":0.05}]}`},
}

// DocsConfig is the non-secret configuration shown by the docs endpoint
type DocsConfig struct {
	Factory string `json:"factory"`
	DB      string `json:"db"`
}

// DocsResponse is the body of GET /api/docs
type DocsResponse struct {
	Version   string     `json:"version"`
	Endpoints []Endpoint `json:"endpoints"`
	Config    DocsConfig `json:"config"`
}

// WelcomeResponse is the body of GET /
type WelcomeResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// DocsHandler serves the welcome page, API docs and unknown routes
type DocsHandler struct {
	version string
	config  DocsConfig
}

// NewDocsHandler creates a new DocsHandler
func NewDocsHandler(version string, config DocsConfig) *DocsHandler {
	return &DocsHandler{
		version: version,
		config:  config,
	}
}

// HandleWelcome handles GET /
func (h *DocsHandler) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, WelcomeResponse{Message: "welcome to JWT Pizza", Version: h.version})
}

// HandleDocs handles GET /api/docs
func (h *DocsHandler) HandleDocs(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, DocsResponse{Version: h.version, Endpoints: Endpoints, Config: h.config})
}

// HandleNotFound answers every unmatched route
func (h *DocsHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteMessage(w, http.StatusNotFound, "unknown endpoint")
}
