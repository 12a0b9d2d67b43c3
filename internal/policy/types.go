package policy

import "github.com/jwtpizza/pizza-service/models"

// Principal is an authenticated caller
type Principal struct {
	UserID int64
	Roles  []models.RoleAssignment
}

// Action names an operation guarded by the engine
type Action string

const (
	ActionCreateFranchise    Action = "franchise:create"
	ActionDeleteFranchise    Action = "franchise:delete"
	ActionListFranchises     Action = "franchise:list"
	ActionListUserFranchises Action = "franchise:list_for_user"
	ActionCreateStore        Action = "store:create"
	ActionDeleteStore        Action = "store:delete"
	ActionUpdateMenu         Action = "menu:update"
	ActionUpdateUser         Action = "user:update"
	ActionDeleteUser         Action = "user:delete"
	ActionListUsers          Action = "user:list"
	ActionPlaceOrder         Action = "order:create"
	ActionViewOrders         Action = "order:list"
)

// Target identifies the object an action applies to
type Target struct {
	FranchiseID int64
	UserID      int64
}

// Scope tells an allowed caller how much of the result it may see
type Scope int

const (
	// ScopeNone means the result must be empty
	ScopeNone Scope = iota
	// ScopeRestricted hides admin-only fields
	ScopeRestricted
	// ScopeFull reveals everything
	ScopeFull
)

func (s Scope) String() string {
	switch s {
	case ScopeFull:
		return "full"
	case ScopeRestricted:
		return "restricted"
	default:
		return "none"
	}
}

// Decision is the outcome of an evaluation
type Decision struct {
	Allowed bool
	Reason  string
	Scope   Scope
}
