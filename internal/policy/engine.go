package policy

import "github.com/jwtpizza/pizza-service/models"

// Engine evaluates authorization decisions. The zero value is ready to use.
type Engine struct{}

// NewEngine creates an engine
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate decides whether principal may perform action on target.
// A nil principal is an anonymous caller.
func (e *Engine) Evaluate(principal *Principal, action Action, target Target) Decision {
	admin := principal != nil && models.HasAdmin(principal.Roles)

	switch action {
	case ActionCreateFranchise:
		if admin {
			return allow(ScopeFull)
		}
		return deny("unable to create a franchise")

	case ActionDeleteFranchise:
		// unrestricted, including anonymous callers
		return allow(ScopeFull)

	case ActionListFranchises:
		if admin {
			return allow(ScopeFull)
		}
		return allow(ScopeRestricted)

	case ActionListUserFranchises:
		if principal == nil {
			return deny("unauthorized")
		}
		if admin || principal.UserID == target.UserID {
			return allow(ScopeFull)
		}
		return allow(ScopeNone)

	case ActionCreateStore:
		if manages(principal, admin, target.FranchiseID) {
			return allow(ScopeFull)
		}
		return deny("unable to create a store")

	case ActionDeleteStore:
		if manages(principal, admin, target.FranchiseID) {
			return allow(ScopeFull)
		}
		return deny("unable to delete a store")

	case ActionUpdateMenu:
		if admin {
			return allow(ScopeFull)
		}
		return deny("unable to add menu item")

	case ActionUpdateUser:
		if principal != nil && (admin || principal.UserID == target.UserID) {
			return allow(ScopeFull)
		}
		return deny("unauthorized")

	case ActionDeleteUser, ActionListUsers, ActionPlaceOrder, ActionViewOrders:
		if principal == nil {
			return deny("unauthorized")
		}
		return allow(ScopeFull)
	}

	return deny("unknown action")
}

func manages(principal *Principal, admin bool, franchiseID int64) bool {
	if principal == nil {
		return false
	}
	return admin || models.HasFranchiseAdmin(principal.Roles, franchiseID)
}

func allow(scope Scope) Decision {
	return Decision{Allowed: true, Scope: scope}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason, Scope: ScopeNone}
}
