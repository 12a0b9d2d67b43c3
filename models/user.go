package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// RoleKind tags the variant of a RoleAssignment
type RoleKind string

const (
	RoleDiner      RoleKind = "diner"
	RoleAdmin      RoleKind = "admin"
	RoleFranchisee RoleKind = "franchisee"
)

// RoleAssignment is a tagged variant over Diner, Admin and FranchiseAdmin(franchiseID).
// ObjectID is only meaningful for RoleFranchisee and holds the franchise the
// assignment is scoped to.
type RoleAssignment struct {
	Kind     RoleKind `json:"role"`
	ObjectID int64    `json:"objectId,omitempty"`
}

// Diner returns the default customer-level assignment
func Diner() RoleAssignment {
	return RoleAssignment{Kind: RoleDiner}
}

// Admin returns the global admin assignment
func Admin() RoleAssignment {
	return RoleAssignment{Kind: RoleAdmin}
}

// FranchiseAdmin returns an assignment scoped to a single franchise
func FranchiseAdmin(franchiseID int64) RoleAssignment {
	return RoleAssignment{Kind: RoleFranchisee, ObjectID: franchiseID}
}

// Validate checks that the assignment is a known variant with a valid scope
func (r RoleAssignment) Validate() error {
	switch r.Kind {
	case RoleDiner, RoleAdmin:
		if r.ObjectID != 0 {
			return fmt.Errorf("role %q does not take an object id", r.Kind)
		}
		return nil
	case RoleFranchisee:
		if r.ObjectID <= 0 {
			return fmt.Errorf("role %q requires a franchise id", r.Kind)
		}
		return nil
	default:
		return fmt.Errorf("unknown role %q", r.Kind)
	}
}

// UnmarshalJSON rejects unknown variants so a forged or corrupted role list
// never reaches the authorization engine.
func (r *RoleAssignment) UnmarshalJSON(data []byte) error {
	type raw RoleAssignment
	var v raw
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	ra := RoleAssignment(v)
	if err := ra.Validate(); err != nil {
		return err
	}
	*r = ra
	return nil
}

// User is a registered identity with its role assignments
type User struct {
	ID           int64            `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Email        string           `json:"email" db:"email"`
	PasswordHash string           `json:"-" db:"password"`
	Roles        []RoleAssignment `json:"roles"`
	CreatedAt    time.Time        `json:"-" db:"created_at"`
	UpdatedAt    time.Time        `json:"-" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User holding the given roles, defaulting to Diner
func NewUser(name, email, passwordHash string, roles ...RoleAssignment) *User {
	if len(roles) == 0 {
		roles = []RoleAssignment{Diner()}
	}
	now := time.Now()
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin returns true if the user holds the global admin assignment
func (u *User) IsAdmin() bool {
	return HasAdmin(u.Roles)
}

// HasFranchiseRole returns true if the user administers the given franchise
func (u *User) HasFranchiseRole(franchiseID int64) bool {
	return HasFranchiseAdmin(u.Roles, franchiseID)
}

// HasAdmin reports whether roles contain the Admin variant
func HasAdmin(roles []RoleAssignment) bool {
	for _, r := range roles {
		if r.Kind == RoleAdmin {
			return true
		}
	}
	return false
}

// HasFranchiseAdmin reports whether roles contain FranchiseAdmin(franchiseID)
func HasFranchiseAdmin(roles []RoleAssignment, franchiseID int64) bool {
	for _, r := range roles {
		if r.Kind == RoleFranchisee && r.ObjectID == franchiseID {
			return true
		}
	}
	return false
}

// UserUpdate carries the mutable fields of a user. Nil fields are left unchanged.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
}
