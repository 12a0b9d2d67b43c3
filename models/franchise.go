package models

import (
	"math"
	"time"
)

// FranchiseAdminRef references a user administering a franchise
type FranchiseAdminRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Franchise owns a set of stores and is managed by its admins
type Franchise struct {
	ID        int64               `json:"id" db:"id"`
	Name      string              `json:"name" db:"name"`
	Admins    []FranchiseAdminRef `json:"admins,omitempty"`
	Stores    []Store             `json:"stores"`
	CreatedAt time.Time           `json:"-" db:"created_at"`
}

// TableName returns the table name for the Franchise model
func (Franchise) TableName() string {
	return "franchises"
}

// Store belongs to exactly one franchise
type Store struct {
	ID           int64   `json:"id" db:"id"`
	FranchiseID  int64   `json:"franchiseId,omitempty" db:"franchise_id"`
	Name         string  `json:"name" db:"name"`
	TotalRevenue float64 `json:"totalRevenue,omitempty"`
}

// TableName returns the table name for the Store model
func (Store) TableName() string {
	return "stores"
}

// FranchiseFilter narrows franchise listings
type FranchiseFilter struct {
	Page  int
	Limit int
	// Name is matched with '*' as a wildcard; empty or "*" matches everything
	Name string
}

// DefaultFranchiseLimit is the page size used when none is given
const DefaultFranchiseLimit = 10

// Window converts the page and limit into a row offset and page size.
// ok is false when the page starts past any addressable row.
func (f FranchiseFilter) Window() (offset, limit int, ok bool) {
	limit = f.Limit
	if limit <= 0 {
		limit = DefaultFranchiseLimit
	}
	if limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	offset, ok = PageOffset(f.Page, limit)
	return offset, limit, ok
}

// PageOffset returns the first row of a zero-based page. ok is false when
// that row, or the end of the page, cannot be represented as an int.
func PageOffset(page, size int) (offset int, ok bool) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		return 0, true
	}
	if page > (math.MaxInt-size)/size {
		return 0, false
	}
	return page * size, true
}
