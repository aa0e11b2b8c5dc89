// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("already exists")
)

// UserStore persists registered users.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// ListUsers returns up to limit users with IDs greater than afterID,
	// ordered by ID. An empty afterID starts from the beginning.
	ListUsers(ctx context.Context, afterID string, limit int) ([]*models.User, error)
}

// GroupStore persists groups and their rosters.
type GroupStore interface {
	// CreateGroup persists a new group with its initial members.
	// The group.ID and CreatedAt fields are populated by the store when unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with its members, or ErrNotFound.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForMember returns every group memberID belongs to, newest first.
	ListGroupsForMember(ctx context.Context, memberID string) ([]*models.Group, error)

	// UpdateGroup updates name, description and avatar. Members are untouched.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group with its members and expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMembers adds members that are not yet on the roster and returns
	// the ones actually added. Existing IDs are skipped.
	AddGroupMembers(ctx context.Context, groupID string, members []models.Member) ([]models.Member, error)

	// RemoveGroupMember removes one member. Their expenses are left as they are.
	RemoveGroupMember(ctx context.Context, groupID, memberID string) error

	// ClaimPendingMemberships rebinds every pending member with the given
	// email to userID, in rosters, payers and owed-by lists alike. It returns
	// the number of groups affected.
	ClaimPendingMemberships(ctx context.Context, email string, user *models.User) (int, error)
}

// ExpenseStore persists expenses and their owed-by lists.
type ExpenseStore interface {
	// CreateExpense persists an expense and its shares in one transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns the expense with its shares, or ErrNotFound.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces every field and the owed-by list.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense, or returns ErrNotFound.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup returns a group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
}

// Store defines the full storage surface used by the services.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore

	// LoadLedgers reads the given groups with their members and expenses in
	// a single read transaction, so balances computed from the result are
	// consistent. Unknown group IDs are skipped.
	LoadLedgers(ctx context.Context, groupIDs []string) ([]*models.GroupLedger, error)

	// Close releases any resources held by the store.
	Close() error
}
