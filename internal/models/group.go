package models

import (
	"strings"

	"github.com/google/uuid"
)

// PendingMemberPrefix marks member IDs of invited emails with no account yet.
const PendingMemberPrefix = "pending-"

// Group is a set of members sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	Description string
	Avatar      string

	// CreatedBy is the user ID of the group's creator.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// Members is the group roster, ordered by join time.
	Members []Member
}

// Member is one entry of a group roster.
type Member struct {
	// ID is a user ID, or a pending ID for an invited email.
	ID string

	Name   string
	Email  string
	Avatar string

	// JoinedAt is the Unix timestamp when the member was added.
	JoinedAt int64
}

// Pending reports whether the member is an invited email without an account.
func (m Member) Pending() bool {
	return IsPendingMemberID(m.ID)
}

// Member returns the roster entry with the given ID.
func (g *Group) Member(id string) (Member, bool) {
	for _, m := range g.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// HasMember reports whether id is on the group roster.
func (g *Group) HasMember(id string) bool {
	_, ok := g.Member(id)
	return ok
}

// MemberByEmail returns the roster entry with the given email, compared
// case-insensitively.
func (g *Group) MemberByEmail(email string) (Member, bool) {
	email = NormalizeEmail(email)
	for _, m := range g.Members {
		if m.Email != "" && NormalizeEmail(m.Email) == email {
			return m, true
		}
	}
	return Member{}, false
}

// NewPendingMemberID returns a fresh ID for an invited email.
func NewPendingMemberID() string {
	return PendingMemberPrefix + uuid.New().String()
}

// IsPendingMemberID reports whether id was issued by NewPendingMemberID.
func IsPendingMemberID(id string) bool {
	return strings.HasPrefix(id, PendingMemberPrefix)
}
