package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when the referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by stores on unique-constraint violations
// (duplicate user email, duplicate group membership).
var ErrDuplicate = errors.New("already exists")

// MessageStore is the durable home of messages. The routing core never
// caches message bodies; every read goes back to the store.
type MessageStore interface {
	Insert(ctx context.Context, m *Message) (*Message, error)
	Get(ctx context.Context, id int64) (*Message, error)
	SetRead(ctx context.Context, id int64, read bool) error
	Delete(ctx context.Context, id int64) error
	// PrivateHistory returns both directions of the (a, b) pair,
	// ordered by creation time ascending.
	PrivateHistory(ctx context.Context, a, b int64) ([]*Message, error)
	GroupHistory(ctx context.Context, groupID int64) ([]*Message, error)
}

// GroupStore owns group rows and their membership sets. Membership reads are
// authoritative at call time; callers must not cache results across events.
type GroupStore interface {
	CreateWithAdmin(ctx context.Context, name string, adminID int64) (*Group, error)
	MembersOf(ctx context.Context, groupID int64) ([]int64, error)
	// RoleOf returns ErrNotFound when the user is not a member.
	RoleOf(ctx context.Context, groupID, userID int64) (Role, error)
	AddMember(ctx context.Context, groupID, userID int64, role Role) error
	GroupsFor(ctx context.Context, userID int64) ([]GroupMembership, error)
}

type UserStore interface {
	Create(ctx context.Context, u *User) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	ByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
