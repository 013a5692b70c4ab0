package chat

import (
	"context"
	"errors"

	"github.com/indra210595/chat-app/internal/domain"
)

// Gate decides whether an acting identity may perform an event against
// group-membership and message-ownership data. Every check is a fresh store
// read; decisions are never cached across calls.
type Gate struct {
	groups domain.GroupStore
}

func NewGate(groups domain.GroupStore) *Gate {
	return &Gate{groups: groups}
}

// CanSendToGroup requires the sender to be a member of the group.
func (g *Gate) CanSendToGroup(ctx context.Context, senderID, groupID int64) error {
	_, err := g.groups.RoleOf(ctx, groupID, senderID)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return storeErr("role_of", err)
	}
	return nil
}

// CanMarkRead rejects self-reads outright, then requires the reader to be a
// member of the message's group, or its private receiver.
func (g *Gate) CanMarkRead(ctx context.Context, m *domain.Message, readerID int64) error {
	if m.SenderID == readerID {
		return ErrBadRequest
	}
	if m.IsGroup() {
		_, err := g.groups.RoleOf(ctx, m.GroupID, readerID)
		if errors.Is(err, domain.ErrNotFound) {
			return ErrForbidden
		}
		if err != nil {
			return storeErr("role_of", err)
		}
		return nil
	}
	if m.ReceiverID != readerID {
		return ErrForbidden
	}
	return nil
}

// CanDelete permits only the original sender.
func (g *Gate) CanDelete(m *domain.Message, callerID int64) error {
	if m.SenderID != callerID {
		return ErrForbidden
	}
	return nil
}

// CanAddMember requires the caller to hold the admin role and the candidate
// to not already be a member.
func (g *Gate) CanAddMember(ctx context.Context, groupID, callerID, newUserID int64) error {
	role, err := g.groups.RoleOf(ctx, groupID, callerID)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return storeErr("role_of", err)
	}
	if role != domain.RoleAdmin {
		return ErrForbidden
	}
	if _, err := g.groups.RoleOf(ctx, groupID, newUserID); err == nil {
		return ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return storeErr("role_of", err)
	}
	return nil
}
