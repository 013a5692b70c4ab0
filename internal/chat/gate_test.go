package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/indra210595/chat-app/internal/domain"
	"github.com/indra210595/chat-app/internal/storage/memory"
)

func gateFixture(t *testing.T) (*Gate, *memory.Store, *domain.Group) {
	t.Helper()
	store := memory.New()
	g, err := store.CreateWithAdmin(context.Background(), "team", 1)
	require.NoError(t, err)
	require.NoError(t, store.AddMember(context.Background(), g.ID, 2, domain.RoleMember))
	return NewGate(store), store, g
}

func TestGateCanSendToGroup(t *testing.T) {
	req := require.New(t)
	gate, _, g := gateFixture(t)
	ctx := context.Background()

	req.NoError(gate.CanSendToGroup(ctx, 1, g.ID))
	req.NoError(gate.CanSendToGroup(ctx, 2, g.ID))
	req.ErrorIs(gate.CanSendToGroup(ctx, 99, g.ID), ErrForbidden)
}

func TestGateCanMarkRead(t *testing.T) {
	req := require.New(t)
	gate, _, g := gateFixture(t)
	ctx := context.Background()

	groupMsg := &domain.Message{ID: 1, SenderID: 1, GroupID: g.ID}
	privMsg := &domain.Message{ID: 2, SenderID: 1, ReceiverID: 2}

	// self-read is a bad request regardless of room type
	req.ErrorIs(gate.CanMarkRead(ctx, groupMsg, 1), ErrBadRequest)
	req.ErrorIs(gate.CanMarkRead(ctx, privMsg, 1), ErrBadRequest)

	// group: reader must be a member
	req.NoError(gate.CanMarkRead(ctx, groupMsg, 2))
	req.ErrorIs(gate.CanMarkRead(ctx, groupMsg, 99), ErrForbidden)

	// private: reader must be the receiver
	req.NoError(gate.CanMarkRead(ctx, privMsg, 2))
	req.ErrorIs(gate.CanMarkRead(ctx, privMsg, 3), ErrForbidden)
}

func TestGateCanDelete(t *testing.T) {
	req := require.New(t)
	gate, _, _ := gateFixture(t)

	msg := &domain.Message{ID: 1, SenderID: 1, ReceiverID: 2}
	req.NoError(gate.CanDelete(msg, 1))
	req.ErrorIs(gate.CanDelete(msg, 2), ErrForbidden)
}

func TestGateCanAddMember(t *testing.T) {
	req := require.New(t)
	gate, _, g := gateFixture(t)
	ctx := context.Background()

	req.NoError(gate.CanAddMember(ctx, g.ID, 1, 3))
	req.ErrorIs(gate.CanAddMember(ctx, g.ID, 2, 3), ErrForbidden, "plain member cannot add")
	req.ErrorIs(gate.CanAddMember(ctx, g.ID, 99, 3), ErrForbidden, "outsider cannot add")
	req.ErrorIs(gate.CanAddMember(ctx, g.ID, 1, 2), ErrConflict, "already a member")
}
