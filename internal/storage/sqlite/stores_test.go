package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/indra210595/chat-app/internal/domain"
)

func testStores(t *testing.T) *Stores {
	t.Helper()
	conn, err := New("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Db.Close() })
	require.NoError(t, conn.MigrateFile("../../../sql/schema.sql"))
	return conn.Stores()
}

func seedUsers(t *testing.T, s *Stores, names ...string) []*domain.User {
	t.Helper()
	var users []*domain.User
	for _, name := range names {
		u, err := s.Create(context.Background(), &domain.User{
			Username:     name,
			Email:        name + "@example.com",
			PasswordHash: "x",
		})
		require.NoError(t, err)
		users = append(users, u)
	}
	return users
}

func TestUserCreateAndLookup(t *testing.T) {
	req := require.New(t)
	s := testStores(t)
	ctx := context.Background()

	u := seedUsers(t, s, "alice")[0]
	req.NotZero(u.ID)

	got, err := s.ByEmail(ctx, "alice@example.com")
	req.NoError(err)
	req.Equal(u.ID, got.ID)
	req.Equal("alice", got.Username)

	_, err = s.ByEmail(ctx, "nobody@example.com")
	req.ErrorIs(err, domain.ErrNotFound)

	_, err = s.Create(ctx, &domain.User{Username: "alice2", Email: "alice@example.com", PasswordHash: "x"})
	req.ErrorIs(err, domain.ErrDuplicate)

	list, err := s.List(ctx)
	req.NoError(err)
	req.Len(list, 1)
}

func TestMessageRoundtrip(t *testing.T) {
	req := require.New(t)
	s := testStores(t)
	ctx := context.Background()

	users := seedUsers(t, s, "a", "b")
	a, b := users[0].ID, users[1].ID

	m1, err := s.Insert(ctx, &domain.Message{Content: "first", SenderID: a, ReceiverID: b})
	req.NoError(err)
	m2, err := s.Insert(ctx, &domain.Message{Content: "second", SenderID: b, ReceiverID: a})
	req.NoError(err)

	got, err := s.Get(ctx, m1.ID)
	req.NoError(err)
	req.Equal("first", got.Content)
	req.False(got.IsRead)
	req.False(got.CreatedAt.IsZero())

	// history is symmetric and insertion-ordered
	for _, pair := range [][2]int64{{a, b}, {b, a}} {
		hist, err := s.PrivateHistory(ctx, pair[0], pair[1])
		req.NoError(err)
		req.Len(hist, 2)
		req.Equal(m1.ID, hist[0].ID)
		req.Equal(m2.ID, hist[1].ID)
	}

	req.NoError(s.SetRead(ctx, m1.ID, true))
	got, err = s.Get(ctx, m1.ID)
	req.NoError(err)
	req.True(got.IsRead)

	req.NoError(s.Delete(ctx, m1.ID))
	_, err = s.Get(ctx, m1.ID)
	req.ErrorIs(err, domain.ErrNotFound)
	req.ErrorIs(s.Delete(ctx, m1.ID), domain.ErrNotFound)
	req.ErrorIs(s.SetRead(ctx, m1.ID, true), domain.ErrNotFound)
}

func TestMessageTargetInvariant(t *testing.T) {
	req := require.New(t)
	s := testStores(t)
	ctx := context.Background()

	users := seedUsers(t, s, "a", "b")
	_, err := s.Insert(ctx, &domain.Message{Content: "x", SenderID: users[0].ID})
	req.Error(err, "neither receiver nor group")

	g, err := s.CreateWithAdmin(ctx, "team", users[0].ID)
	req.NoError(err)
	_, err = s.Insert(ctx, &domain.Message{
		Content: "x", SenderID: users[0].ID, ReceiverID: users[1].ID, GroupID: g.ID,
	})
	req.Error(err, "both receiver and group")
}

func TestGroupLifecycle(t *testing.T) {
	req := require.New(t)
	s := testStores(t)
	ctx := context.Background()

	users := seedUsers(t, s, "a", "b")
	a, b := users[0].ID, users[1].ID

	g, err := s.CreateWithAdmin(ctx, "team", a)
	req.NoError(err)
	req.NotZero(g.ID)
	req.Equal(a, g.AdminID)

	role, err := s.RoleOf(ctx, g.ID, a)
	req.NoError(err)
	req.Equal(domain.RoleAdmin, role)
	_, err = s.RoleOf(ctx, g.ID, b)
	req.ErrorIs(err, domain.ErrNotFound)

	req.NoError(s.AddMember(ctx, g.ID, b, domain.RoleMember))
	req.ErrorIs(s.AddMember(ctx, g.ID, b, domain.RoleMember), domain.ErrDuplicate)

	members, err := s.MembersOf(ctx, g.ID)
	req.NoError(err)
	req.ElementsMatch([]int64{a, b}, members)

	groups, err := s.GroupsFor(ctx, b)
	req.NoError(err)
	req.Len(groups, 1)
	req.Equal("team", groups[0].Group.Name)
	req.Equal(domain.RoleMember, groups[0].Role)

	gm, err := s.Insert(ctx, &domain.Message{Content: "hi", SenderID: a, GroupID: g.ID})
	req.NoError(err)
	hist, err := s.GroupHistory(ctx, g.ID)
	req.NoError(err)
	req.Len(hist, 1)
	req.Equal(gm.ID, hist[0].ID)
}
