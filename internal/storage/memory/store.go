// Package memory holds an in-memory implementation of the durable-state
// capabilities. It backs tests and local experiments; nothing survives a
// process restart.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/indra210595/chat-app/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	nextMsgID int64
	messages  map[int64]*domain.Message

	nextGroupID int64
	groups      map[int64]*domain.Group
	roles       map[int64]map[int64]domain.Role // groupID -> userID -> role

	nextUserID int64
	users      map[int64]*domain.User
}

var (
	_ domain.MessageStore = (*Store)(nil)
	_ domain.GroupStore   = (*Store)(nil)
	_ domain.UserStore    = (*Store)(nil)
)

func New() *Store {
	return &Store{
		messages: make(map[int64]*domain.Message),
		groups:   make(map[int64]*domain.Group),
		roles:    make(map[int64]map[int64]domain.Role),
		users:    make(map[int64]*domain.User),
	}
}

// ---- MessageStore ----

func (s *Store) Insert(_ context.Context, m *domain.Message) (*domain.Message, error) {
	if (m.ReceiverID == 0) == (m.GroupID == 0) {
		return nil, errors.New("message must have exactly one of receiver_id, group_id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMsgID++
	cp := *m
	cp.ID = s.nextMsgID
	cp.CreatedAt = time.Now().UTC()
	s.messages[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) Get(_ context.Context, id int64) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) SetRead(_ context.Context, id int64, read bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.IsRead = read
	return nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.messages, id)
	return nil
}

func (s *Store) PrivateHistory(_ context.Context, a, b int64) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*domain.Message
	for _, m := range s.messages {
		if m.GroupID != 0 {
			continue
		}
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			cp := *m
			list = append(list, &cp)
		}
	}
	sortMessages(list)
	return list, nil
}

func (s *Store) GroupHistory(_ context.Context, groupID int64) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*domain.Message
	for _, m := range s.messages {
		if m.GroupID == groupID {
			cp := *m
			list = append(list, &cp)
		}
	}
	sortMessages(list)
	return list, nil
}

func sortMessages(list []*domain.Message) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

// ---- GroupStore ----

func (s *Store) CreateWithAdmin(_ context.Context, name string, adminID int64) (*domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGroupID++
	g := &domain.Group{ID: s.nextGroupID, Name: name, AdminID: adminID, CreatedAt: time.Now().UTC()}
	s.groups[g.ID] = g
	s.roles[g.ID] = map[int64]domain.Role{adminID: domain.RoleAdmin}
	cp := *g
	return &cp, nil
}

func (s *Store) MembersOf(_ context.Context, groupID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var members []int64
	for uid := range s.roles[groupID] {
		members = append(members, uid)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return members, nil
}

func (s *Store) RoleOf(_ context.Context, groupID, userID int64) (domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[groupID][userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return role, nil
}

func (s *Store) AddMember(_ context.Context, groupID, userID int64, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.roles[groupID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, dup := set[userID]; dup {
		return domain.ErrDuplicate
	}
	set[userID] = role
	return nil
}

func (s *Store) GroupsFor(_ context.Context, userID int64) ([]domain.GroupMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []domain.GroupMembership
	for gid, set := range s.roles {
		if role, ok := set[userID]; ok {
			list = append(list, domain.GroupMembership{Group: *s.groups[gid], Role: role})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Group.ID < list[j].Group.ID })
	return list, nil
}

// ---- UserStore ----

func (s *Store) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, domain.ErrDuplicate
		}
	}
	s.nextUserID++
	cp := *u
	cp.ID = s.nextUserID
	cp.CreatedAt = time.Now().UTC()
	s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) ByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) List(_ context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*domain.User
	for _, u := range s.users {
		cp := *u
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
