package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/indra210595/chat-app/internal/domain"
)

type roomKind int

const (
	roomPrivate roomKind = iota + 1
	roomGroup
)

// RoomKey identifies a logical conversation channel: either the unordered
// pair of two user ids (private chat) or a group id. Private keys are
// canonicalized so both participants derive the same key.
type RoomKey struct {
	kind roomKind
	low  int64 // private: smaller user id
	high int64 // private: larger user id
	gid  int64
}

func PrivateRoom(a, b int64) RoomKey {
	if a > b {
		a, b = b, a
	}
	return RoomKey{kind: roomPrivate, low: a, high: b}
}

func GroupRoom(groupID int64) RoomKey {
	return RoomKey{kind: roomGroup, gid: groupID}
}

func (k RoomKey) IsGroup() bool { return k.kind == roomGroup }

func (k RoomKey) GroupID() int64 { return k.gid }

// Pair returns the two participants of a private room in canonical order.
func (k RoomKey) Pair() (int64, int64) { return k.low, k.high }

// String is the wire form of the key, shared with the history query layer so
// live delivery and persisted history agree on conversation identity.
func (k RoomKey) String() string {
	if k.kind == roomGroup {
		return fmt.Sprintf("group:%d", k.gid)
	}
	return fmt.Sprintf("private:%d:%d", k.low, k.high)
}

// roomFor derives the room of a persisted message.
func roomFor(m *domain.Message) RoomKey {
	if m.IsGroup() {
		return GroupRoom(m.GroupID)
	}
	return PrivateRoom(m.SenderID, m.ReceiverID)
}

// RoomIndex tracks which identities are subscribed to which group rooms,
// mirroring group membership for the lifetime of their connections. It is
// the routing table for transient events (typing); message fan-out always
// re-reads membership from the GroupStore so mid-session changes are
// authoritative.
type RoomIndex struct {
	groups domain.GroupStore

	mu    sync.RWMutex
	rooms map[RoomKey]map[int64]struct{}
}

func NewRoomIndex(groups domain.GroupStore) *RoomIndex {
	return &RoomIndex{
		groups: groups,
		rooms:  make(map[RoomKey]map[int64]struct{}),
	}
}

// JoinGroupRooms subscribes the identity to every group room it currently
// belongs to. Called once per connection register.
func (ri *RoomIndex) JoinGroupRooms(ctx context.Context, userID int64) error {
	memberships, err := ri.groups.GroupsFor(ctx, userID)
	if err != nil {
		return storeErr("groups_for", err)
	}
	ri.mu.Lock()
	defer ri.mu.Unlock()
	for _, gm := range memberships {
		ri.subscribeLocked(GroupRoom(gm.Group.ID), userID)
	}
	return nil
}

// Subscribe adds a single identity to a room. Used when a member is added to
// a group mid-session, so their live connections start receiving room
// traffic without a reconnect.
func (ri *RoomIndex) Subscribe(key RoomKey, userID int64) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.subscribeLocked(key, userID)
}

func (ri *RoomIndex) subscribeLocked(key RoomKey, userID int64) {
	set := ri.rooms[key]
	if set == nil {
		set = make(map[int64]struct{})
		ri.rooms[key] = set
	}
	set[userID] = struct{}{}
}

// Leave drops the identity from every room. Called when its last connection
// goes away.
func (ri *RoomIndex) Leave(userID int64) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	for key, set := range ri.rooms {
		delete(set, userID)
		if len(set) == 0 {
			delete(ri.rooms, key)
		}
	}
}

// Members returns the identities currently subscribed to a group room. For a
// private room it is the pair itself, no subscription state involved.
func (ri *RoomIndex) Members(key RoomKey) []int64 {
	if !key.IsGroup() {
		a, b := key.Pair()
		if a == b {
			return []int64{a}
		}
		return []int64{a, b}
	}
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	out := make([]int64, 0, len(ri.rooms[key]))
	for uid := range ri.rooms[key] {
		out = append(out, uid)
	}
	return out
}

// GroupRoomMembers reads the authoritative membership set from the
// GroupStore. No caching: an add-member must be visible to the very next
// event.
func (ri *RoomIndex) GroupRoomMembers(ctx context.Context, groupID int64) ([]int64, error) {
	members, err := ri.groups.MembersOf(ctx, groupID)
	if err != nil {
		return nil, storeErr("members_of", err)
	}
	return members, nil
}
