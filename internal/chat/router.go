package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/indra210595/chat-app/internal/domain"
)

// Hub is the event router: it receives typed inbound events, runs the
// authorization gate, performs the one durable-state operation the event
// needs, and fans the outbound event out to the resolved recipient set.
// REST handlers call the exported operations and receive typed errors; the
// websocket path shares the same operations and degrades to log-and-drop.
type Hub struct {
	log      *slog.Logger
	registry *Registry
	rooms    *RoomIndex
	gate     *Gate
	typing   *TypingCoordinator
	messages domain.MessageStore
	groups   domain.GroupStore
}

func NewHub(log *slog.Logger, messages domain.MessageStore, groups domain.GroupStore) *Hub {
	h := &Hub{
		log:      log.With("component", "hub"),
		registry: NewRegistry(log),
		rooms:    NewRoomIndex(groups),
		gate:     NewGate(groups),
		messages: messages,
		groups:   groups,
	}
	h.typing = NewTypingCoordinator(h.broadcastTyping)
	return h
}

// Connect registers a live connection and joins it to the identity's group
// rooms. The first connection of an identity announces it online to every
// other online identity.
func (h *Hub) Connect(ctx context.Context, c *Client) {
	first := h.registry.Register(c)
	if err := h.rooms.JoinGroupRooms(ctx, c.UserID); err != nil {
		h.log.Error("join group rooms", "user_id", c.UserID, "err", err)
	}
	if first {
		h.broadcastPresence(c.UserID, domain.StatusOnline, time.Time{})
	}
}

// Disconnect drops the connection; when it was the identity's last one the
// offline transition is broadcast with the freshly stamped last-seen time.
func (h *Hub) Disconnect(c *Client) {
	h.typing.Drop(c.UserID)
	if last := h.registry.Unregister(c); last {
		h.rooms.Leave(c.UserID)
		_, lastSeen := h.registry.Presence(c.UserID)
		h.broadcastPresence(c.UserID, domain.StatusOffline, lastSeen)
	}
}

// Presence reports an identity's in-memory liveness record.
func (h *Hub) Presence(userID int64) (domain.PresenceStatus, time.Time) {
	return h.registry.Presence(userID)
}

// SendMessage persists the message and fans it out: group messages to every
// current group member, private messages to receiver and sender. No partial
// fan-out happens when persistence fails.
func (h *Hub) SendMessage(ctx context.Context, senderID int64, content string, target Target) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrBadRequest
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if target.IsGroup() {
		if err := h.gate.CanSendToGroup(ctx, senderID, target.GroupID); err != nil {
			return nil, err
		}
	}

	msg := &domain.Message{
		Content:    content,
		SenderID:   senderID,
		ReceiverID: target.UserID,
		GroupID:    target.GroupID,
	}
	msg, err := h.messages.Insert(ctx, msg)
	if err != nil {
		return nil, storeErr("insert", err)
	}

	recipients, err := h.recipientsOf(ctx, msg)
	if err != nil {
		return msg, err
	}
	h.fanOut(recipients, mustMarshal(messageEvent{Type: evMessageDelivered, Message: msg}))
	return msg, nil
}

// MarkRead flips the read flag and notifies the message's sender.
func (h *Hub) MarkRead(ctx context.Context, messageID, readerID int64) error {
	msg, err := h.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if err := h.gate.CanMarkRead(ctx, msg, readerID); err != nil {
		return err
	}
	if err := h.messages.SetRead(ctx, messageID, true); err != nil {
		return storeErr("set_read", err)
	}
	h.registry.Deliver(msg.SenderID, mustMarshal(readEvent{
		Type:      evMessageRead,
		MessageID: messageID,
		ReaderID:  readerID,
	}))
	return nil
}

// DeleteMessage removes the message and notifies its original recipient set,
// resolved before the row disappears.
func (h *Hub) DeleteMessage(ctx context.Context, messageID, callerID int64) error {
	msg, err := h.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if err := h.gate.CanDelete(msg, callerID); err != nil {
		return err
	}
	recipients, err := h.recipientsOf(ctx, msg)
	if err != nil {
		return err
	}
	if err := h.messages.Delete(ctx, messageID); err != nil {
		return storeErr("delete", err)
	}
	h.fanOut(recipients, mustMarshal(deletedEvent{Type: evMessageDeleted, MessageID: messageID}))
	return nil
}

// AddMember grants group membership and subscribes the new member's live
// connections to the room, no reconnect required.
func (h *Hub) AddMember(ctx context.Context, groupID, callerID, newUserID int64) error {
	if err := h.gate.CanAddMember(ctx, groupID, callerID, newUserID); err != nil {
		return err
	}
	if err := h.groups.AddMember(ctx, groupID, newUserID, domain.RoleMember); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return ErrConflict
		}
		return storeErr("add_member", err)
	}
	h.rooms.Subscribe(GroupRoom(groupID), newUserID)
	h.registry.Deliver(newUserID, mustMarshal(memberAddedEvent{
		Type:    evMemberAdded,
		GroupID: groupID,
		UserID:  newUserID,
	}))
	return nil
}

// CreateGroup creates the group with the creator as its admin member and
// auto-joins the creator's live connections to the new room.
func (h *Hub) CreateGroup(ctx context.Context, name string, creatorID int64) (*domain.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrBadRequest
	}
	group, err := h.groups.CreateWithAdmin(ctx, name, creatorID)
	if err != nil {
		return nil, storeErr("create_group", err)
	}
	h.rooms.Subscribe(GroupRoom(group.ID), creatorID)
	h.registry.Deliver(creatorID, mustMarshal(groupCreatedEvent{Type: evGroupCreated, Group: group}))
	return group, nil
}

// Typing relays a transient typing signal into the target room.
func (h *Hub) Typing(senderID int64, target Target) error {
	if err := target.Validate(); err != nil {
		return err
	}
	h.typing.Typing(senderID, target.Room(senderID))
	return nil
}

// StopTyping clears a previously signalled typing flag.
func (h *Hub) StopTyping(senderID int64, target Target) error {
	if err := target.Validate(); err != nil {
		return err
	}
	h.typing.StopTyping(senderID, target.Room(senderID))
	return nil
}

// handleInbound dispatches one decoded client frame. This is the
// fire-and-forget path: failures are logged and the event is dropped, there
// is no synchronous caller to report to.
func (h *Hub) handleInbound(ctx context.Context, c *Client, raw []byte) {
	var ev inboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		h.log.Warn("bad frame", "user_id", c.UserID, "err", err)
		return
	}
	target := Target{UserID: ev.ReceiverID, GroupID: ev.GroupID}

	var err error
	switch ev.Type {
	case evSendMessage:
		_, err = h.SendMessage(ctx, c.UserID, ev.Content, target)
	case evTyping:
		err = h.Typing(c.UserID, target)
	case evStopTyping:
		err = h.StopTyping(c.UserID, target)
	case evMarkRead:
		err = h.MarkRead(ctx, ev.MessageID, c.UserID)
	case evDeleteMessage:
		err = h.DeleteMessage(ctx, ev.MessageID, c.UserID)
	default:
		h.log.Warn("unknown event type", "type", ev.Type, "user_id", c.UserID)
		return
	}
	if err != nil {
		h.log.Warn("event dropped", "type", ev.Type, "user_id", c.UserID, "err", err)
	}
}

// getMessage maps a store miss onto the routing taxonomy.
func (h *Hub) getMessage(ctx context.Context, id int64) (*domain.Message, error) {
	msg, err := h.messages.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get", err)
	}
	return msg, nil
}

// recipientsOf resolves the delivery set of a message: the authoritative
// membership read for a group room, the pair itself for a private one.
func (h *Hub) recipientsOf(ctx context.Context, msg *domain.Message) ([]int64, error) {
	if msg.IsGroup() {
		return h.rooms.GroupRoomMembers(ctx, msg.GroupID)
	}
	if msg.SenderID == msg.ReceiverID {
		return []int64{msg.SenderID}, nil
	}
	return []int64{msg.ReceiverID, msg.SenderID}, nil
}

// fanOut delivers one payload to every recipient's connections,
// independently and best-effort.
func (h *Hub) fanOut(recipients []int64, payload []byte) {
	for _, uid := range recipients {
		h.registry.Deliver(uid, payload)
	}
}

func (h *Hub) broadcastPresence(userID int64, status domain.PresenceStatus, lastSeen time.Time) {
	h.registry.DeliverAllExcept(userID, marshalPresence(userID, status, lastSeen))
}

func (h *Hub) broadcastTyping(senderID int64, room RoomKey, isTyping bool) {
	payload := marshalTyping(senderID, room, isTyping)
	for _, uid := range h.rooms.Members(room) {
		if uid == senderID {
			continue
		}
		h.registry.Deliver(uid, payload)
	}
}

func mustMarshal(v any) []byte {
	payload, _ := json.Marshal(v)
	return payload
}
