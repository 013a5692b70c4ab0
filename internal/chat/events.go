package chat

import (
	"encoding/json"
	"time"

	"github.com/indra210595/chat-app/internal/domain"
)

// Inbound event kinds read off a websocket connection.
const (
	evSendMessage   = "send_message"
	evTyping        = "typing"
	evStopTyping    = "stop_typing"
	evMarkRead      = "mark_read"
	evDeleteMessage = "delete_message"
)

// Outbound event kinds.
const (
	evPresenceChanged  = "presence_changed"
	evMessageDelivered = "message_delivered"
	evMessageRead      = "message_read"
	evMessageDeleted   = "message_deleted"
	evTypingChanged    = "typing_changed"
	evMemberAdded      = "member_added"
	evGroupCreated     = "group_created"
)

// inboundEvent is the envelope every client frame is first decoded into; the
// payload is re-decoded per kind.
type inboundEvent struct {
	Type       string `json:"type"`
	Content    string `json:"content,omitempty"`
	ReceiverID int64  `json:"receiver_id,omitempty"`
	GroupID    int64  `json:"group_id,omitempty"`
	MessageID  int64  `json:"message_id,omitempty"`
}

// Target is the explicit private-vs-group address of an outgoing message or
// typing signal, carried end-to-end instead of sniffing which id field
// happens to be set.
type Target struct {
	UserID  int64
	GroupID int64
}

func (t Target) IsGroup() bool { return t.GroupID != 0 }

// Validate enforces that exactly one of the two addresses is present.
func (t Target) Validate() error {
	if (t.UserID == 0) == (t.GroupID == 0) {
		return ErrBadRequest
	}
	return nil
}

// Room returns the room the target resolves to for a given sender.
func (t Target) Room(senderID int64) RoomKey {
	if t.IsGroup() {
		return GroupRoom(t.GroupID)
	}
	return PrivateRoom(senderID, t.UserID)
}

type presenceEvent struct {
	Type     string `json:"type"`
	UserID   int64  `json:"user_id"`
	Status   string `json:"status"`
	LastSeen string `json:"last_seen,omitempty"`
}

type messageEvent struct {
	Type    string          `json:"type"`
	Message *domain.Message `json:"message"`
}

type readEvent struct {
	Type      string `json:"type"`
	MessageID int64  `json:"message_id"`
	ReaderID  int64  `json:"reader_id"`
}

type deletedEvent struct {
	Type      string `json:"type"`
	MessageID int64  `json:"message_id"`
}

type typingEvent struct {
	Type     string `json:"type"`
	SenderID int64  `json:"sender_id"`
	RoomKey  string `json:"room_key"`
	IsTyping bool   `json:"is_typing"`
}

type memberAddedEvent struct {
	Type    string `json:"type"`
	GroupID int64  `json:"group_id"`
	UserID  int64  `json:"user_id"`
}

type groupCreatedEvent struct {
	Type  string        `json:"type"`
	Group *domain.Group `json:"group"`
}

func marshalPresence(userID int64, status domain.PresenceStatus, lastSeen time.Time) []byte {
	ev := presenceEvent{Type: evPresenceChanged, UserID: userID, Status: string(status)}
	if !lastSeen.IsZero() {
		ev.LastSeen = lastSeen.Format(time.RFC3339)
	}
	payload, _ := json.Marshal(ev)
	return payload
}

func marshalTyping(senderID int64, room RoomKey, isTyping bool) []byte {
	payload, _ := json.Marshal(typingEvent{
		Type:     evTypingChanged,
		SenderID: senderID,
		RoomKey:  room.String(),
		IsTyping: isTyping,
	})
	return payload
}
