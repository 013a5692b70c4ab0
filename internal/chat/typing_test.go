package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type typingRecorder struct {
	mu     sync.Mutex
	events []typingEvent
}

func (r *typingRecorder) emit(senderID int64, room RoomKey, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, typingEvent{SenderID: senderID, RoomKey: room.String(), IsTyping: isTyping})
}

func (r *typingRecorder) snapshot() []typingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]typingEvent(nil), r.events...)
}

func (r *typingRecorder) waitFor(t *testing.T, n int) []typingEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if evs := r.snapshot(); len(evs) >= n {
			return evs
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d typing events, got %d", n, len(r.snapshot()))
	return nil
}

func TestTypingStopEmitsOnce(t *testing.T) {
	req := require.New(t)
	rec := &typingRecorder{}
	tc := NewTypingCoordinator(rec.emit)
	room := PrivateRoom(1, 2)

	tc.Typing(1, room)
	tc.StopTyping(1, room)
	tc.StopTyping(1, room) // second stop: no flag left, nothing emitted

	evs := rec.snapshot()
	req.Len(evs, 2)
	req.True(evs[0].IsTyping)
	req.False(evs[1].IsTyping)
}

func TestTypingExpiry(t *testing.T) {
	req := require.New(t)
	rec := &typingRecorder{}
	tc := NewTypingCoordinator(rec.emit)
	tc.ttl = 20 * time.Millisecond

	tc.Typing(1, GroupRoom(5))
	evs := rec.waitFor(t, 2)
	req.True(evs[0].IsTyping)
	req.False(evs[1].IsTyping, "inactivity timer clears the flag")
}

func TestTypingRearmsTimer(t *testing.T) {
	req := require.New(t)
	rec := &typingRecorder{}
	tc := NewTypingCoordinator(rec.emit)
	tc.ttl = 60 * time.Millisecond
	room := PrivateRoom(1, 2)

	tc.Typing(1, room)
	time.Sleep(30 * time.Millisecond)
	tc.Typing(1, room) // supersedes the pending timer
	time.Sleep(40 * time.Millisecond)

	// first timer was re-armed, so no stopped event yet
	for _, ev := range rec.snapshot() {
		req.True(ev.IsTyping)
	}
	rec.waitFor(t, 3) // eventually the second timer expires
}

func TestTypingDropCancelsSilently(t *testing.T) {
	req := require.New(t)
	rec := &typingRecorder{}
	tc := NewTypingCoordinator(rec.emit)
	tc.ttl = 20 * time.Millisecond

	tc.Typing(1, PrivateRoom(1, 2))
	tc.Typing(1, GroupRoom(3))
	tc.Drop(1)

	time.Sleep(50 * time.Millisecond)
	evs := rec.snapshot()
	req.Len(evs, 2, "only the two typing signals, no stop after disconnect")
	for _, ev := range evs {
		req.True(ev.IsTyping)
	}
}
