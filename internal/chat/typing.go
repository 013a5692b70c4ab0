package chat

import (
	"sync"
	"time"
)

const typingTTL = time.Second

type typingKey struct {
	senderID int64
	room     RoomKey
}

// TypingCoordinator owns the transient typing flags. Each (sender, room)
// pair holds an inactivity timer; a typing signal (re)arms it, a stop signal
// or expiry clears it and emits the stopped notification. Nothing here is
// persisted.
type TypingCoordinator struct {
	ttl  time.Duration
	emit func(senderID int64, room RoomKey, isTyping bool)

	mu     sync.Mutex
	timers map[typingKey]*time.Timer
}

func NewTypingCoordinator(emit func(senderID int64, room RoomKey, isTyping bool)) *TypingCoordinator {
	return &TypingCoordinator{
		ttl:    typingTTL,
		emit:   emit,
		timers: make(map[typingKey]*time.Timer),
	}
}

// Typing marks the sender as typing in the room and (re)starts the
// inactivity timer.
func (tc *TypingCoordinator) Typing(senderID int64, room RoomKey) {
	key := typingKey{senderID: senderID, room: room}
	tc.mu.Lock()
	if t, ok := tc.timers[key]; ok {
		t.Stop()
	}
	tc.timers[key] = time.AfterFunc(tc.ttl, func() { tc.expire(key) })
	tc.mu.Unlock()

	tc.emit(senderID, room, true)
}

// StopTyping clears the flag immediately and emits the stopped signal.
func (tc *TypingCoordinator) StopTyping(senderID int64, room RoomKey) {
	key := typingKey{senderID: senderID, room: room}
	tc.mu.Lock()
	t, ok := tc.timers[key]
	if ok {
		t.Stop()
		delete(tc.timers, key)
	}
	tc.mu.Unlock()
	if ok {
		tc.emit(senderID, room, false)
	}
}

func (tc *TypingCoordinator) expire(key typingKey) {
	tc.mu.Lock()
	_, ok := tc.timers[key]
	if ok {
		delete(tc.timers, key)
	}
	tc.mu.Unlock()
	if ok {
		tc.emit(key.senderID, key.room, false)
	}
}

// Drop cancels every pending timer for a sender without emitting. Called on
// the sender's disconnect.
func (tc *TypingCoordinator) Drop(senderID int64) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for key, t := range tc.timers {
		if key.senderID == senderID {
			t.Stop()
			delete(tc.timers, key)
		}
	}
}
