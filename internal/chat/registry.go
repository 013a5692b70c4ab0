package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/indra210595/chat-app/internal/domain"
)

// Registry is the single authority for live connections and presence. All
// mutation goes through its methods; the underlying maps are never exposed.
type Registry struct {
	log *slog.Logger

	mu sync.RWMutex
	// userID -> set of connections (multi-tab / multi-device)
	clients  map[int64]map[*Client]bool
	lastSeen map[int64]time.Time
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:      log.With("component", "registry"),
		clients:  make(map[int64]map[*Client]bool),
		lastSeen: make(map[int64]time.Time),
	}
}

// Register adds a connection and reports whether it is the identity's first,
// i.e. an offline -> online transition. Idempotent per connection handle.
func (r *Registry) Register(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.clients[c.UserID]
	if set == nil {
		set = make(map[*Client]bool)
		r.clients[c.UserID] = set
	}
	if set[c] {
		return false
	}
	first := len(set) == 0
	set[c] = true
	return first
}

// Unregister removes a connection and reports whether the identity has fully
// gone offline. On the last disconnect the lastSeen timestamp is stamped.
// A connection already dropped by Deliver is tolerated: its teardown still
// reports the offline transition once the set is empty.
func (r *Registry) Unregister(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.clients[c.UserID]
	if !ok {
		return false
	}
	if set[c] {
		delete(set, c)
		close(c.Send)
	}
	if len(set) > 0 {
		return false
	}
	delete(r.clients, c.UserID)
	r.lastSeen[c.UserID] = time.Now().UTC()
	return true
}

// ConnectionsFor returns the identity's live connections. Empty for an
// offline identity: delivery to it is a silent no-op, the client catches up
// from history on reconnect.
func (r *Registry) ConnectionsFor(userID int64) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients[userID]))
	for c := range r.clients[userID] {
		out = append(out, c)
	}
	return out
}

// OnlineIDs returns every identity with at least one live connection.
func (r *Registry) OnlineIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int64, 0, len(r.clients))
	for uid, set := range r.clients {
		if len(set) > 0 {
			out = append(out, uid)
		}
	}
	return out
}

// Presence reports the identity's liveness. lastSeen is zero when the
// identity has never disconnected since process start.
func (r *Registry) Presence(userID int64) (domain.PresenceStatus, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.clients[userID]) > 0 {
		return domain.StatusOnline, time.Time{}
	}
	return domain.StatusOffline, r.lastSeen[userID]
}

// Deliver sends a payload to every live connection of an identity,
// best-effort. A slow or broken connection is dropped rather than blocking
// the remaining fan-out.
func (r *Registry) Deliver(userID int64, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.clients[userID]
	for c := range set {
		select {
		case c.Send <- payload:
		default:
			// slow/broken client
			close(c.Send)
			delete(set, c)
			r.log.Warn("dropped slow client", "user_id", userID, "conn_id", c.ID)
		}
	}
	// When the drop emptied the set, only lastSeen is stamped here. The set
	// itself stays so the dropped connection's teardown reaches Unregister
	// and the offline transition is broadcast exactly once, from there.
	if set != nil && len(set) == 0 {
		r.lastSeen[userID] = time.Now().UTC()
	}
}

// DeliverAllExcept fans a payload out to every online identity other than
// the excluded one. Used for presence broadcasts.
func (r *Registry) DeliverAllExcept(exclude int64, payload []byte) {
	for _, uid := range r.OnlineIDs() {
		if uid == exclude {
			continue
		}
		r.Deliver(uid, payload)
	}
}
