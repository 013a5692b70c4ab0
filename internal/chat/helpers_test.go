package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/indra210595/chat-app/internal/domain"
	"github.com/indra210595/chat-app/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHub(store *memory.Store) *Hub {
	return NewHub(testLogger(), store, store)
}

// failingMessages simulates a broken durable store on the insert path.
type failingMessages struct {
	domain.MessageStore
}

func (failingMessages) Insert(context.Context, *domain.Message) (*domain.Message, error) {
	return nil, errors.New("insert failed")
}

// testClient builds a connection handle without a websocket behind it; the
// registry and fan-out only ever touch the Send channel.
func testClient(hub *Hub, userID int64) *Client {
	return &Client{
		ID:     uuid.NewString(),
		Hub:    hub,
		Send:   make(chan []byte, 32),
		UserID: userID,
	}
}

// recvEvent pops the next frame off a client's channel, decoded to a map.
func recvEvent(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case payload := <-c.Send:
		var ev map[string]any
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("bad event payload %q: %v", payload, err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("no event received for user %d", c.UserID)
		return nil
	}
}

// drain discards everything currently buffered on a client's channel.
func drain(c *Client) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}
