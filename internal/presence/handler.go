package presence

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/indra210595/chat-app/internal/chat"
	"github.com/indra210595/chat-app/internal/domain"
	"github.com/indra210595/chat-app/internal/httpx"
)

// Service reads liveness straight from the in-memory registry. Presence is a
// liveness signal, not an audit trail: it resets on process restart.
type Service struct {
	Hub *chat.Hub
}

func Register(rg *gin.RouterGroup, hub *chat.Hub) {
	s := Service{Hub: hub}
	rg.GET("/users/:id/presence", s.get)
}

func (s Service) get(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}

	status, lastSeen := s.Hub.Presence(id)
	resp := gin.H{"user_id": id, "status": status}
	if status == domain.StatusOffline && !lastSeen.IsZero() {
		resp["last_seen"] = lastSeen.Format(time.RFC3339)
	}
	httpx.OK(c, resp)
}
