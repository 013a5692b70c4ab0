package messages

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indra210595/chat-app/internal/auth"
	"github.com/indra210595/chat-app/internal/chat"
	"github.com/indra210595/chat-app/internal/domain"
	"github.com/indra210595/chat-app/internal/httpx"
)

// Service is the request/response surface over message state. The mutating
// routes (read, delete) go through the hub so REST callers and websocket
// clients share one authorization and fan-out path.
type Service struct {
	Messages domain.MessageStore
	Groups   domain.GroupStore
	Hub      *chat.Hub
}

func Register(rg *gin.RouterGroup, messages domain.MessageStore, groups domain.GroupStore, hub *chat.Hub) {
	s := Service{
		Messages: messages,
		Groups:   groups,
		Hub:      hub,
	}
	rg.GET("/messages/group/:groupId", s.groupHistory)
	rg.GET("/messages/:receiverId", s.privateHistory)
	rg.PUT("/messages/:messageId/read", s.markRead)
	rg.DELETE("/messages/:messageId", s.delete)
}

func (s Service) privateHistory(c *gin.Context) {
	uid := auth.MustUserID(c)
	other, ok := httpx.PathID(c, "receiverId")
	if !ok {
		return
	}

	list, err := s.Messages.PrivateHistory(c.Request.Context(), uid, other)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "error fetching message history")
		return
	}
	httpx.OK(c, gin.H{"messages": list})
}

func (s Service) groupHistory(c *gin.Context) {
	uid := auth.MustUserID(c)
	gid, ok := httpx.PathID(c, "groupId")
	if !ok {
		return
	}

	// membership check, fresh read
	if _, err := s.Groups.RoleOf(c.Request.Context(), gid, uid); err != nil {
		httpx.Err(c, http.StatusForbidden, "you are not a member of this group")
		return
	}

	list, err := s.Messages.GroupHistory(c.Request.Context(), gid)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "error fetching group message history")
		return
	}
	httpx.OK(c, gin.H{"messages": list})
}

func (s Service) markRead(c *gin.Context) {
	uid := auth.MustUserID(c)
	mid, ok := httpx.PathID(c, "messageId")
	if !ok {
		return
	}

	if err := s.Hub.MarkRead(c.Request.Context(), mid, uid); err != nil {
		httpx.FromErr(c, err)
		return
	}
	httpx.OK(c, gin.H{"message": "message marked as read"})
}

func (s Service) delete(c *gin.Context) {
	uid := auth.MustUserID(c)
	mid, ok := httpx.PathID(c, "messageId")
	if !ok {
		return
	}

	if err := s.Hub.DeleteMessage(c.Request.Context(), mid, uid); err != nil {
		httpx.FromErr(c, err)
		return
	}
	httpx.OK(c, gin.H{"message": "message deleted"})
}
