package groups

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/indra210595/chat-app/internal/auth"
	"github.com/indra210595/chat-app/internal/chat"
	"github.com/indra210595/chat-app/internal/domain"
	"github.com/indra210595/chat-app/internal/httpx"
	"github.com/indra210595/chat-app/internal/utils"
)

type Service struct {
	Groups domain.GroupStore
	Hub    *chat.Hub
}

type createReq struct {
	Name string `json:"name" binding:"required"`
}

type addMemberReq struct {
	UserID int64 `json:"user_id" binding:"required"`
}

func Register(rg *gin.RouterGroup, groups domain.GroupStore, hub *chat.Hub) {
	s := Service{
		Groups: groups,
		Hub:    hub,
	}
	rg.POST("/groups", s.create)
	rg.GET("/groups", s.listMine)
	rg.POST("/groups/:groupId/members", s.addMember)
}

func (s Service) create(c *gin.Context) {
	uid := auth.MustUserID(c)
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			httpx.Err(c, http.StatusBadRequest, utils.ValidationErr(validationErrors))
			return
		}
		httpx.Err(c, http.StatusBadRequest, err.Error())
		return
	}

	group, err := s.Hub.CreateGroup(c.Request.Context(), req.Name, uid)
	if err != nil {
		httpx.FromErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": group})
}

func (s Service) listMine(c *gin.Context) {
	uid := auth.MustUserID(c)

	list, err := s.Groups.GroupsFor(c.Request.Context(), uid)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "failed to fetch groups")
		return
	}
	httpx.OK(c, gin.H{"groups": list})
}

func (s Service) addMember(c *gin.Context) {
	uid := auth.MustUserID(c)
	gid, ok := httpx.PathID(c, "groupId")
	if !ok {
		return
	}

	var req addMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			httpx.Err(c, http.StatusBadRequest, utils.ValidationErr(validationErrors))
			return
		}
		httpx.Err(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Hub.AddMember(c.Request.Context(), gid, uid, req.UserID); err != nil {
		httpx.FromErr(c, err)
		return
	}
	httpx.OK(c, gin.H{"message": "member added"})
}
