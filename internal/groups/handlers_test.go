package groups

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/indra210595/chat-app/internal/auth"
	"github.com/indra210595/chat-app/internal/chat"
	"github.com/indra210595/chat-app/internal/domain"
	"github.com/indra210595/chat-app/internal/storage/memory"
)

func asUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(auth.CtxUserID), id)
		c.Next()
	}
}

func testRouter(store *memory.Store, uid int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := chat.NewHub(log, store, store)
	r := gin.New()
	Register(r.Group("/api", asUser(uid)), store, hub)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateGroup(t *testing.T) {
	req := require.New(t)
	store := memory.New()
	r := testRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/api/groups", `{"name":"weekend plans"}`)
	req.Equal(http.StatusCreated, w.Code)

	var resp struct {
		Group domain.Group `json:"group"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.Equal("weekend plans", resp.Group.Name)
	req.EqualValues(1, resp.Group.AdminID)

	// the creator is the admin
	role, err := store.RoleOf(context.Background(), resp.Group.ID, 1)
	req.NoError(err)
	req.Equal(domain.RoleAdmin, role)

	req.Equal(http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/groups", `{}`).Code)
}

func TestListMine(t *testing.T) {
	req := require.New(t)
	store := memory.New()
	ctx := context.Background()
	g, err := store.CreateWithAdmin(ctx, "mine", 1)
	req.NoError(err)
	_, err = store.CreateWithAdmin(ctx, "not mine", 2)
	req.NoError(err)

	w := doJSON(testRouter(store, 1), http.MethodGet, "/api/groups", "")
	req.Equal(http.StatusOK, w.Code)

	var resp struct {
		Groups []domain.GroupMembership `json:"groups"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.Len(resp.Groups, 1)
	req.Equal(g.ID, resp.Groups[0].Group.ID)
	req.Equal(domain.RoleAdmin, resp.Groups[0].Role)
}

func TestAddMember(t *testing.T) {
	req := require.New(t)
	store := memory.New()
	ctx := context.Background()
	g, err := store.CreateWithAdmin(ctx, "team", 1)
	req.NoError(err)
	req.NoError(store.AddMember(ctx, g.ID, 2, domain.RoleMember))

	// plain members cannot invite
	w := doJSON(testRouter(store, 2), http.MethodPost, "/api/groups/1/members", `{"user_id":3}`)
	req.Equal(http.StatusForbidden, w.Code)

	admin := testRouter(store, 1)
	w = doJSON(admin, http.MethodPost, "/api/groups/1/members", `{"user_id":3}`)
	req.Equal(http.StatusOK, w.Code)

	role, err := store.RoleOf(ctx, g.ID, 3)
	req.NoError(err)
	req.Equal(domain.RoleMember, role)

	// adding twice is a conflict
	w = doJSON(admin, http.MethodPost, "/api/groups/1/members", `{"user_id":3}`)
	req.Equal(http.StatusConflict, w.Code)

	req.Equal(http.StatusBadRequest, doJSON(admin, http.MethodPost, "/api/groups/zero/members", `{"user_id":3}`).Code)
}
