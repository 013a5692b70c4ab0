package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/indra210595/chat-app/internal/chat"
)

func OK(c *gin.Context, v any) {
	c.JSON(200, v)
}

func Err(c *gin.Context, code int, msg any) {
	c.JSON(code, gin.H{"error": msg})
}

// PathID parses a positive int64 path parameter. On failure it writes the
// 400 response itself and returns false.
func PathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Err(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// FromErr maps a routing-core error onto its HTTP status. Anything outside
// the taxonomy (store failures included) surfaces as a 500.
func FromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrBadRequest):
		Err(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrUnauthenticated):
		Err(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, chat.ErrForbidden):
		Err(c, http.StatusForbidden, err.Error())
	case errors.Is(err, chat.ErrNotFound):
		Err(c, http.StatusNotFound, err.Error())
	case errors.Is(err, chat.ErrConflict):
		Err(c, http.StatusConflict, err.Error())
	default:
		Err(c, http.StatusInternalServerError, "server error")
	}
}
