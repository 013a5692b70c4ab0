package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/indra210595/chat-app/internal/auth"
	"github.com/indra210595/chat-app/internal/config"
	"github.com/indra210595/chat-app/internal/domain"
	"github.com/indra210595/chat-app/internal/httpx"
	"github.com/indra210595/chat-app/internal/utils"
)

type Service struct {
	Users     domain.UserStore
	JWTSecret string
	JWTTTLMin int
}

type registerReq struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func RegisterPublic(rg *gin.RouterGroup, users domain.UserStore, cfg config.Config) {
	s := Service{
		Users:     users,
		JWTSecret: cfg.JWTSecret,
		JWTTTLMin: cfg.JWTTTLMin,
	}

	rg.POST("/register", s.register)
	rg.POST("/login", s.login)
}

func RegisterAuthed(rg *gin.RouterGroup, users domain.UserStore) {
	s := Service{Users: users}

	rg.GET("/users", s.list)
	rg.GET("/me", s.me)
}

func (s Service) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			httpx.Err(c, http.StatusBadRequest, utils.ValidationErr(validationErrors))
			return
		}
		httpx.Err(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "hash failed")
		return
	}

	u, err := s.Users.Create(c.Request.Context(), &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		httpx.Err(c, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "create user failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": u})
}

func (s Service) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			httpx.Err(c, http.StatusBadRequest, utils.ValidationErr(validationErrors))
			return
		}
		httpx.Err(c, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.Users.ByEmail(c.Request.Context(), req.Email)
	if err != nil {
		httpx.Err(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		httpx.Err(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tok, err := auth.NewToken(s.JWTSecret, u.ID, s.JWTTTLMin)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "token generation failed")
		return
	}
	httpx.OK(c, gin.H{"token": tok, "user": u})
}

func (s Service) list(c *gin.Context) {
	users, err := s.Users.List(c.Request.Context())
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "failed to fetch users")
		return
	}
	httpx.OK(c, gin.H{"users": users})
}

func (s Service) me(c *gin.Context) {
	uid := auth.MustUserID(c)
	if uid == 0 {
		httpx.Err(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := s.Users.ByID(c.Request.Context(), uid)
	if errors.Is(err, domain.ErrNotFound) {
		httpx.Err(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "database error")
		return
	}
	httpx.OK(c, gin.H{"user": u})
}
