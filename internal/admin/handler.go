package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/services"
	"github.com/rs/zerolog/log"
)

type AdminService interface {
	Invite(ctx context.Context, req InviteRequest) (model.Profile, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (model.Profile, error)
}

type Handler struct {
	svc AdminService
}

func NewHandler(svc AdminService) *Handler {
	return &Handler{svc: svc}
}

// InviteUser handles POST /invite-user
func (h *Handler) InviteUser(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	profile, err := h.svc.Invite(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// CreateUser handles POST /create-user
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	profile, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, ErrIdentityRejected):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("admin request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// BearerAuth accepts only requests carrying token. An empty token rejects
// everything.
func BearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.Fields(header)
		if token == "" || len(parts) != 2 || parts[0] != "Bearer" ||
			subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	}
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler, token string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", handler.HealthCheck)

	authorized := router.Group("/", BearerAuth(token))
	{
		authorized.POST("/invite-user", handler.InviteUser)
		authorized.POST("/create-user", handler.CreateUser)
	}

	return router
}
