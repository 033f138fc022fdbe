package http

import (
	"errors"
	"net/http"

	"finsight/pkg/logger"
	"finsight/pkg/middleware"
	"finsight/pkg/session"
	"finsight/services/auth/internal/entity"
	"finsight/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *logger.Logger
}

func NewAuthHandler(authUseCase usecase.AuthUseCase, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string           `json:"token"`
	Session *session.Session `json:"session"`
	User    *entity.User     `json:"user"`
}

type SessionResponse struct {
	Session *session.Session `json:"session"`
}

// Login godoc
// @Summary      Sign in
// @Description  Authenticate an admin writer and open a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, token, user, err := h.authUseCase.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, entity.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, Session: s, User: user})
}

// Logout godoc
// @Summary      Sign out
// @Description  Revoke the current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	s := middleware.SessionFrom(c)
	if s == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return
	}

	if err := h.authUseCase.SignOut(c.Request.Context(), s); err != nil {
		h.logger.Error("Failed to sign out session=%s: %v", s.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Session godoc
// @Summary      Current session
// @Description  Returns the live session for the bearer token, or null
// @Tags         auth
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	token, _ := middleware.BearerToken(c)
	c.JSON(http.StatusOK, SessionResponse{Session: h.authUseCase.GetSession(c.Request.Context(), token)})
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.User
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUseCase.CurrentUser(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidSession):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		case errors.Is(err, entity.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}
