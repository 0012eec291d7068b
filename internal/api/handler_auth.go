package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partyroom-backend/internal/mw"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and returns a token.
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// Login verifies credentials and returns a token.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Logout saves the caller's game and revokes their token.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Close(c.Request.Context(), mw.UserID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	if claims, ok := mw.Claims(c); ok {
		h.auth.Logout(claims)
	}
	c.Status(http.StatusNoContent)
}
