package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// credentialsRequest is the body for both /auth/sign-up and /auth/sign-in.
type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.services.SignUp(req.Username, req.Password)
	if err != nil {
		if h.log != nil {
			h.log.Infow("sign_up_rejected", "username", req.Username, "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) signIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.services.GenerateToken(req.Username, req.Password)
	if err != nil {
		// One generic message for every failure mode; the reason is only
		// logged, never sent, so callers cannot probe for valid usernames.
		if h.log != nil {
			h.log.Infow("sign_in_rejected", "username", req.Username, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
