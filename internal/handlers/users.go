package handlers

import (
	"net/http"

	"tixbay/internal/models"

	"github.com/gin-gonic/gin"
)

// UpsertUser - POST /api/user
// Called on login to record the account.
func (h *Handlers) UpsertUser(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	var req models.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.services.Users.Upsert(c.Request.Context(), email, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUserRole - GET /api/user/role
func (h *Handlers) GetUserRole(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	role, err := h.services.Users.GetRole(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserRoleResponse{Role: role})
}

// VendorOverview - GET /api/vendor/overview
func (h *Handlers) VendorOverview(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	overview, err := h.services.Stats.VendorOverview(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
