package handlers

import (
	"net/http"

	"tixbay/internal/models"

	"github.com/gin-gonic/gin"
)

// Admin routes. All of these sit behind the RequireAdmin middleware.

// ListUsers - GET /api/admin/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.services.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// SetUserRole - PATCH /api/admin/users/:email/role
func (h *Handlers) SetUserRole(c *gin.Context) {
	var req models.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Users.SetRole(c.Request.Context(), c.Param("email"), req.Role); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// MarkFraud - PATCH /api/admin/users/:email/mark-fraud
// Flags the account and hides its whole catalog.
func (h *Handlers) MarkFraud(c *gin.Context) {
	if err := h.services.Users.MarkFraud(c.Request.Context(), c.Param("email")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// ListModerationQueue - GET /api/admin/tickets
func (h *Handlers) ListModerationQueue(c *gin.Context) {
	tickets, err := h.services.Tickets.ListModerationQueue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if tickets == nil {
		tickets = []models.Ticket{}
	}
	c.JSON(http.StatusOK, tickets)
}

// ModerateTicket - PATCH /api/admin/tickets/:id/status
func (h *Handlers) ModerateTicket(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.services.Tickets.Moderate(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// PlatformStats - GET /api/admin/stats
func (h *Handlers) PlatformStats(c *gin.Context) {
	stats, err := h.services.Stats.PlatformStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
