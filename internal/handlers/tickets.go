package handlers

import (
	"net/http"

	"tixbay/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateTicket - POST /api/tickets
func (h *Handlers) CreateTicket(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	var req models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Tickets.Create(c.Request.Context(), email, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListTickets - GET /api/tickets
// Public catalog; a query parameter switches to full-text search.
func (h *Handlers) ListTickets(c *gin.Context) {
	page, pageSize := pageParams(c)
	query := c.Query("query")

	tickets, err := h.services.Tickets.Search(c.Request.Context(), query, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	if tickets == nil {
		tickets = []models.Ticket{}
	}
	c.JSON(http.StatusOK, tickets)
}

// GetTicket - GET /api/tickets/:id
func (h *Handlers) GetTicket(c *gin.Context) {
	ticket, err := h.services.Tickets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// UpdateTicket - PATCH /api/tickets/:id
func (h *Handlers) UpdateTicket(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	var req models.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.services.Tickets.Update(c.Request.Context(), email, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// DeleteTicket - DELETE /api/tickets/:id
func (h *Handlers) DeleteTicket(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	if err := h.services.Tickets.Delete(c.Request.Context(), email, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// ListMyTickets - GET /api/my-tickets
func (h *Handlers) ListMyTickets(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	tickets, err := h.services.Tickets.ListMine(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	if tickets == nil {
		tickets = []models.Ticket{}
	}
	c.JSON(http.StatusOK, tickets)
}

// ListAdvertisedTickets - GET /api/advertised-tickets
func (h *Handlers) ListAdvertisedTickets(c *gin.Context) {
	tickets, err := h.services.Tickets.ListAdvertised(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if tickets == nil {
		tickets = []models.Ticket{}
	}
	c.JSON(http.StatusOK, tickets)
}

// AdvertiseTicket - PATCH /api/tickets/:id/advertise
func (h *Handlers) AdvertiseTicket(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	var req models.AdvertiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Tickets.Advertise(c.Request.Context(), email, c.Param("id"), req.Advertise); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
