package handlers

import (
	"net/http"

	"tixbay/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Bookings.Create(c.Request.Context(), email, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Returning an existing active booking is not a new resource.
	if response.Existing {
		c.JSON(http.StatusOK, response)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	booking, err := h.services.Bookings.Get(c.Request.Context(), email, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListMyBookings - GET /api/my-bookings
func (h *Handlers) ListMyBookings(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	bookings, err := h.services.Bookings.ListForBuyer(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

// ListVendorBookings - GET /api/vendor/bookings
func (h *Handlers) ListVendorBookings(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	bookings, err := h.services.Bookings.ListForSeller(c.Request.Context(), email, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

// AcceptBooking - PATCH /api/vendor/bookings/:id/accept
func (h *Handlers) AcceptBooking(c *gin.Context) {
	h.decideBooking(c, true)
}

// RejectBooking - PATCH /api/vendor/bookings/:id/reject
func (h *Handlers) RejectBooking(c *gin.Context) {
	h.decideBooking(c, false)
}

func (h *Handlers) decideBooking(c *gin.Context, accept bool) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	booking, err := h.services.Bookings.Decide(c.Request.Context(), email, c.Param("id"), accept)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
