package handlers

import (
	"net/http"

	"tixbay/internal/models"

	"github.com/gin-gonic/gin"
)

// StartCheckout - POST /api/checkout/session
func (h *Handlers) StartCheckout(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	var req models.StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Payments.StartCheckout(c.Request.Context(), email, req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ConfirmPayment - POST /api/payments/confirm
// Server-to-server callback from the checkout success flow; carries no
// auth. The session id is the only input and is re-verified against
// the gateway, so replays always resolve to the same payment record.
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.services.Payments.ConfirmPayment(c.Request.Context(), req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// ListTransactions - GET /api/transactions
func (h *Handlers) ListTransactions(c *gin.Context) {
	email, ok := userEmail(c)
	if !ok {
		return
	}

	payments, err := h.services.Payments.ListTransactions(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	if payments == nil {
		payments = []models.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}
