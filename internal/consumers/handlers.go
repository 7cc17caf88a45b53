package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"tixbay/internal/cache"
	"tixbay/internal/models"
	"tixbay/internal/repository"
	"tixbay/internal/search"

	"github.com/nats-io/stan.go"
)

type Handlers struct {
	repos        *repository.Repositories
	searchClient *search.ElasticsearchClient
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(repos *repository.Repositories, searchClient *search.ElasticsearchClient, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		repos:        repos,
		searchClient: searchClient,
		valkeyClient: valkeyClient,
	}
}

// HandleTicketModerated keeps the search index in step with moderation:
// approved tickets are indexed, everything else is removed. The message
// is only acked after a successful sync so a flaky index gets retried.
func (h *Handlers) HandleTicketModerated(m *stan.Msg) {
	var event models.TicketModeratedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ticket moderated event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Processing ticket moderated event",
		"ticket_id", event.TicketID, "status", event.Status)

	ctx := context.Background()

	if h.searchClient != nil {
		if event.Status == models.TicketStatusApproved {
			ticket, err := h.repos.Tickets.GetByID(ctx, event.TicketID)
			if err != nil {
				slog.Error("Failed to load ticket for indexing",
					"ticket_id", event.TicketID, "error", err)
				return // no ack, redelivered
			}
			if ticket != nil {
				if err := h.searchClient.IndexTicket(ctx, ticket); err != nil {
					slog.Error("Failed to index ticket",
						"ticket_id", event.TicketID, "error", err)
					return
				}
			}
		} else {
			if err := h.searchClient.DeleteTicket(ctx, event.TicketID); err != nil {
				slog.Error("Failed to remove ticket from index",
					"ticket_id", event.TicketID, "error", err)
				return
			}
		}
	}

	if h.valkeyClient != nil {
		h.valkeyClient.InvalidateTicketLists(ctx)
	}

	m.Ack()
}

func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking created event", "error", err)
		m.Ack()
		return
	}

	// Audit trail only. Notifications would hang off this subject.
	slog.Info("Booking created",
		"booking_id", event.BookingID,
		"ticket_id", event.TicketID,
		"buyer", event.BuyerEmail,
		"seller", event.SellerEmail,
		"quantity", event.Quantity)

	m.Ack()
}

func (h *Handlers) HandleBookingExpired(m *stan.Msg) {
	var event models.BookingExpiredEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking expired event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Booking expired",
		"booking_id", event.BookingID,
		"ticket_id", event.TicketID,
		"quantity", event.Quantity,
		"reason", event.Reason)

	m.Ack()
}

func (h *Handlers) HandlePaymentCompleted(m *stan.Msg) {
	var event models.PaymentCompletedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment completed event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Payment completed",
		"payment_id", event.PaymentID,
		"transaction_id", event.TransactionID,
		"booking_id", event.BookingID,
		"amount", event.Amount)

	m.Ack()
}
