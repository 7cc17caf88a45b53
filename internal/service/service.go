package service

import (
	"context"

	"tixbay/internal/cache"
	"tixbay/internal/external"
	"tixbay/internal/messaging"
	"tixbay/internal/repository"
	"tixbay/internal/search"
)

// Publisher is the slice of the NATS client the services need. Taking
// an interface keeps event publishing out of unit tests.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// CheckoutGateway is the slice of the checkout client the payment
// service needs.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, params external.CreateSessionParams) (*external.CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*external.CheckoutSession, error)
}

type Services struct {
	Tickets  *TicketService
	Bookings *BookingService
	Payments *PaymentService
	Users    *UserService
	Stats    *StatsService
}

type Config struct {
	ClientURL       string
	AdvertisedLimit int
}

func NewServices(
	repos *repository.Repositories,
	natsClient *messaging.NATSClient,
	checkoutClient *external.CheckoutClient,
	searchClient *search.ElasticsearchClient,
	valkeyClient *cache.ValkeyClient,
	cfg Config,
) *Services {
	var publisher Publisher
	if natsClient != nil {
		publisher = natsClient
	}
	var gateway CheckoutGateway
	if checkoutClient != nil {
		gateway = checkoutClient
	}

	ticketService := NewTicketService(repos.Tickets, publisher, searchClient, valkeyClient, cfg.AdvertisedLimit)
	bookingService := NewBookingService(repos.Bookings, repos.Tickets, publisher)
	paymentService := NewPaymentService(repos.Payments, repos.Bookings, gateway, publisher, cfg.ClientURL)
	userService := NewUserService(repos.Users, repos.Tickets, publisher, valkeyClient)
	statsService := NewStatsService(repos.Stats)

	return &Services{
		Tickets:  ticketService,
		Bookings: bookingService,
		Payments: paymentService,
		Users:    userService,
		Stats:    statsService,
	}
}
