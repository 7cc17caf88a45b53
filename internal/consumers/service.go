package consumers

import (
	"context"
	"log/slog"

	"tixbay/internal/cache"
	"tixbay/internal/config"
	"tixbay/internal/database"
	"tixbay/internal/messaging"
	"tixbay/internal/models"
	"tixbay/internal/repository"
	"tixbay/internal/search"
)

// ConsumerService runs the NATS subscribers that keep derived state in
// step with the API: the search index follows moderation events, and
// cached listing pages are dropped when visibility changes.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(db)

	var searchClient *search.ElasticsearchClient
	if cfg.Elasticsearch.Enabled {
		searchClient, err = search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, index sync disabled", "error", err)
			searchClient = nil
		}
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		slog.Warn("Valkey unavailable, cache invalidation disabled", "error", err)
		valkeyClient = nil
	}

	handlers := NewHandlers(repos, searchClient, valkeyClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers")

	subjects := map[string]func(*ConsumerService) error{
		models.EventTicketModerated: func(cs *ConsumerService) error {
			_, err := cs.nats.SubscribeQueue(models.EventTicketModerated, "consumers", cs.handlers.HandleTicketModerated)
			return err
		},
		models.EventBookingCreated: func(cs *ConsumerService) error {
			_, err := cs.nats.SubscribeQueue(models.EventBookingCreated, "consumers", cs.handlers.HandleBookingCreated)
			return err
		},
		models.EventBookingExpired: func(cs *ConsumerService) error {
			_, err := cs.nats.SubscribeQueue(models.EventBookingExpired, "consumers", cs.handlers.HandleBookingExpired)
			return err
		},
		models.EventPaymentCompleted: func(cs *ConsumerService) error {
			_, err := cs.nats.SubscribeQueue(models.EventPaymentCompleted, "consumers", cs.handlers.HandlePaymentCompleted)
			return err
		},
	}

	for subject, subscribe := range subjects {
		if err := subscribe(cs); err != nil {
			slog.Error("Failed to subscribe", "subject", subject, "error", err)
			return err
		}
	}

	slog.Info("All consumers started")
	return nil
}

// Repos exposes the repositories for background jobs sharing this
// process.
func (cs *ConsumerService) Repos() *repository.Repositories {
	return cs.repos
}

// NATS exposes the messaging client for background jobs.
func (cs *ConsumerService) NATS() *messaging.NATSClient {
	return cs.nats
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
