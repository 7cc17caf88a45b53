package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"tixbay/internal/config"
	"tixbay/internal/database"
	"tixbay/internal/logger"
	"tixbay/internal/repository"
	"tixbay/internal/search"
)

// Full reindex of the approved catalog into Elasticsearch. Run after
// enabling search on an existing database, or to repair index drift.

func main() {
	var pageSize int
	flag.IntVar(&pageSize, "page-size", 500, "Tickets fetched per batch")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting search index sync")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	searchClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	ticketRepo := repository.NewTicketRepository(db)

	if err := syncIndex(context.Background(), ticketRepo, searchClient, pageSize); err != nil {
		logger.Fatal("Search index sync failed", "error", err)
	}

	slog.Info("Search index sync completed")
}

func syncIndex(ctx context.Context, ticketRepo repository.TicketRepository, searchClient *search.ElasticsearchClient, pageSize int) error {
	start := time.Now()
	indexed := 0

	for page := 1; ; page++ {
		tickets, err := ticketRepo.ListApproved(ctx, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to fetch tickets page %d: %w", page, err)
		}
		if len(tickets) == 0 {
			break
		}

		for i := range tickets {
			if err := searchClient.IndexTicket(ctx, &tickets[i]); err != nil {
				return fmt.Errorf("failed to index ticket %s: %w", tickets[i].ID, err)
			}
			indexed++
		}

		slog.Info("Indexed batch", "page", page, "count", len(tickets))

		if len(tickets) < pageSize {
			break
		}
	}

	elapsed := time.Since(start)
	slog.Info("Reindex finished",
		"tickets_indexed", indexed,
		"duration", elapsed.String())

	return nil
}
