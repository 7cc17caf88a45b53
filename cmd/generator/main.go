package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"tixbay/internal/config"
	"tixbay/internal/database"

	"github.com/google/uuid"
)

// Demo-data generator: seeds vendor accounts and approved ticket
// listings so a fresh environment has something to browse.

var (
	clearExisting = flag.Bool("clear", false, "Clear generated tickets before seeding")
	ticketCount   = flag.Int("tickets", 50, "Number of tickets to generate")
	vendorCount   = flag.Int("vendors", 5, "Number of vendor accounts to generate")
	dryRun        = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

var (
	origins      = []string{"Astana", "Almaty", "Shymkent", "Aktau", "Atyrau", "Karaganda", "Oskemen", "Taraz"}
	transports   = []string{"bus", "train", "plane"}
	titleFormats = map[string]string{
		"bus":   "Bus %s - %s",
		"train": "Train %s - %s",
		"plane": "Flight %s - %s",
	}
)

type seeder struct {
	db  *database.DB
	rng *rand.Rand
}

func main() {
	flag.Parse()

	slog.Info("Starting demo data generator")

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	s := &seeder{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}

	if err := s.run(); err != nil {
		slog.Error("Failed to generate demo data", "error", err)
		os.Exit(1)
	}

	slog.Info("Demo data generation completed")
}

func (s *seeder) run() error {
	if *dryRun {
		slog.Info("[DRY RUN] Would generate demo data",
			"vendors", *vendorCount, "tickets", *ticketCount)
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if *clearExisting {
		if err := s.clearGenerated(tx); err != nil {
			return fmt.Errorf("failed to clear generated data: %w", err)
		}
	}

	vendors, err := s.insertVendors(tx)
	if err != nil {
		return fmt.Errorf("failed to insert vendors: %w", err)
	}

	if err := s.insertTickets(tx, vendors); err != nil {
		return fmt.Errorf("failed to insert tickets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	slog.Info("Seeded demo data", "vendors", len(vendors), "tickets", *ticketCount)
	return nil
}

func (s *seeder) clearGenerated(tx *sql.Tx) error {
	// Generated accounts share the demo domain, so their tickets are
	// easy to identify.
	if _, err := tx.Exec(`DELETE FROM tickets WHERE seller_email LIKE '%@demo.tixbay.example'`); err != nil {
		return err
	}
	_, err := tx.Exec(`DELETE FROM users WHERE email LIKE '%@demo.tixbay.example'`)
	return err
}

func (s *seeder) insertVendors(tx *sql.Tx) ([]string, error) {
	stmt := `
		INSERT INTO users (email, name, role)
		VALUES ($1, $2, 'vendor')
		ON CONFLICT (email) DO NOTHING`

	emails := make([]string, 0, *vendorCount)
	for i := 1; i <= *vendorCount; i++ {
		email := fmt.Sprintf("vendor%d@demo.tixbay.example", i)
		name := fmt.Sprintf("Demo Vendor %d", i)
		if _, err := tx.Exec(stmt, email, name); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}

	return emails, nil
}

func (s *seeder) insertTickets(tx *sql.Tx, vendors []string) error {
	stmt := `
		INSERT INTO tickets (id, seller_email, title, type, origin, destination,
		                     price, quantity, departure_time, status, advertised)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'approved', $10)`

	for i := 0; i < *ticketCount; i++ {
		origin := origins[s.rng.Intn(len(origins))]
		destination := origins[s.rng.Intn(len(origins))]
		for destination == origin {
			destination = origins[s.rng.Intn(len(origins))]
		}

		transport := transports[s.rng.Intn(len(transports))]
		title := fmt.Sprintf(titleFormats[transport], origin, destination)
		seller := vendors[s.rng.Intn(len(vendors))]
		departure := time.Now().Add(time.Duration(s.rng.Intn(60*24)+24) * time.Hour)
		advertised := s.rng.Intn(10) == 0

		_, err := tx.Exec(stmt,
			uuid.New().String(),
			seller,
			title,
			transport,
			origin,
			destination,
			s.ticketPrice(transport),
			s.rng.Intn(40)+1,
			departure,
			advertised,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// ticketPrice returns minor units scaled to the transport type.
func (s *seeder) ticketPrice(transport string) int64 {
	switch transport {
	case "plane":
		return int64(s.rng.Intn(40000) + 20000)
	case "train":
		return int64(s.rng.Intn(15000) + 5000)
	default:
		return int64(s.rng.Intn(8000) + 2000)
	}
}
