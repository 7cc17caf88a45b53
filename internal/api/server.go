package api

import (
	"fmt"
	"net/http"

	"tixbay/internal/cache"
	"tixbay/internal/config"
	"tixbay/internal/database"
	"tixbay/internal/external"
	"tixbay/internal/handlers"
	"tixbay/internal/logger"
	"tixbay/internal/messaging"
	"tixbay/internal/middleware"
	"tixbay/internal/repository"
	"tixbay/internal/search"
	"tixbay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the HTTP API together: database, messaging, cache,
// search and the external clients. Valkey and Elasticsearch are
// optional; the server degrades to SQL-only when they are absent.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)
	log := logger.Get()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		log.Warn("Valkey unavailable, running without cache", "error", err)
		valkeyClient = nil
	}

	var searchClient *search.ElasticsearchClient
	if cfg.Elasticsearch.Enabled {
		searchClient, err = search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			log.Warn("Elasticsearch unavailable, search falls back to SQL", "error", err)
			searchClient = nil
		}
	}

	checkoutClient := external.NewCheckoutClient(cfg.Checkout)
	identityClient := external.NewIdentityClient(cfg.Identity)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, natsClient, checkoutClient, searchClient, valkeyClient, service.Config{
		ClientURL:       cfg.ClientURL,
		AdvertisedLimit: cfg.AdvertisedLimit,
	})

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.ClientURL))
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes(identityClient)

	return server
}

func (s *Server) setupRoutes(identityClient *external.IdentityClient) {
	h := handlers.NewHandlers(s.services)
	auth := middleware.Auth(identityClient, s.valkey)

	api := s.router.Group("/api")
	{
		// Public catalog
		api.GET("/tickets", h.ListTickets)
		api.GET("/tickets/:id", h.GetTicket)
		api.GET("/advertised-tickets", h.ListAdvertisedTickets)

		// Account
		api.POST("/user", auth, h.UpsertUser)
		api.GET("/user/role", auth, h.GetUserRole)

		// Vendor listings
		api.POST("/tickets", auth, h.CreateTicket)
		api.PATCH("/tickets/:id", auth, h.UpdateTicket)
		api.DELETE("/tickets/:id", auth, h.DeleteTicket)
		api.PATCH("/tickets/:id/advertise", auth, h.AdvertiseTicket)
		api.GET("/my-tickets", auth, h.ListMyTickets)

		// Bookings
		api.POST("/bookings", auth, h.CreateBooking)
		api.GET("/bookings/:id", auth, h.GetBooking)
		api.GET("/my-bookings", auth, h.ListMyBookings)

		// Vendor booking decisions
		vendor := api.Group("/vendor", auth)
		{
			vendor.GET("/bookings", h.ListVendorBookings)
			vendor.PATCH("/bookings/:id/accept", h.AcceptBooking)
			vendor.PATCH("/bookings/:id/reject", h.RejectBooking)
			vendor.GET("/overview", h.VendorOverview)
		}

		// Payments. The confirm callback is server-to-server from the
		// checkout success flow and carries no bearer token; its own
		// idempotency is the guard.
		api.POST("/checkout/session", auth, h.StartCheckout)
		api.POST("/payments/confirm", h.ConfirmPayment)
		api.GET("/transactions", auth, h.ListTransactions)

		// Admin
		admin := api.Group("/admin", auth, middleware.RequireAdmin(s.repos.Users))
		{
			admin.GET("/users", h.ListUsers)
			admin.PATCH("/users/:email/role", h.SetUserRole)
			admin.PATCH("/users/:email/mark-fraud", h.MarkFraud)
			admin.GET("/tickets", h.ListModerationQueue)
			admin.PATCH("/tickets/:id/status", h.ModerateTicket)
			admin.GET("/stats", h.PlatformStats)
		}
	}

	s.router.GET("/healthz", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	health := s.db.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   health.Status,
		"database": health,
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) Cleanup() error {
	log := logger.Get()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
