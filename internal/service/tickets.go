package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tixbay/internal/cache"
	apperrors "tixbay/internal/errors"
	"tixbay/internal/logger"
	"tixbay/internal/models"
	"tixbay/internal/repository"
	"tixbay/internal/search"
)

// TicketService owns the listing lifecycle: vendors create and edit,
// admins moderate, the public browses approved inventory. Search and
// cache are both optional; when absent everything falls back to SQL.
type TicketService struct {
	ticketRepo      repository.TicketRepository
	publisher       Publisher
	searchClient    *search.ElasticsearchClient
	valkeyClient    *cache.ValkeyClient
	advertisedLimit int
}

func NewTicketService(ticketRepo repository.TicketRepository, publisher Publisher, searchClient *search.ElasticsearchClient, valkeyClient *cache.ValkeyClient, advertisedLimit int) *TicketService {
	if advertisedLimit <= 0 {
		advertisedLimit = 10
	}
	return &TicketService{
		ticketRepo:      ticketRepo,
		publisher:       publisher,
		searchClient:    searchClient,
		valkeyClient:    valkeyClient,
		advertisedLimit: advertisedLimit,
	}
}

func (s *TicketService) Create(ctx context.Context, sellerEmail string, req *models.CreateTicketRequest) (*models.CreateTicketResponse, error) {
	transportType, err := models.ParseTransportType(req.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrValidation)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if !req.DepartureTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: departure time must be in the future", apperrors.ErrValidation)
	}

	ticket := &models.Ticket{
		SellerEmail:   sellerEmail,
		Title:         req.Title,
		Description:   req.Description,
		Type:          transportType,
		Origin:        req.Origin,
		Destination:   req.Destination,
		ImageURL:      req.ImageURL,
		Price:         req.Price,
		Quantity:      req.Quantity,
		DepartureTime: req.DepartureTime,
		Status:        models.TicketStatusPending,
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return &models.CreateTicketResponse{ID: ticket.ID}, nil
}

// Get returns an approved ticket for the public detail view.
func (s *TicketService) Get(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.GetApprovedByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, apperrors.ErrNotFound)
	}
	return ticket, nil
}

// ListApproved returns a page of the public catalog. Unfiltered pages
// are served from the Valkey cache when possible.
func (s *TicketService) ListApproved(ctx context.Context, page, pageSize int) ([]models.Ticket, error) {
	page, pageSize = clampPage(page, pageSize)

	if s.valkeyClient != nil {
		if raw, err := s.valkeyClient.GetTicketListRaw(ctx, page, pageSize); err == nil {
			var tickets []models.Ticket
			if err := json.Unmarshal(raw, &tickets); err == nil {
				return tickets, nil
			}
		}
	}

	tickets, err := s.ticketRepo.ListApproved(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	if s.valkeyClient != nil {
		s.valkeyClient.SetTicketList(ctx, page, pageSize, tickets)
	}

	return tickets, nil
}

// Search runs a full-text query over the approved catalog. Elasticsearch
// does the ranking when enabled; otherwise a SQL substring match keeps
// the endpoint working.
func (s *TicketService) Search(ctx context.Context, query string, page, pageSize int) ([]models.Ticket, error) {
	page, pageSize = clampPage(page, pageSize)

	if query == "" {
		return s.ListApproved(ctx, page, pageSize)
	}

	if s.searchClient != nil {
		tickets, err := s.searchClient.Search(ctx, query, page, pageSize)
		if err == nil {
			return tickets, nil
		}
		logger.WithContext(ctx).Error("Search index query failed, falling back to SQL",
			"error", err,
			"query", query)
	}

	tickets, err := s.ticketRepo.SearchApproved(ctx, query, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) ListAdvertised(ctx context.Context) ([]models.Ticket, error) {
	tickets, err := s.ticketRepo.ListAdvertised(ctx, s.advertisedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list advertised tickets: %w", err)
	}
	return tickets, nil
}

// ListMine returns all of the seller's tickets regardless of moderation
// status.
func (s *TicketService) ListMine(ctx context.Context, sellerEmail string) ([]models.Ticket, error) {
	tickets, err := s.ticketRepo.ListBySeller(ctx, sellerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller tickets: %w", err)
	}
	return tickets, nil
}

// ListModerationQueue returns tickets awaiting an admin decision.
func (s *TicketService) ListModerationQueue(ctx context.Context) ([]models.Ticket, error) {
	tickets, err := s.ticketRepo.ListByStatus(ctx, models.TicketStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) Update(ctx context.Context, sellerEmail, id string, req *models.UpdateTicketRequest) (*models.Ticket, error) {
	ticket, err := s.getOwned(ctx, sellerEmail, id)
	if err != nil {
		return nil, err
	}

	if req.Price != nil && *req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrValidation)
	}
	if req.DepartureTime != nil && !req.DepartureTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: departure time must be in the future", apperrors.ErrValidation)
	}

	if err := s.ticketRepo.Update(ctx, id, req); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	updated, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload ticket: %w", err)
	}

	if ticket.Status == models.TicketStatusApproved {
		s.syncIndex(ctx, updated)
		s.invalidateLists(ctx)
	}

	return updated, nil
}

func (s *TicketService) Delete(ctx context.Context, sellerEmail, id string) error {
	if _, err := s.getOwned(ctx, sellerEmail, id); err != nil {
		return err
	}

	if err := s.ticketRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	if s.searchClient != nil {
		if err := s.searchClient.DeleteTicket(ctx, id); err != nil {
			logger.WithContext(ctx).Error("Failed to remove ticket from search index",
				"error", err,
				"ticket_id", id)
		}
	}
	s.invalidateLists(ctx)

	return nil
}

// Moderate applies an admin decision to a pending or visible listing.
// Pending cannot be chosen as a target: moderation only moves forward.
func (s *TicketService) Moderate(ctx context.Context, id, statusStr string) (*models.Ticket, error) {
	status, err := models.ParseTicketStatus(statusStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if status == models.TicketStatusPending {
		return nil, fmt.Errorf("%w: cannot moderate back to pending", apperrors.ErrValidation)
	}

	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, apperrors.ErrNotFound)
	}

	if err := s.ticketRepo.SetStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to set ticket status: %w", err)
	}
	ticket.Status = status

	s.publishModerated(ctx, id, status)
	s.invalidateLists(ctx)

	return ticket, nil
}

// Advertise toggles the promoted flag. Only approved tickets can be
// promoted.
func (s *TicketService) Advertise(ctx context.Context, sellerEmail, id string, advertise bool) error {
	ticket, err := s.getOwned(ctx, sellerEmail, id)
	if err != nil {
		return err
	}
	if ticket.Status != models.TicketStatusApproved {
		return fmt.Errorf("%w: only approved tickets can be advertised", apperrors.ErrInvalidTransition)
	}

	if err := s.ticketRepo.SetAdvertised(ctx, id, advertise); err != nil {
		return fmt.Errorf("failed to set advertised flag: %w", err)
	}
	return nil
}

func (s *TicketService) getOwned(ctx context.Context, sellerEmail, id string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, apperrors.ErrNotFound)
	}
	if ticket.SellerEmail != sellerEmail {
		return nil, fmt.Errorf("ticket %s belongs to another seller: %w", id, apperrors.ErrForbidden)
	}
	return ticket, nil
}

func (s *TicketService) publishModerated(ctx context.Context, ticketID string, status models.TicketStatus) {
	if s.publisher == nil {
		return
	}
	event := models.TicketModeratedEvent{
		TicketID:  ticketID,
		Status:    status,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(models.EventTicketModerated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish ticket moderated event",
			"error", err,
			"ticket_id", ticketID,
			"event_type", models.EventTicketModerated)
	}
}

func (s *TicketService) syncIndex(ctx context.Context, ticket *models.Ticket) {
	if s.searchClient == nil || ticket == nil {
		return
	}
	if err := s.searchClient.IndexTicket(ctx, ticket); err != nil {
		logger.WithContext(ctx).Error("Failed to index ticket",
			"error", err,
			"ticket_id", ticket.ID)
	}
}

func (s *TicketService) invalidateLists(ctx context.Context) {
	if s.valkeyClient != nil {
		s.valkeyClient.InvalidateTicketLists(ctx)
	}
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
