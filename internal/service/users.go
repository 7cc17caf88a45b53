package service

import (
	"context"
	"fmt"
	"time"

	"tixbay/internal/cache"
	apperrors "tixbay/internal/errors"
	"tixbay/internal/logger"
	"tixbay/internal/models"
	"tixbay/internal/repository"
)

// UserService records accounts on login and handles role changes,
// including the fraud flag that hides a seller's whole catalog.
type UserService struct {
	userRepo     repository.UserRepository
	ticketRepo   repository.TicketRepository
	publisher    Publisher
	valkeyClient *cache.ValkeyClient
}

func NewUserService(userRepo repository.UserRepository, ticketRepo repository.TicketRepository, publisher Publisher, valkeyClient *cache.ValkeyClient) *UserService {
	return &UserService{
		userRepo:     userRepo,
		ticketRepo:   ticketRepo,
		publisher:    publisher,
		valkeyClient: valkeyClient,
	}
}

// Upsert records a login. New accounts start as customers; the stored
// role is never overwritten by a login.
func (s *UserService) Upsert(ctx context.Context, email string, req *models.UpsertUserRequest) (*models.User, error) {
	user := &models.User{
		Email:    email,
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
		Role:     models.RoleCustomer,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetRole(ctx context.Context, email string) (models.Role, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
	}
	return user.Role, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetRole changes a user's role. Setting the fraud role also hides
// every ticket the user has listed.
func (s *UserService) SetRole(ctx context.Context, email, roleStr string) error {
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
	}

	if role == models.RoleFraud {
		return s.MarkFraud(ctx, email)
	}

	if err := s.userRepo.SetRole(ctx, email, role); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	return nil
}

// MarkFraud flags the account and pulls its catalog from sale. Each
// hidden ticket gets a moderation event so the search index catches up.
func (s *UserService) MarkFraud(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
	}

	if err := s.userRepo.SetRole(ctx, email, models.RoleFraud); err != nil {
		return fmt.Errorf("failed to set fraud role: %w", err)
	}

	tickets, err := s.ticketRepo.ListBySeller(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to list seller tickets: %w", err)
	}

	hidden, err := s.ticketRepo.HideAllBySeller(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to hide seller tickets: %w", err)
	}

	logger.WithContext(ctx).Info("Marked seller as fraud",
		"email", email,
		"tickets_hidden", hidden)

	if s.publisher != nil {
		for _, ticket := range tickets {
			event := models.TicketModeratedEvent{
				TicketID:  ticket.ID,
				Status:    models.TicketStatusHidden,
				Timestamp: time.Now(),
			}
			if err := s.publisher.Publish(models.EventTicketModerated, event); err != nil {
				logger.WithContext(ctx).Error("Failed to publish ticket moderated event",
					"error", err,
					"ticket_id", ticket.ID,
					"event_type", models.EventTicketModerated)
			}
		}
	}

	if s.valkeyClient != nil {
		s.valkeyClient.InvalidateTicketLists(ctx)
	}

	return nil
}
