package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "tixbay/internal/errors"
	"tixbay/internal/models"

	"github.com/google/uuid"
)

// In-memory repositories with the same conditional-write semantics as
// the SQL implementations: reserve, release, status transitions and
// unique payment inserts are all atomic under one lock.

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*models.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*models.Ticket)}
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.New().String()
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	cp := *ticket
	f.tickets[ticket.ID] = &cp
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, nil
	}
	cp := *ticket
	return &cp, nil
}

func (f *fakeTicketRepo) GetApprovedByID(ctx context.Context, id string) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok || ticket.Status != models.TicketStatusApproved {
		return nil, nil
	}
	cp := *ticket
	return &cp, nil
}

func (f *fakeTicketRepo) ListApproved(ctx context.Context, page, pageSize int) ([]models.Ticket, error) {
	return f.listWhere(func(t *models.Ticket) bool {
		return t.Status == models.TicketStatusApproved
	}), nil
}

func (f *fakeTicketRepo) SearchApproved(ctx context.Context, query string, page, pageSize int) ([]models.Ticket, error) {
	q := strings.ToLower(query)
	return f.listWhere(func(t *models.Ticket) bool {
		if t.Status != models.TicketStatusApproved {
			return false
		}
		return strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Origin), q) ||
			strings.Contains(strings.ToLower(t.Destination), q)
	}), nil
}

func (f *fakeTicketRepo) ListAdvertised(ctx context.Context, limit int) ([]models.Ticket, error) {
	tickets := f.listWhere(func(t *models.Ticket) bool {
		return t.Status == models.TicketStatusApproved && t.Advertised
	})
	if len(tickets) > limit {
		tickets = tickets[:limit]
	}
	return tickets, nil
}

func (f *fakeTicketRepo) ListBySeller(ctx context.Context, sellerEmail string) ([]models.Ticket, error) {
	return f.listWhere(func(t *models.Ticket) bool {
		return t.SellerEmail == sellerEmail
	}), nil
}

func (f *fakeTicketRepo) ListByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	return f.listWhere(func(t *models.Ticket) bool {
		return t.Status == status
	}), nil
}

func (f *fakeTicketRepo) listWhere(keep func(*models.Ticket) bool) []models.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Ticket
	for _, t := range f.tickets {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeTicketRepo) Update(ctx context.Context, id string, upd *models.UpdateTicketRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if upd.Title != nil {
		ticket.Title = *upd.Title
	}
	if upd.Description != nil {
		ticket.Description = upd.Description
	}
	if upd.Origin != nil {
		ticket.Origin = *upd.Origin
	}
	if upd.Destination != nil {
		ticket.Destination = *upd.Destination
	}
	if upd.ImageURL != nil {
		ticket.ImageURL = upd.ImageURL
	}
	if upd.Price != nil {
		ticket.Price = *upd.Price
	}
	if upd.DepartureTime != nil {
		ticket.DepartureTime = *upd.DepartureTime
	}
	ticket.UpdatedAt = time.Now()
	return nil
}

func (f *fakeTicketRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.tickets, id)
	return nil
}

func (f *fakeTicketRepo) SetStatus(ctx context.Context, id string, status models.TicketStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	ticket.Status = status
	return nil
}

func (f *fakeTicketRepo) SetAdvertised(ctx context.Context, id string, advertised bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok || ticket.Status != models.TicketStatusApproved {
		return apperrors.ErrNotFound
	}
	ticket.Advertised = advertised
	return nil
}

func (f *fakeTicketRepo) HideAllBySeller(ctx context.Context, sellerEmail string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var hidden int64
	for _, t := range f.tickets {
		if t.SellerEmail == sellerEmail {
			t.Status = models.TicketStatusHidden
			hidden++
		}
	}
	return hidden, nil
}

func (f *fakeTicketRepo) Reserve(ctx context.Context, id string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if ticket.Quantity < qty {
		return apperrors.ErrInsufficientInventory
	}
	ticket.Quantity -= qty
	return nil
}

func (f *fakeTicketRepo) Release(ctx context.Context, id string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	ticket.Quantity += qty
	return nil
}

func (f *fakeTicketRepo) quantity(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickets[id].Quantity
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *booking
	return &cp, nil
}

func (f *fakeBookingRepo) GetActiveByBuyerAndTicket(ctx context.Context, buyerEmail, ticketID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.BuyerEmail == buyerEmail && b.TicketID == ticketID &&
			(b.Status == models.BookingStatusPending || b.Status == models.BookingStatusAccepted) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Booking, error) {
	return f.listWhere(func(b *models.Booking) bool {
		return b.BuyerEmail == buyerEmail
	}), nil
}

func (f *fakeBookingRepo) ListBySeller(ctx context.Context, sellerEmail string, status models.BookingStatus) ([]models.Booking, error) {
	return f.listWhere(func(b *models.Booking) bool {
		if b.SellerEmail != sellerEmail {
			return false
		}
		return status == "" || b.Status == status
	}), nil
}

func (f *fakeBookingRepo) ListStalePending(ctx context.Context, createdBefore time.Time) ([]models.Booking, error) {
	return f.listWhere(func(b *models.Booking) bool {
		return b.Status == models.BookingStatusPending && b.CreatedAt.Before(createdBefore)
	}), nil
}

func (f *fakeBookingRepo) listWhere(keep func(*models.Booking) bool) []models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, expected, next models.BookingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok || booking.Status != expected {
		return false, nil
	}
	booking.Status = next
	booking.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeBookingRepo) setCreatedAt(id string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[id].CreatedAt = at
}

func (f *fakeBookingRepo) setDepartureTime(id string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[id].DepartureTime = at
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*models.Payment // by transaction id
	byBook   map[string]string          // booking id -> transaction id
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		payments: make(map[string]*models.Payment),
		byBook:   make(map[string]string),
	}
}

func (f *fakePaymentRepo) InsertUnique(ctx context.Context, payment *models.Payment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.payments[payment.TransactionID]; exists {
		return false, nil
	}
	if _, exists := f.byBook[payment.BookingID]; exists {
		return false, nil
	}
	payment.CreatedAt = time.Now()
	cp := *payment
	f.payments[payment.TransactionID] = &cp
	f.byBook[payment.BookingID] = payment.TransactionID
	return true, nil
}

func (f *fakePaymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[transactionID]
	if !ok {
		return nil, nil
	}
	cp := *payment
	return &cp, nil
}

func (f *fakePaymentRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.byBook[bookingID]
	if !ok {
		return nil, nil
	}
	cp := *f.payments[txn]
	return &cp, nil
}

func (f *fakePaymentRepo) ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if p.BuyerEmail == buyerEmail {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePaymentRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payments)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.users[user.Email]; ok {
		existing.Name = user.Name
		existing.PhotoURL = user.PhotoURL
		existing.LastLoginAt = time.Now()
		user.Role = existing.Role
		return nil
	}
	now := time.Now()
	user.CreatedAt = now
	user.LastLoginAt = now
	cp := *user
	f.users[user.Email] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeUserRepo) SetRole(ctx context.Context, email string, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.Role = role
	return nil
}

// fakePublisher records published events for assertions.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	subject string
	data    interface{}
}

func (f *fakePublisher) Publish(subject string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{subject: subject, data: data})
	return nil
}

func (f *fakePublisher) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.subject
	}
	return out
}
