package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
	apperrors "github.com/neurobyte-x/AI-Maintainance-Reporter/pkg/util"
)

// MemoryUserRepository is an in-memory UserRepository used by tests and by
// local development without a database. It mirrors the Postgres
// implementation's error behavior, including pgx.ErrNoRows on miss and a
// conflict on duplicate email.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
}

// NewMemoryUserRepository constructs an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, users: make(map[int64]domain.User)}
}

// Create assigns an id and stores the user.
func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
	}

	user.ID = r.nextID
	r.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.ID] = *user
	return nil
}

// GetByID returns the stored user or pgx.ErrNoRows.
func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

// GetByEmail returns the stored user or pgx.ErrNoRows.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// MemoryTicketRepository is an in-memory TicketRepository mirroring the
// Postgres implementation's semantics, including newest-first listing.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	nextID  int64
	tickets map[int64]domain.Ticket
}

// NewMemoryTicketRepository constructs an empty repository.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{nextID: 1, tickets: make(map[int64]domain.Ticket)}
}

// Create assigns an id, defaults the status to pending and stores the ticket.
func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket.ID = r.nextID
	r.nextID++
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusPending
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

// GetByID returns the stored ticket or pgx.ErrNoRows.
func (r *MemoryTicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

// List returns tickets ordered by created_at descending, optionally scoped
// to an owner.
func (r *MemoryTicketRepository) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.OwnerID != nil && ticket.UserID != *filter.OwnerID {
			continue
		}
		result = append(result, ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateFields applies the partial update or returns pgx.ErrNoRows.
func (r *MemoryTicketRepository) UpdateFields(_ context.Context, id int64, update TicketUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.StudentName != nil {
		ticket.StudentName = *update.StudentName
	}
	if update.Location != nil {
		ticket.Location = *update.Location
	}
	if update.IssueType != nil {
		ticket.IssueType = *update.IssueType
	}
	if update.Description != nil {
		ticket.Description = *update.Description
	}
	if update.Priority != nil {
		ticket.Priority = *update.Priority
	}
	r.tickets[id] = ticket
	return nil
}

// UpdateStatus sets the status or returns pgx.ErrNoRows.
func (r *MemoryTicketRepository) UpdateStatus(_ context.Context, id int64, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	r.tickets[id] = ticket
	return nil
}

// Delete removes the ticket or returns pgx.ErrNoRows.
func (r *MemoryTicketRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}
