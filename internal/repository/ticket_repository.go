package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
)

// TicketFilter scopes listing queries. A nil OwnerID returns all tickets
// (admin view); otherwise only the owner's tickets are returned.
type TicketFilter struct {
	OwnerID *int64
}

// TicketUpdate captures a partial field update. Nil fields are left untouched.
type TicketUpdate struct {
	StudentName *string
	Location    *string
	IssueType   *domain.IssueType
	Description *string
	Priority    *domain.TicketPriority
}

// Empty reports whether the update would change nothing.
func (u TicketUpdate) Empty() bool {
	return u.StudentName == nil && u.Location == nil && u.IssueType == nil &&
		u.Description == nil && u.Priority == nil
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateFields(ctx context.Context, id int64, update TicketUpdate) error
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error
	Delete(ctx context.Context, id int64) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (user_id, student_name, location, issue_type, description, image_path, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, status, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.UserID,
		ticket.StudentName,
		ticket.Location,
		ticket.IssueType,
		ticket.Description,
		ticket.ImagePath,
		ticket.Priority,
	).Scan(&ticket.ID, &ticket.Status, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, user_id, student_name, location, issue_type, description, image_path, status, priority, created_at
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.StudentName,
		&ticket.Location,
		&ticket.IssueType,
		&ticket.Description,
		&ticket.ImagePath,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, user_id, student_name, location, issue_type, description, image_path, status, priority, created_at
             FROM tickets`
	args := []any{}
	where := ""
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where = " WHERE user_id=$1"
	}
	query := base + where + " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateFields(ctx context.Context, id int64, update TicketUpdate) error {
	sets := []string{}
	args := []any{}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if update.StudentName != nil {
		appendSet("student_name", *update.StudentName)
	}
	if update.Location != nil {
		appendSet("location", *update.Location)
	}
	if update.IssueType != nil {
		appendSet("issue_type", *update.IssueType)
	}
	if update.Description != nil {
		appendSet("description", *update.Description)
	}
	if update.Priority != nil {
		appendSet("priority", *update.Priority)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tickets SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	const query = `UPDATE tickets SET status=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM tickets WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.UserID,
			&ticket.StudentName,
			&ticket.Location,
			&ticket.IssueType,
			&ticket.Description,
			&ticket.ImagePath,
			&ticket.Status,
			&ticket.Priority,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
