package events

import (
	"time"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Actor identifies who triggered the event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries classification results for a new ticket.
type TicketCreatedPayload struct {
	IssueType domain.IssueType      `json:"issue_type"`
	Priority  domain.TicketPriority `json:"priority"`
	Location  string                `json:"location"`
}

// TicketStatusChangedPayload carries a status transition.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketDeletedPayload records removal of a ticket and its image.
type TicketDeletedPayload struct {
	ImagePath string `json:"image_path,omitempty"`
}
