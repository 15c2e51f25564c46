package dto

import (
	"time"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
)

// TicketResponse is the wire representation of a ticket.
type TicketResponse struct {
	TicketID    int64  `json:"ticket_id"`
	StudentName string `json:"student_name"`
	Location    string `json:"location"`
	IssueType   string `json:"issue_type"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path"`
	Status      string `json:"ticket_status"`
	Priority    string `json:"priority"`
	CreatedAt   string `json:"created_at"`
}

// UpdateTicketRequest is a partial update; absent fields are untouched.
type UpdateTicketRequest struct {
	StudentName *string `json:"student_name"`
	Location    *string `json:"location"`
	IssueType   *string `json:"issue_type"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
}

// StatusUpdateResponse confirms a status change.
type StatusUpdateResponse struct {
	Message  string `json:"message"`
	TicketID int64  `json:"ticket_id"`
	Status   string `json:"status"`
}

// DeleteResponse confirms ticket removal.
type DeleteResponse struct {
	Message  string `json:"message"`
	TicketID int64  `json:"ticket_id"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:    ticket.ID,
		StudentName: ticket.StudentName,
		Location:    ticket.Location,
		IssueType:   string(ticket.IssueType),
		Description: ticket.Description,
		ImagePath:   ticket.ImagePath,
		Status:      string(ticket.Status),
		Priority:    string(ticket.Priority),
		CreatedAt:   ticket.CreatedAt.Format(time.RFC3339),
	}
}
