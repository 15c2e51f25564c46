package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// ValidTicketStatus reports whether the value is one of the known statuses.
// Admins may set any of the four values at any time; there is no enforced
// ordering between them.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency derived from image classification.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// ValidTicketPriority reports whether the value is one of the known priorities.
func ValidTicketPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// IssueType enumerates the categories the classifier can assign.
type IssueType string

const (
	IssueTypeFan         IssueType = "Fan"
	IssueTypeLight       IssueType = "Light"
	IssueTypeFurniture   IssueType = "Furniture"
	IssueTypeElectronics IssueType = "Electronics"
	IssueTypeElectrical  IssueType = "Electrical"
	IssueTypeOther       IssueType = "Other"
)

// ValidIssueType reports whether the value is one of the known issue types.
func ValidIssueType(t IssueType) bool {
	switch t {
	case IssueTypeFan, IssueTypeLight, IssueTypeFurniture, IssueTypeElectronics, IssueTypeElectrical, IssueTypeOther:
		return true
	}
	return false
}

// Ticket is the aggregate for a reported maintenance issue. Description holds
// the classifier's natural-language summary; ImagePath references the stored
// upload, which is owned by the ticket and removed with it.
type Ticket struct {
	ID          int64
	UserID      int64
	StudentName string
	Location    string
	IssueType   IssueType
	Description string
	ImagePath   string
	Status      TicketStatus
	Priority    TicketPriority
	CreatedAt   time.Time
}
