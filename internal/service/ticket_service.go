package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/events"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/pipeline"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/repository"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/storage"
	apperrors "github.com/neurobyte-x/AI-Maintainance-Reporter/pkg/util"
)

// TicketService coordinates ticket workflows: upload, classification,
// persistence and the authorization rules on top of ticket CRUD.
type TicketService struct {
	tickets    repository.TicketRepository
	store      *storage.LocalStore
	workflow   *pipeline.Workflow
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Store      *storage.LocalStore
	Workflow   *pipeline.Workflow
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketUpdateInput describes a partial field update from the API layer.
type TicketUpdateInput struct {
	StudentName *string
	Location    *string
	IssueType   *string
	Description *string
	Priority    *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		store:      deps.Store,
		workflow:   deps.Workflow,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create stores the uploaded image, runs the classification pipeline and
// persists the resulting ticket owned by the caller. Classifier failures are
// absorbed by the pipeline: a ticket is always produced.
func (s *TicketService) Create(ctx context.Context, user *domain.User, studentName, location string, image *multipart.FileHeader) (*domain.Ticket, error) {
	studentName = strings.TrimSpace(studentName)
	location = strings.TrimSpace(location)
	if studentName == "" || location == "" {
		return nil, apperrors.NewValidationError("student_name and location required", nil)
	}
	if image == nil || image.Filename == "" {
		return nil, apperrors.NewValidationError("no image file provided", nil)
	}

	imagePath, err := s.store.Save(image)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	state := s.workflow.Run(ctx, imagePath)
	s.logger.Info("classification complete",
		zap.String("issue_type", string(state.IssueType)),
		zap.String("priority", string(state.Priority)),
	)

	ticket := &domain.Ticket{
		UserID:      user.ID,
		StudentName: studentName,
		Location:    location,
		IssueType:   state.IssueType,
		Description: state.IssueDetected,
		ImagePath:   imagePath,
		Priority:    state.Priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorFor(user),
		Payload: events.TicketCreatedPayload{
			IssueType: ticket.IssueType,
			Priority:  ticket.Priority,
			Location:  ticket.Location,
		},
	})
	return ticket, nil
}

// List returns tickets newest-first, scoped to the caller: admins see all,
// students only their own.
func (s *TicketService) List(ctx context.Context, user *domain.User) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{}
	if !user.IsAdmin() {
		ownerID := user.ID
		filter.OwnerID = &ownerID
	}
	return s.tickets.List(ctx, filter)
}

// Get fetches a single ticket. Non-admins asking for another user's ticket
// get a not-found, never the other user's data.
func (s *TicketService) Get(ctx context.Context, user *domain.User, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !user.IsAdmin() && ticket.UserID != user.ID {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return ticket, nil
}

// UpdateFields applies a partial update. Owners and admins may edit name,
// location, issue type, description and priority.
func (s *TicketService) UpdateFields(ctx context.Context, user *domain.User, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !user.IsAdmin() && ticket.UserID != user.ID {
		return nil, apperrors.NewForbidden("not the ticket owner")
	}

	update, err := buildUpdate(input)
	if err != nil {
		return nil, err
	}
	if update.Empty() {
		return ticket, nil
	}

	if err := s.tickets.UpdateFields(ctx, id, update); err != nil {
		return nil, err
	}
	return s.tickets.GetByID(ctx, id)
}

// UpdateStatus sets the ticket status. Route-level guards restrict this to
// admins; any of the enumerated values may be set at any time.
func (s *TicketService) UpdateStatus(ctx context.Context, user *domain.User, id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidTicketStatus(status) {
		return nil, apperrors.NewValidationError(
			"invalid status: must be one of pending, in_progress, resolved, closed",
			map[string]any{"status": status},
		)
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	ticket.Status = status

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actorFor(user),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return ticket, nil
}

// Delete removes the ticket row, then best-effort removes its stored image.
// An image removal failure is logged, never escalated.
func (s *TicketService) Delete(ctx context.Context, user *domain.User, id int64) error {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", nil)
		}
		return err
	}

	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", nil)
		}
		return err
	}

	if err := s.store.Remove(ticket.ImagePath); err != nil {
		s.logger.Warn("failed to remove ticket image",
			zap.Int64("ticket_id", id),
			zap.String("image_path", ticket.ImagePath),
			zap.Error(err),
		)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Actor:    actorFor(user),
		Payload:  events.TicketDeletedPayload{ImagePath: ticket.ImagePath},
	})
	return nil
}

func buildUpdate(input TicketUpdateInput) (repository.TicketUpdate, error) {
	var update repository.TicketUpdate

	if input.StudentName != nil {
		name := strings.TrimSpace(*input.StudentName)
		if name == "" {
			return update, apperrors.NewValidationError("student_name cannot be empty", nil)
		}
		update.StudentName = &name
	}
	if input.Location != nil {
		location := strings.TrimSpace(*input.Location)
		if location == "" {
			return update, apperrors.NewValidationError("location cannot be empty", nil)
		}
		update.Location = &location
	}
	if input.IssueType != nil {
		issueType := domain.IssueType(*input.IssueType)
		if !domain.ValidIssueType(issueType) {
			return update, apperrors.NewValidationError("invalid issue_type", map[string]any{"issue_type": issueType})
		}
		update.IssueType = &issueType
	}
	if input.Description != nil {
		description := *input.Description
		update.Description = &description
	}
	if input.Priority != nil {
		priority := domain.TicketPriority(*input.Priority)
		if !domain.ValidTicketPriority(priority) {
			return update, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
		}
		update.Priority = &priority
	}
	return update, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFor(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Role: user.Role}
}
