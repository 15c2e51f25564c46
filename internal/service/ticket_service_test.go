package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/events"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/pipeline"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/repository"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/storage"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/vision"
)

type ticketFixture struct {
	service   *TicketService
	tickets   *repository.MemoryTicketRepository
	store     *storage.LocalStore
	inspector *vision.FakeInspector
	events    []events.Event
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()

	fixture := &ticketFixture{
		tickets:   repository.NewMemoryTicketRepository(),
		store:     storage.NewLocalStore(t.TempDir()),
		inspector: &vision.FakeInspector{Summary: "No maintenance issues detected"},
	}
	require.NoError(t, fixture.store.EnsureDir())

	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{events.EventTicketCreated, events.EventTicketStatusChanged, events.EventTicketDeleted} {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			fixture.events = append(fixture.events, event)
			return nil
		})
	}

	fixture.service = NewTicketService(TicketDependencies{
		TicketRepo: fixture.tickets,
		Store:      fixture.store,
		Workflow:   pipeline.NewWorkflow(fixture.inspector),
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return fixture
}

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func student(id int64) *domain.User {
	return &domain.User{ID: id, Email: "student@x.com", Role: domain.RoleStudent}
}

func admin() *domain.User {
	return &domain.User{ID: 100, Email: "admin@x.com", Role: domain.RoleAdmin}
}

func TestCreateTicketClassifies(t *testing.T) {
	fixture := newTicketFixture(t)
	fixture.inspector.Summary = "Ceiling fan blade is severely bent and broken"
	ctx := context.Background()

	ticket, err := fixture.service.Create(ctx, student(1), "Alex Doe", "Room 204", makeFileHeader(t, "fan.jpg", []byte("img")))
	require.NoError(t, err)

	assert.Equal(t, int64(1), ticket.UserID)
	assert.Equal(t, domain.IssueTypeFan, ticket.IssueType)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, "Ceiling fan blade is severely bent and broken", ticket.Description)
	assert.Equal(t, domain.TicketStatusPending, ticket.Status)
	assert.FileExists(t, ticket.ImagePath)

	require.Len(t, fixture.events, 1)
	assert.Equal(t, events.EventTicketCreated, fixture.events[0].Type)
}

func TestCreateTicketSurvivesClassifierFailure(t *testing.T) {
	fixture := newTicketFixture(t)
	fixture.inspector.Err = assert.AnError
	ctx := context.Background()

	ticket, err := fixture.service.Create(ctx, student(1), "Alex Doe", "Room 204", makeFileHeader(t, "fan.jpg", []byte("img")))
	require.NoError(t, err, "a ticket is always produced even when analysis fails")

	assert.Equal(t, domain.IssueTypeOther, ticket.IssueType)
	assert.Equal(t, domain.TicketPriorityLow, ticket.Priority)
	assert.Contains(t, ticket.Description, "Error occurred:")
}

func TestCreateTicketValidation(t *testing.T) {
	fixture := newTicketFixture(t)
	ctx := context.Background()

	_, err := fixture.service.Create(ctx, student(1), "", "Room 204", makeFileHeader(t, "a.jpg", []byte("img")))
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	_, err = fixture.service.Create(ctx, student(1), "Alex Doe", "Room 204", nil)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
}

func TestListScoping(t *testing.T) {
	fixture := newTicketFixture(t)
	ctx := context.Background()

	for i, owner := range []int64{1, 2, 1} {
		require.NoError(t, fixture.tickets.Create(ctx, &domain.Ticket{
			UserID:    owner,
			Location:  "Room",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	mine, err := fixture.service.List(ctx, student(1))
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, ticket := range mine {
		assert.Equal(t, int64(1), ticket.UserID)
	}

	all, err := fixture.service.List(ctx, admin())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Newest first.
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
	}
}

func TestGetOwnershipScoping(t *testing.T) {
	fixture := newTicketFixture(t)
	ctx := context.Background()

	ticket := &domain.Ticket{UserID: 1, Location: "Room 204"}
	require.NoError(t, fixture.tickets.Create(ctx, ticket))

	got, err := fixture.service.Get(ctx, student(1), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	// Another student never sees someone else's ticket, only a not-found.
	_, err = fixture.service.Get(ctx, student(2), ticket.ID)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))

	_, err = fixture.service.Get(ctx, admin(), ticket.ID)
	assert.NoError(t, err)

	_, err = fixture.service.Get(ctx, admin(), 9999)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestUpdateFieldsAuthorization(t *testing.T) {
	fixture := newTicketFixture(t)
	ctx := context.Background()

	ticket := &domain.Ticket{UserID: 1, Location: "Room 204", Priority: domain.TicketPriorityLow}
	require.NoError(t, fixture.tickets.Create(ctx, ticket))

	location := "Room 205"
	updated, err := fixture.service.UpdateFields(ctx, student(1), ticket.ID, TicketUpdateInput{Location: &location})
	require.NoError(t, err)
	assert.Equal(t, "Room 205", updated.Location)

	_, err = fixture.service.UpdateFields(ctx, student(2), ticket.ID, TicketUpdateInput{Location: &location})
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))

	priority := "high"
	updated, err = fixture.service.UpdateFields(ctx, admin(), ticket.ID, TicketUpdateInput{Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)

	bad := "urgent"
	_, err = fixture.service.UpdateFields(ctx, admin(), ticket.ID, TicketUpdateInput{Priority: &bad})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
}

func TestUpdateStatus(t *testing.T) {
	fixture := newTicketFixture(t)
	ctx := context.Background()

	ticket := &domain.Ticket{UserID: 1, Location: "Room 204"}
	require.NoError(t, fixture.tickets.Create(ctx, ticket))

	updated, err := fixture.service.UpdateStatus(ctx, admin(), ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)

	// Any enumerated value may be set at any time, including going backwards.
	updated, err = fixture.service.UpdateStatus(ctx, admin(), ticket.ID, domain.TicketStatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, updated.Status)

	_, err = fixture.service.UpdateStatus(ctx, admin(), ticket.ID, "archived")
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	_, err = fixture.service.UpdateStatus(ctx, admin(), 9999, domain.TicketStatusClosed)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))

	require.Len(t, fixture.events, 2)
	assert.Equal(t, events.EventTicketStatusChanged, fixture.events[0].Type)
}

func TestDeleteRemovesRowAndImage(t *testing.T) {
	fixture := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := fixture.service.Create(ctx, student(1), "Alex Doe", "Room 204", makeFileHeader(t, "fan.jpg", []byte("img")))
	require.NoError(t, err)
	require.FileExists(t, ticket.ImagePath)

	require.NoError(t, fixture.service.Delete(ctx, admin(), ticket.ID))

	_, err = fixture.tickets.GetByID(ctx, ticket.ID)
	assert.Error(t, err)
	assert.NoFileExists(t, ticket.ImagePath)
}

func TestDeleteMissingImageStillSucceeds(t *testing.T) {
	fixture := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := fixture.service.Create(ctx, student(1), "Alex Doe", "Room 204", makeFileHeader(t, "fan.jpg", []byte("img")))
	require.NoError(t, err)
	require.NoError(t, os.Remove(ticket.ImagePath))

	assert.NoError(t, fixture.service.Delete(ctx, admin(), ticket.ID))
}

func TestDeleteNotFound(t *testing.T) {
	fixture := newTicketFixture(t)

	err := fixture.service.Delete(context.Background(), admin(), 9999)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}
