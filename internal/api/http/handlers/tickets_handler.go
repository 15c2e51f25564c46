package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/api/dto"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/auth"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/service"
	apperrors "github.com/neurobyte-x/AI-Maintainance-Reporter/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create handles POST /api/tickets (multipart: student_name, location, image).
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	studentName := c.FormValue("student_name")
	location := c.FormValue("location")
	image, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("no image file provided", nil)
	}

	ticket, err := h.service.Create(c.Context(), principal.User, studentName, location, image)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// List handles GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	tickets, err := h.service.List(c.Context(), principal.User)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(items)
}

// Get handles GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}

	ticket, err := h.service.Get(c.Context(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// Update handles PATCH /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.UpdateFields(c.Context(), principal.User, id, service.TicketUpdateInput{
		StudentName: req.StudentName,
		Location:    req.Location,
		IssueType:   req.IssueType,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// UpdateStatus handles PUT /api/tickets/:id/status?ticket_status= (admin only).
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}

	status := domain.TicketStatus(c.Query("ticket_status"))
	ticket, err := h.service.UpdateStatus(c.Context(), principal.User, id, status)
	if err != nil {
		return err
	}
	return c.JSON(dto.StatusUpdateResponse{
		Message:  "Ticket status updated successfully",
		TicketID: ticket.ID,
		Status:   string(ticket.Status),
	})
}

// Delete handles DELETE /api/tickets/:id (admin only).
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), principal.User, id); err != nil {
		return err
	}
	return c.JSON(dto.DeleteResponse{
		Message:  "Ticket deleted successfully",
		TicketID: id,
	})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}
