package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/api/dto"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/api/http/handlers"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/auth"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/config"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/events"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/observability"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/pipeline"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/repository"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/service"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/storage"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/vision"
)

type testServer struct {
	app       *fiber.App
	inspector *vision.FakeInspector
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}

	users := repository.NewMemoryUserRepository()
	tickets := repository.NewMemoryTicketRepository()
	store := storage.NewLocalStore(t.TempDir())
	require.NoError(t, store.EnsureDir())
	inspector := &vision.FakeInspector{}

	authService := service.NewAuthService(cfg, users)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		Store:      store,
		Workflow:   pipeline.NewWorkflow(inspector),
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     zap.NewNop(),
	})

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("AI Maintenance Reporter", "test", nil),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})
	return &testServer{app: app, inspector: inspector}
}

func (s *testServer) do(t *testing.T, req *nethttp.Request) *nethttp.Response {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func jsonRequest(t *testing.T, method, path string, body any) *nethttp.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := nethttp.NewRequest(method, path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeJSON(t *testing.T, resp *nethttp.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out), "body: %s", data)
}

func (s *testServer) signup(t *testing.T, email, password, fullName, role string) dto.TokenResponse {
	t.Helper()
	resp := s.do(t, jsonRequest(t, nethttp.MethodPost, "/api/auth/signup", map[string]string{
		"email":     email,
		"password":  password,
		"full_name": fullName,
		"role":      role,
	}))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var token dto.TokenResponse
	decodeJSON(t, resp, &token)
	return token
}

func (s *testServer) createTicket(t *testing.T, token, studentName, location string) *nethttp.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("student_name", studentName))
	require.NoError(t, writer.WriteField("location", location))
	part, err := writer.CreateFormFile("image", "fan.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := nethttp.NewRequest(nethttp.MethodPost, "/api/tickets/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func authedRequest(t *testing.T, token, method, path string) *nethttp.Request {
	t.Helper()
	req, err := nethttp.NewRequest(method, path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRootRoute(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, jsonRequest(t, nethttp.MethodGet, "/", nil))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, "AI Maintenance Reporter API", body["message"])
	assert.Equal(t, "running", body["status"])
}

func TestTicketsRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	req, err := nethttp.NewRequest(nethttp.MethodGet, "/api/tickets/", nil)
	require.NoError(t, err)
	resp := srv.do(t, req)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	req = authedRequest(t, "not-a-token", nethttp.MethodGet, "/api/tickets/")
	resp = srv.do(t, req)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.signup(t, "alex@example.com", "secret1", "Alex Doe", "")

	resp := srv.do(t, jsonRequest(t, nethttp.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alex@example.com",
		"password": "wrong",
	}))
	require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
	assert.Equal(t, "invalid email or password", body.Error.Message)
}

func TestTicketLifecycle(t *testing.T) {
	srv := newTestServer(t)
	srv.inspector.Summary = "Ceiling fan blade is severely bent and broken"

	student := srv.signup(t, "alex@example.com", "secret1", "Alex Doe", "student")
	admin := srv.signup(t, "root@example.com", "secret2", "Ada Min", "admin")

	// Login again and make sure the issued identity matches the signup.
	resp := srv.do(t, jsonRequest(t, nethttp.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alex@example.com",
		"password": "secret1",
	}))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var login dto.TokenResponse
	decodeJSON(t, resp, &login)
	assert.Equal(t, student.User.ID, login.User.ID)
	assert.Equal(t, "bearer", login.TokenType)

	resp = srv.do(t, srv.createTicket(t, student.AccessToken, "Alex Doe", "Building A, Room 101"))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var created dto.TicketResponse
	decodeJSON(t, resp, &created)
	assert.Equal(t, "Fan", created.IssueType)
	assert.Equal(t, "high", created.Priority)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, srv.inspector.Summary, created.Description)

	resp = srv.do(t, authedRequest(t, student.AccessToken, nethttp.MethodGet, "/api/tickets/"))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var listed []dto.TicketResponse
	decodeJSON(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.TicketID, listed[0].TicketID)

	// Status updates are an admin operation.
	statusPath := fmt.Sprintf("/api/tickets/%d/status?ticket_status=resolved", created.TicketID)
	resp = srv.do(t, authedRequest(t, student.AccessToken, nethttp.MethodPut, statusPath))
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, authedRequest(t, admin.AccessToken, nethttp.MethodPut, statusPath))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var updated dto.StatusUpdateResponse
	decodeJSON(t, resp, &updated)
	assert.Equal(t, created.TicketID, updated.TicketID)
	assert.Equal(t, "resolved", updated.Status)

	resp = srv.do(t, authedRequest(t, student.AccessToken, nethttp.MethodGet, fmt.Sprintf("/api/tickets/%d", created.TicketID)))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var fetched dto.TicketResponse
	decodeJSON(t, resp, &fetched)
	assert.Equal(t, "resolved", fetched.Status)
}

func TestTicketOwnershipScoping(t *testing.T) {
	srv := newTestServer(t)
	srv.inspector.Summary = "Light fixture flickering in the hallway"

	first := srv.signup(t, "alex@example.com", "secret1", "Alex Doe", "student")
	second := srv.signup(t, "sam@example.com", "secret2", "Sam Roe", "student")

	resp := srv.do(t, srv.createTicket(t, first.AccessToken, "Alex Doe", "Building B"))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var created dto.TicketResponse
	decodeJSON(t, resp, &created)

	// Another student sees an empty list and cannot fetch the ticket by id.
	resp = srv.do(t, authedRequest(t, second.AccessToken, nethttp.MethodGet, "/api/tickets/"))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var listed []dto.TicketResponse
	decodeJSON(t, resp, &listed)
	assert.Empty(t, listed)

	resp = srv.do(t, authedRequest(t, second.AccessToken, nethttp.MethodGet, fmt.Sprintf("/api/tickets/%d", created.TicketID)))
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}

func TestDeleteTicketAdminOnly(t *testing.T) {
	srv := newTestServer(t)
	srv.inspector.Summary = "Broken chair leg near the window"

	student := srv.signup(t, "alex@example.com", "secret1", "Alex Doe", "student")
	admin := srv.signup(t, "root@example.com", "secret2", "Ada Min", "admin")

	resp := srv.do(t, srv.createTicket(t, student.AccessToken, "Alex Doe", "Library"))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var created dto.TicketResponse
	decodeJSON(t, resp, &created)

	path := fmt.Sprintf("/api/tickets/%d", created.TicketID)
	resp = srv.do(t, authedRequest(t, student.AccessToken, nethttp.MethodDelete, path))
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, authedRequest(t, admin.AccessToken, nethttp.MethodDelete, path))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var deleted dto.DeleteResponse
	decodeJSON(t, resp, &deleted)
	assert.Equal(t, created.TicketID, deleted.TicketID)

	resp = srv.do(t, authedRequest(t, admin.AccessToken, nethttp.MethodGet, path))
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}
