package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarcare/inverter-service/internal/api/dto"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

func newEnvelopeApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(dto.Failure(domainErr.Message, domainErr.Violations))
		},
	})
	app.Post("/", handler)
	return app
}

func call(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	payload := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	return resp.StatusCode, payload
}

func TestRespondReplacesInvalidEnvelopeWithInternalError(t *testing.T) {
	var returned error
	app := newEnvelopeApp(func(c *fiber.Ctx) error {
		returned = respond(c, http.StatusOK, dto.RegisterResponse{Success: true, UserID: "secret-user-id"})
		return returned
	})

	status, payload := call(t, app, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, map[string]any{"success": false, "error": "internal server error"}, payload)

	domainErr := apperrors.ToDomainError(returned)
	require.NotNil(t, domainErr)
	assert.Equal(t, apperrors.CodeInternal, domainErr.Code)
	assert.Contains(t, domainErr.Error(), "message is required")
}

func TestRespondWritesValidEnvelope(t *testing.T) {
	app := newEnvelopeApp(func(c *fiber.Ctx) error {
		return respond(c, http.StatusCreated, dto.MessageResponse{Success: true, Message: "done"})
	})

	status, payload := call(t, app, "")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, map[string]any{"success": true, "message": "done"}, payload)
}

func TestRespondRejectsFailureDiscriminatorOnSuccessEnvelope(t *testing.T) {
	app := newEnvelopeApp(func(c *fiber.Ctx) error {
		return respond(c, http.StatusOK, dto.MessageResponse{Success: false, Message: "done"})
	})

	status, payload := call(t, app, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, payload["success"])
	assert.NotContains(t, payload, "message")
}

func TestParseBodyReportsViolations(t *testing.T) {
	app := newEnvelopeApp(func(c *fiber.Ctx) error {
		var req dto.LoginRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		return respond(c, http.StatusOK, dto.MessageResponse{Success: true, Message: "ok"})
	})

	status, payload := call(t, app, `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.ElementsMatch(t, []any{"email must be a valid email address", "password is required"}, payload["errors"])

	status, payload = call(t, app, `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid request body", payload["error"])
}
