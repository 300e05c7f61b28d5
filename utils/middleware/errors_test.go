package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/examace-vault/utils/response"
)

type panelBody struct {
	Success bool                 `json:"success"`
	Data    response.ErrorPanel  `json:"data"`
	Error   response.ErrorDetail `json:"error"`
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorBoundary(zerolog.Nop())})
	SetupSecurity(app, SecurityConfig{
		AllowedOrigins: "http://localhost:5173",
		AccessLog:      io.Discard,
		Logger:         zerolog.Nop(),
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("template exploded")
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return errors.New("unexpected")
	})
	app.Use(NotFound)
	return app
}

func TestPanicRendersErrorPanel(t *testing.T) {
	app := newTestApp()

	for _, path := range []string{"/boom", "/fail"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode, path)

		var body panelBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, "/", body.Data.HomeURL)
		assert.NotEmpty(t, body.Data.RequestID)
		assert.Equal(t, response.CodeUnexpected, body.Error.Code)
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/privacy-policy/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Error)
	assert.Equal(t, response.CodeNotFound, body.Error.Code)
}

func TestFormLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/subscriptions", FormLimiter(2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	codes := make([]int, 0, 3)
	var last response.Response
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/subscriptions", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
		if resp.StatusCode == fiber.StatusTooManyRequests {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&last))
		}
	}
	assert.Equal(t, []int{fiber.StatusCreated, fiber.StatusCreated, fiber.StatusTooManyRequests}, codes)
	assert.False(t, last.Success)
	require.NotNil(t, last.Error)
	assert.Equal(t, response.CodeRateLimited, last.Error.Code)
	assert.Contains(t, last.Error.Message, "Too many submissions")
}
