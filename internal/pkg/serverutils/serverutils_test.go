package serverutils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: NotFound("profile"), want: 404},
		{err: Conflict("phone already registered"), want: 409},
		{err: TooLarge("recording"), want: 413},
		{err: &ValidationError{Fields: map[string]string{"Name": "required"}}, want: 400},
		{err: fmt.Errorf("start: %w", advisory.ErrPermissionDenied), want: 403},
		{err: advisory.ErrEmptyRecording, want: 422},
		{err: llm.NewStatusError("gemini", 500, "boom"), want: 502},
		{err: fiber.NewError(fiber.StatusTooManyRequests, "slow down"), want: 429},
		{err: fmt.Errorf("anything"), want: 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

type registerRequest struct {
	Name  string `validate:"required"`
	Phone string `validate:"required,min=10"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(registerRequest{Name: "Ravi", Phone: "9876543210"}))

	err := ValidateRequest(registerRequest{Phone: "12"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "required", ve.Fields["Name"])
	assert.Equal(t, "min", ve.Fields["Phone"])
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/missing", func(c *fiber.Ctx) error { return NotFound("session") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fmt.Errorf("db down") })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	var body Response
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "session not found", body.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	raw, _ = io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "db down")
}

func TestJwtRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("user-42", time.Hour)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", JwtMiddleware, func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "user-42", string(raw))

	resp, err = app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestGenerateTokenNeedsSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := GenerateToken("u", time.Minute)
	assert.Error(t, err)
}
