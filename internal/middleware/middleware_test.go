package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type pageQuery struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/items", ValidateQuery[pageQuery](), func(c *fiber.Ctx) error {
		return c.JSON(Query[pageQuery](c))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("database exploded")
	})
	app.Get("/gone", func(c *fiber.Ctx) error {
		return fiber.ErrGone
	})
	return app
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestValidateQuery(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/items?limit=5&offset=10", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode(t, resp.Body)
	if body["Limit"] != float64(5) || body["Offset"] != float64(10) {
		t.Fatalf("body = %v", body)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/items?limit=abc", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad int status = %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/items?offset=-1", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("negative status = %d", resp.StatusCode)
	}
	fields, _ := decode(t, resp.Body)["fields"].(map[string]any)
	if fields["Offset"] != "min" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestErrorHandlerHidesDetail(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(raw), "exploded") {
		t.Fatalf("body leaks error detail: %s", raw)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/gone", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusGone {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := decode(t, resp.Body); body["error"] != "Gone" {
		t.Fatalf("body = %v", body)
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(NewLogger(LoggerConfig{Logger: &log, Fields: []string{"method", "path", "status"}}))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	for _, path := range []string{"/ok", "/missing"} {
		if _, err := app.Test(httptest.NewRequest("GET", path, nil)); err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 1: %v", err)
	}
	if first["level"] != "info" || first["status"] != float64(200) || first["path"] != "/ok" {
		t.Fatalf("first = %v", first)
	}
	if second["level"] != "warn" || second["status"] != float64(404) {
		t.Fatalf("second = %v", second)
	}
}
