package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/andressep95/auth-portal/internal/config"
	"github.com/andressep95/auth-portal/internal/domain"
	"github.com/andressep95/auth-portal/internal/metrics"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, raw string) (*domain.Claims, error) {
	if raw != "good" {
		return nil, errors.New("invalid token")
	}
	c := &domain.Claims{UserID: "7b1e6b9e-3c0b-4b8e-9f57-2a4c1d5e6f70"}
	c.Subject = "sub-1"
	return c, nil
}

func testGuardConfig() config.GuardConfig {
	return config.GuardConfig{
		AuthPrefix: "/auth",
		LoginPath:  "/auth/login",
		HomePath:   "/",
		Exclude:    []string{"/api", "/static", "/images", "/public", "/favicon.ico", "/health", "/_next/*"},
	}
}

func newGuardApp(recorder metrics.Recorder) *fiber.App {
	app := fiber.New()
	app.Use(Authenticate(stubVerifier{}, "auth_token", zap.NewNop()))
	app.Use(NewRouteGuard(testGuardConfig(), recorder).Handler())
	app.Use(func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestDecide(t *testing.T) {
	tests := []struct {
		isAuthPage bool
		hasToken   bool
		want       Decision
	}{
		{true, true, RedirectHome},
		{true, false, Allow},
		{false, true, Allow},
		{false, false, RedirectLogin},
	}

	for _, tt := range tests {
		if got := Decide(tt.isAuthPage, tt.hasToken); got != tt.want {
			t.Errorf("Decide(%v, %v) = %v, want %v", tt.isAuthPage, tt.hasToken, got, tt.want)
		}
	}
}

func TestRouteGuard(t *testing.T) {
	app := newGuardApp(nil)

	tests := []struct {
		name         string
		target       string
		header       string
		cookie       string
		wantStatus   int
		wantLocation string
	}{
		{"auth page with token goes home", "/auth/login", "Bearer good", "", http.StatusFound, "/"},
		{"auth page with cookie goes home", "/auth/signup", "", "good", http.StatusFound, "/"},
		{"auth page without token allowed", "/auth/login", "", "", http.StatusOK, ""},
		{"protected page with token allowed", "/dashboard", "Bearer good", "", http.StatusOK, ""},
		{"protected page without token", "/dashboard", "", "", http.StatusFound, "/auth/login?callbackUrl=/dashboard"},
		{"callback keeps query", "/dashboard?tab=a&x=1", "", "", http.StatusFound, "/auth/login?callbackUrl=/dashboard%3Ftab%3Da%26x%3D1"},
		{"invalid token counts as none", "/dashboard", "Bearer bad", "", http.StatusFound, "/auth/login?callbackUrl=/dashboard"},
		{"invalid token on auth page allowed", "/auth/login", "Bearer bad", "", http.StatusOK, ""},
		{"root without token", "/", "", "", http.StatusFound, "/auth/login?callbackUrl=/"},
		{"prefix is segment aligned", "/authors", "", "", http.StatusFound, "/auth/login?callbackUrl=/authors"},
		{"api never redirected", "/api/anything", "", "", http.StatusOK, ""},
		{"api never redirected with token", "/api/anything", "Bearer good", "", http.StatusOK, ""},
		{"static excluded", "/static/app.js", "", "", http.StatusOK, ""},
		{"favicon excluded", "/favicon.ico", "", "", http.StatusOK, ""},
		{"glob exclusion", "/_next/chunk.js", "", "", http.StatusOK, ""},
		{"excluded prefix is segment aligned", "/apiary", "", "", http.StatusFound, "/auth/login?callbackUrl=/apiary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: tt.cookie})
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := resp.Header.Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}

type decisionRecorder struct {
	metrics.Nop
	decisions map[string]int
}

func (r *decisionRecorder) RecordGuardDecision(decision string) {
	r.decisions[decision]++
}

func TestRouteGuard_RecordsDecisions(t *testing.T) {
	recorder := &decisionRecorder{decisions: map[string]int{}}
	app := newGuardApp(recorder)

	for _, target := range []string{"/dashboard", "/dashboard", "/auth/login", "/api/x"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	if got := recorder.decisions["redirect_login"]; got != 2 {
		t.Errorf("redirect_login = %d, want 2", got)
	}
	if got := recorder.decisions["allow"]; got != 1 {
		t.Errorf("allow = %d, want 1", got)
	}
	if len(recorder.decisions) != 2 {
		t.Errorf("excluded paths should not be recorded: %v", recorder.decisions)
	}
}

func TestExtractToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(ExtractToken(c, "auth_token"))
	})

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer header", "Bearer abc", "", "abc"},
		{"lowercase scheme", "bearer abc", "", "abc"},
		{"header wins over cookie", "Bearer abc", "xyz", "abc"},
		{"cookie fallback", "", "xyz", "xyz"},
		{"non bearer header", "Basic abc", "xyz", ""},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: tt.cookie})
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if got := string(body); got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	app := fiber.New()
	app.Use(Authenticate(stubVerifier{}, "auth_token", zap.NewNop()))
	app.Get("/me", RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendString(Claims(c).Subject)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status with token = %d, want 200", resp.StatusCode)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RecoveryMiddleware(zap.NewNop()))
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("kaboom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
