package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/raffle-client/internal/api"
	"github.com/mmeshcher/raffle-client/internal/identity"
	"github.com/mmeshcher/raffle-client/internal/model"
	"github.com/mmeshcher/raffle-client/internal/raffles"
)

// stubProvider реализует identity.Provider для тестов оболочки.
type stubProvider struct {
	tokens     *identity.Tokens
	sessionErr error

	signInResult identity.SignInResult
	signInErr    error
}

func (s *stubProvider) SignUp(_ context.Context, _ identity.SignUpInput) (identity.SignUpResult, error) {
	return identity.SignUpResult{NextStep: identity.StepConfirmSignUp}, nil
}

func (s *stubProvider) ConfirmSignUp(_ context.Context, _, _ string) error { return nil }

func (s *stubProvider) ResendConfirmationCode(_ context.Context, _ string) error { return nil }

func (s *stubProvider) SignIn(_ context.Context, _, _ string) (identity.SignInResult, error) {
	return s.signInResult, s.signInErr
}

func (s *stubProvider) SignOut(_ context.Context) error { return nil }

func (s *stubProvider) CurrentSession(_ context.Context) (*identity.Tokens, error) {
	if s.sessionErr != nil {
		return nil, s.sessionErr
	}
	return s.tokens, nil
}

func (s *stubProvider) UserAttributes(_ context.Context) (map[string]string, error) {
	return map[string]string{
		"email":       "juan@example.com",
		"given_name":  "Juan",
		"family_name": "Pérez",
	}, nil
}

func makeIDToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1"}).
		SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func anonymousProvider() *stubProvider {
	return &stubProvider{sessionErr: identity.ErrNoSession}
}

func signedInProvider(t *testing.T) *stubProvider {
	t.Helper()
	return &stubProvider{
		tokens:       &identity.Tokens{IDToken: makeIDToken(t), AccessToken: "access"},
		signInResult: identity.SignInResult{SignedIn: true, NextStep: identity.StepDone},
	}
}

// newTestHandler собирает оболочку поверх заглушки провайдера и тестового
// бэкенда. hydrate=false оставляет сессию в состоянии загрузки.
func newTestHandler(t *testing.T, provider identity.Provider, backendURL string, hydrate bool) *Handler {
	t.Helper()

	manager := identity.NewManager(provider, "Admin", zap.NewNop().Sugar())
	if hydrate {
		manager.Hydrate(context.Background())
	}

	client := raffles.NewClient(api.NewClient(backendURL, zap.NewNop().Sugar()))
	h := NewHandler(manager, client, zap.NewNop())
	t.Cleanup(h.Shutdown)
	return h
}

func backendWithRaffles(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/public/raffles":
			json.NewEncoder(w).Encode(model.ListResult{
				Raffles: []model.Raffle{
					{RaffleID: "r-1", Title: "iPhone 16", Status: model.StatusActive},
				},
				Count: 1,
			})
		case strings.HasPrefix(r.URL.Path, "/api/v1/public/raffles/"):
			w.Write([]byte(`{"status": "active", "raffle_id": "r-1", "title": "iPhone 16", "can_participate": true, "max_participants": 100, "current_participants": 10, "participation_percentage": 10}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHome_RendersFeatured(t *testing.T) {
	backend := backendWithRaffles(t)
	h := newTestHandler(t, anonymousProvider(), backend.URL, true)

	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "iPhone 16") {
		t.Fatal("home page must list featured raffles")
	}
}

func TestListRaffles_TransportFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // соединение будет отклонено

	h := newTestHandler(t, anonymousProvider(), backend.URL, true)

	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raffles", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No se pudo conectar con el servidor") {
		t.Fatal("transport failure must render the retry message")
	}
}

func TestShowRaffle_RendersDetail(t *testing.T) {
	backend := backendWithRaffles(t)
	h := newTestHandler(t, anonymousProvider(), backend.URL, true)

	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raffles/r-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "iPhone 16") {
		t.Fatal("detail page must show the raffle title")
	}
	if !strings.Contains(body, "Inicia sesión para participar") {
		t.Fatal("anonymous visitor must be offered sign in instead of the participate button")
	}
}

func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	backend := backendWithRaffles(t)
	h := newTestHandler(t, anonymousProvider(), backend.URL, true)

	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/raffles/r-1/participate", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	want := "/sign-in?from=" + url.QueryEscape("/raffles/r-1/participate")
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func TestRequireAuth_WaitsWhileLoading(t *testing.T) {
	backend := backendWithRaffles(t)
	h := newTestHandler(t, anonymousProvider(), backend.URL, false)

	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sign-out", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want neutral placeholder", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Cargando") {
		t.Fatal("loading session must render the placeholder page")
	}
}

func TestGuestOnly_RedirectsSignedIn(t *testing.T) {
	backend := backendWithRaffles(t)
	h := newTestHandler(t, signedInProvider(t), backend.URL, true)

	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/sign-in?from=%2Fraffles%2Fr-1", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/raffles/r-1" {
		t.Fatalf("Location = %q, want original path", got)
	}
}

func TestSignIn_ReturnsToOrigin(t *testing.T) {
	backend := backendWithRaffles(t)
	provider := anonymousProvider()
	h := newTestHandler(t, provider, backend.URL, true)

	// После успешного входа провайдер начинает отдавать сессию.
	provider.signInResult = identity.SignInResult{SignedIn: true, NextStep: identity.StepDone}
	provider.sessionErr = nil
	provider.tokens = &identity.Tokens{IDToken: makeIDToken(t), AccessToken: "access"}

	form := url.Values{
		"email":    {"juan@example.com"},
		"password": {"Secret1!"},
		"from":     {"/raffles/r-1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/raffles/r-1" {
		t.Fatalf("Location = %q, want original path", got)
	}
	if !h.manager.Session().IsAuthenticated {
		t.Fatal("session must be authenticated after sign in")
	}
}

func TestSignIn_FailureFlashesAndReturnsToForm(t *testing.T) {
	backend := backendWithRaffles(t)
	provider := anonymousProvider()
	provider.signInErr = identity.ErrNotAuthorized
	h := newTestHandler(t, provider, backend.URL, true)

	form := url.Values{
		"email":    {"juan@example.com"},
		"password": {"wrong"},
	}
	req := httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/sign-in" {
		t.Fatalf("Location = %q, want sign-in form", got)
	}

	messages := h.flash.Drain()
	if len(messages) != 1 || messages[0].Title != "Credenciales incorrectas" {
		t.Fatalf("flash = %+v", messages)
	}
}

func TestSignUp_PasswordMismatch(t *testing.T) {
	backend := backendWithRaffles(t)
	h := newTestHandler(t, anonymousProvider(), backend.URL, true)

	form := url.Values{
		"email":            {"juan@example.com"},
		"password":         {"Secret1!"},
		"confirm_password": {"Other1!"},
		"first_name":       {"Juan"},
		"last_name":        {"Pérez"},
	}
	req := httptest.NewRequest(http.MethodPost, "/sign-up", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, req)

	if got := rec.Header().Get("Location"); got != "/sign-up" {
		t.Fatalf("Location = %q, want sign-up form", got)
	}

	messages := h.flash.Drain()
	if len(messages) != 1 || messages[0].Detail != "Las contraseñas no coinciden" {
		t.Fatalf("flash = %+v", messages)
	}
}

func TestSignUp_RedirectsToConfirm(t *testing.T) {
	backend := backendWithRaffles(t)
	h := newTestHandler(t, anonymousProvider(), backend.URL, true)

	form := url.Values{
		"email":            {"juan@example.com"},
		"password":         {"Secret1!"},
		"confirm_password": {"Secret1!"},
		"first_name":       {"Juan"},
		"last_name":        {"Pérez"},
	}
	req := httptest.NewRequest(http.MethodPost, "/sign-up", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.SetupRouter().ServeHTTP(rec, req)

	want := "/confirm?email=" + url.QueryEscape("juan@example.com")
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func TestFlash_DrainsOnce(t *testing.T) {
	f := NewFlash()
	f.Success("a", "b")
	f.Error("c", "d")

	first := f.Drain()
	if len(first) != 2 {
		t.Fatalf("drained %d messages, want 2", len(first))
	}
	if first[0].Kind != "success" || first[1].Kind != "error" {
		t.Fatalf("unexpected kinds: %+v", first)
	}
	if second := f.Drain(); len(second) != 0 {
		t.Fatalf("second drain returned %d messages", len(second))
	}
}

func TestControllerSet(t *testing.T) {
	backend := backendWithRaffles(t)
	h := newTestHandler(t, anonymousProvider(), backend.URL, true)

	if h.controllers.peek("r-1") != nil {
		t.Fatal("peek must not create controllers")
	}

	ctrl := h.controllers.get("r-1")
	if ctrl == nil {
		t.Fatal("get must create a controller")
	}
	if h.controllers.get("r-1") != ctrl {
		t.Fatal("get must return the same controller per raffle")
	}
	if h.controllers.peek("r-1") != ctrl {
		t.Fatal("peek must see the created controller")
	}

	h.controllers.closeAll()
	if h.controllers.peek("r-1") != nil {
		t.Fatal("closeAll must drop controllers")
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"juan@example.com", "j***@e***.com"},
		{"ñoño@ejemplo.mx", "ñ***@e***.mx"},
		{"千佳@例え.jp", "千***@例***.jp"},
		{"a@b", "a***@b***"},
		{"sin-arroba", "***@***.***"},
		{"@dominio.com", "***@***.***"},
	}
	for _, tt := range tests {
		got := maskEmail(tt.email)
		if got != tt.want {
			t.Errorf("maskEmail(%q) = %q, want %q", tt.email, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("maskEmail(%q) produced invalid UTF-8: %q", tt.email, got)
		}
	}
}
