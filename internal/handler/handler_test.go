package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/eventlog-app/eventlog/internal/database"
	"github.com/eventlog-app/eventlog/internal/model"
	"github.com/eventlog-app/eventlog/internal/repository"
	"github.com/eventlog-app/eventlog/internal/service"
	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T) (chi.Router, database.Store) {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	auth := service.NewAuthService(repository.NewUserRepository(store), repository.NewSessionRepository(store))
	events := service.NewEventService(repository.NewEventRepository(store))
	regs := service.NewRegistrationService(repository.NewRegistrationRepository(store))
	h := New(auth, events, regs)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/login", h.LogIn)
		r.Post("/logout", h.LogOut)
		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Get("/me", h.Me)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/events", h.ListEvents)
			r.Post("/events/{id}/register", h.Register)
			r.Get("/registrations", h.ListRegistrations)
			r.Delete("/registrations/{id}", h.Unregister)
		})
	})
	r.Get("/dashboard", h.DashboardPage(t.TempDir()))
	return r, store
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("expected a session cookie")
	return nil
}

func signUpAnn(t *testing.T, r chi.Router) *http.Cookie {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/signup", model.SignUpRequest{
		Name: "Ann", Email: "ann@x.com", Password: "secret1", ConfirmPassword: "secret1",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func TestSignUpSetsCookieAndHidesHash(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/signup", model.SignUpRequest{
		Name: "Ann", Email: "ann@x.com", Password: "secret1", ConfirmPassword: "secret1",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	sessionCookie(t, rec)

	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Fatalf("response must not leak credentials: %s", rec.Body.String())
	}
}

func TestSignUpValidationMessageSurfacedVerbatim(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/signup", model.SignUpRequest{
		Name: "Ann", Email: "ann@x.com", Password: "short", ConfirmPassword: "short",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp model.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error != "Password must be at least 6 characters." {
		t.Fatalf("unexpected message: %q", resp.Error)
	}
}

func TestLogInWrongPasswordIsGeneric401(t *testing.T) {
	r, _ := newTestRouter(t)
	signUpAnn(t, r)

	rec := doJSON(t, r, http.MethodPost, "/api/login", model.LogInRequest{
		Email: "ann@x.com", Password: "wrong1",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var resp model.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error != "Invalid email or password." {
		t.Fatalf("unexpected message: %q", resp.Error)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/api/me", "/api/dashboard", "/api/events", "/api/registrations"} {
		rec := doJSON(t, r, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without session, got %d", path, rec.Code)
		}
	}
}

func TestStaleCookieRejectedAfterNewLogin(t *testing.T) {
	r, _ := newTestRouter(t)
	oldCookie := signUpAnn(t, r)

	// A fresh login rotates the token; the old cookie must stop working.
	rec := doJSON(t, r, http.MethodPost, "/api/login", model.LogInRequest{
		Email: "ann@x.com", Password: "secret1",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	newCookie := sessionCookie(t, rec)

	if rec := doJSON(t, r, http.MethodGet, "/api/me", nil, oldCookie); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected stale cookie to be rejected, got %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodGet, "/api/me", nil, newCookie); rec.Code != http.StatusOK {
		t.Fatalf("expected fresh cookie to work, got %d", rec.Code)
	}
}

func TestDashboardPageRedirectsWithoutSession(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to login entry point, got %q", loc)
	}
}

func TestRegisterTwiceReturnsConflict(t *testing.T) {
	r, store := newTestRouter(t)
	cookie := signUpAnn(t, r)

	seedEvents(t, store)

	if rec := doJSON(t, r, http.MethodPost, "/api/events/10/register", nil, cookie); rec.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, r, http.MethodPost, "/api/events/10/register", nil, cookie); rec.Code != http.StatusConflict {
		t.Fatalf("second register: expected 409, got %d", rec.Code)
	}

	rec := doJSON(t, r, http.MethodGet, "/api/registrations", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var views []model.RegistrationView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode registrations: %v", err)
	}
	if len(views) != 1 || views[0].EventID != 10 {
		t.Fatalf("expected one registration for event 10, got %v", views)
	}
	if views[0].Event.Title != "Go Meetup" {
		t.Fatalf("expected joined event, got %+v", views[0].Event)
	}
}

func TestUnregisterAlwaysNoContent(t *testing.T) {
	r, store := newTestRouter(t)
	cookie := signUpAnn(t, r)
	seedEvents(t, store)

	rec := doJSON(t, r, http.MethodPost, "/api/events/10/register", nil, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}
	var reg model.Registration
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode registration: %v", err)
	}

	if rec := doJSON(t, r, http.MethodDelete, "/api/registrations/424242", nil, cookie); rec.Code != http.StatusNoContent {
		t.Fatalf("unknown id: expected 204, got %d", rec.Code)
	}

	path := "/api/registrations/" + strconv.FormatInt(reg.ID, 10)
	if rec := doJSON(t, r, http.MethodDelete, path, nil, cookie); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/registrations", nil, cookie)
	var views []model.RegistrationView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode registrations: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no registrations left, got %v", views)
	}
}

func TestDashboardMarksRegisteredEventsInUpcomingOrder(t *testing.T) {
	r, store := newTestRouter(t)
	cookie := signUpAnn(t, r)
	seedEvents(t, store)

	if rec := doJSON(t, r, http.MethodPost, "/api/events/10/register", nil, cookie); rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}

	rec := doJSON(t, r, http.MethodGet, "/api/dashboard", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	var resp model.DashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}

	if resp.User.Email != "ann@x.com" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	// Event 20 (earlier date) sorts first; undated event 30 sorts last.
	wantOrder := []int64{20, 10, 30}
	for i, id := range wantOrder {
		if resp.Events[i].ID != id {
			t.Fatalf("expected event order %v, got %+v", wantOrder, resp.Events)
		}
	}
	for _, ev := range resp.Events {
		if ev.Registered != (ev.ID == 10) {
			t.Fatalf("wrong registered flag on event %d", ev.ID)
		}
	}
	if len(resp.Registrations) != 1 || resp.Registrations[0].Event.Title != "Go Meetup" {
		t.Fatalf("unexpected registrations: %+v", resp.Registrations)
	}
}

func seedEvents(t *testing.T, store database.Store) {
	t.Helper()
	events := []model.Event{
		{ID: 10, Title: "Go Meetup", Date: "2026-09-18", Location: "Hall A"},
		{ID: 20, Title: "Hack Night", Date: "2026-09-05", Location: "Library"},
		{ID: 30, Title: "Picnic", Date: ""},
	}
	if err := store.Set(context.Background(), database.KeyEvents, events); err != nil {
		t.Fatalf("seed events: %v", err)
	}
}
