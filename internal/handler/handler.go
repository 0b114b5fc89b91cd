// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/eventlog-app/eventlog/internal/model"
	"github.com/eventlog-app/eventlog/internal/service"
	"github.com/go-chi/chi/v5"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session_token"

// Handler holds all HTTP handlers for the event registration app.
type Handler struct {
	auth          *service.AuthService
	events        *service.EventService
	registrations *service.RegistrationService
}

// New constructs a Handler.
func New(auth *service.AuthService, events *service.EventService, registrations *service.RegistrationService) *Handler {
	return &Handler{auth: auth, events: events, registrations: registrations}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ─── Auth handlers ────────────────────────────────────────────────────────────

// SignUp handles POST /api/signup
// Creates an account, logs it in, and sets the session cookie.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req model.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sess, err := h.auth.SignUp(r.Context(), req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to sign up")
		return
	}

	setSessionCookie(w, sess.Token)
	writeJSON(w, http.StatusCreated, model.UserView(sess.User))
}

// LogIn handles POST /api/login
// Authenticates and sets the session cookie. Credential mismatches always
// produce the same generic message.
func (h *Handler) LogIn(w http.ResponseWriter, r *http.Request) {
	var req model.LogInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sess, err := h.auth.LogIn(r.Context(), req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Message)
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		default:
			writeError(w, http.StatusInternalServerError, "failed to log in")
		}
		return
	}

	setSessionCookie(w, sess.Token)
	writeJSON(w, http.StatusOK, model.UserView(sess.User))
}

// LogOut handles POST /api/logout
// Clears the session and the cookie; logging out twice is harmless.
func (h *Handler) LogOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.LogOut(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me
// Returns the logged-in account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, model.UserView(sess.User))
}

// ─── Event and registration handlers ─────────────────────────────────────────

// Dashboard handles GET /api/dashboard
// Returns everything the dashboard renders: the user, upcoming events with
// the viewer's registration flag, and the viewer's registrations joined with
// their events.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	events, err := h.events.ListUpcoming(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	regs, err := h.registrations.ListForUser(r.Context(), sess.User.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load registrations")
		return
	}

	resp := model.DashboardResponse{
		User:          model.UserView(sess.User),
		Events:        make([]model.EventView, 0, len(events)),
		Registrations: make([]model.RegistrationView, 0, len(regs)),
	}
	for _, ev := range events {
		resp.Events = append(resp.Events, model.EventView{
			Event:      ev,
			Registered: service.IsRegistered(ev.ID, sess.User.Email, regs),
		})
	}
	for _, reg := range regs {
		resp.Registrations = append(resp.Registrations, model.RegistrationView{
			Registration: reg,
			Event:        service.ResolveEvent(reg, events),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListEvents handles GET /api/events
// Returns all events in upcoming order with the viewer's registration flag.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	events, err := h.events.ListUpcoming(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	regs, err := h.registrations.ListForUser(r.Context(), sess.User.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load registrations")
		return
	}

	views := make([]model.EventView, 0, len(events))
	for _, ev := range events {
		views = append(views, model.EventView{
			Event:      ev,
			Registered: service.IsRegistered(ev.ID, sess.User.Email, regs),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// Register handles POST /api/events/{id}/register
// Registers the logged-in user for the event. Registering twice returns 409
// and changes nothing.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	reg, err := h.registrations.Register(r.Context(), sess.User.Email, sess.User.Name, eventID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRegistered) {
			writeError(w, http.StatusConflict, "You are already registered for this event.")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// ListRegistrations handles GET /api/registrations
// Returns the logged-in user's registrations joined with their events.
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	regs, err := h.registrations.ListForUser(r.Context(), sess.User.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load registrations")
		return
	}
	events, err := h.events.ListUpcoming(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	views := make([]model.RegistrationView, 0, len(regs))
	for _, reg := range regs {
		views = append(views, model.RegistrationView{
			Registration: reg,
			Event:        service.ResolveEvent(reg, events),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// Unregister handles DELETE /api/registrations/{id}
// Removes the registration. Unknown ids succeed silently.
func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration id")
		return
	}

	if err := h.registrations.Unregister(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to unregister")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Pages ────────────────────────────────────────────────────────────────────

// DashboardPage handles GET /dashboard for browser navigation. Without a
// session the browser is redirected to the login entry point.
func (h *Handler) DashboardPage(webDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.currentSession(r); err != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		http.ServeFile(w, r, webDir+"/dashboard.html")
	}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
