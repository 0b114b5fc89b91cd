package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/eventlog-app/eventlog/internal/model"
)

type contextKey string

const sessionContextKey contextKey = "session"

// sessionFrom returns the session placed in the context by RequireSession.
// It is only called behind that middleware, so the value is always present.
func sessionFrom(ctx context.Context) *model.Session {
	return ctx.Value(sessionContextKey).(*model.Session)
}

// currentSession validates the request's session cookie against the stored
// session. A stale cookie (token mismatch after a newer login) is rejected.
func (h *Handler) currentSession(r *http.Request) (*model.Session, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, err
	}
	sess, err := h.auth.CurrentSession(r.Context())
	if err != nil {
		return nil, err
	}
	if sess.Token != cookie.Value {
		return nil, http.ErrNoCookie
	}
	return sess, nil
}

// RequireSession guards protected API routes. Requests without a valid
// session get 401 and are expected to navigate back to the login page.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.currentSession(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logger is a minimal structured access log.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// CORS applies permissive CORS headers, suitable for a local demo.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
