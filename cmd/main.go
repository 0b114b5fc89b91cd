// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventlog-app/eventlog/internal/config"
	"github.com/eventlog-app/eventlog/internal/database"
	"github.com/eventlog-app/eventlog/internal/handler"
	"github.com/eventlog-app/eventlog/internal/repository"
	"github.com/eventlog-app/eventlog/internal/seed"
	"github.com/eventlog-app/eventlog/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Open the local store ──────────────────────────────────────────
	store, err := database.Open(cfg.StorePath)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close()
	log.Printf("✓ Store open at %s", cfg.StorePath)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	eventRepo := repository.NewEventRepository(store)
	regRepo := repository.NewRegistrationRepository(store)

	if err := seed.EnsureEvents(ctx, eventRepo); err != nil {
		log.Fatalf("seed events: %v", err)
	}

	authSvc := service.NewAuthService(userRepo, sessionRepo)
	eventSvc := service.NewEventService(eventRepo)
	regSvc := service.NewRegistrationService(regRepo)
	h := handler.New(authSvc, eventSvc, regSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS for demo

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
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

	// Browser pages – the dashboard redirects to the login page when no
	// session exists; everything else is static.
	r.Get("/dashboard", h.DashboardPage(cfg.WebDir))
	r.Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
