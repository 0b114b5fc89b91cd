// Package model defines the core domain types for the event registration app.
package model

import "time"

// UserAccount is a registered user. Accounts are append-only: they are
// created by signup and never mutated or deleted afterwards. Email is the
// unique key, compared case-sensitively.
type UserAccount struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// Session is the single currently authenticated identity. At most one session
// exists per store; logging in overwrites it and logging out clears it.
type Session struct {
	Token     string      `json:"token"`
	User      UserAccount `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

// Event is read-only seed/reference data; this app never creates or mutates
// events. Date is an ISO date string and may be empty for undated events.
type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Registration joins a user (by email) to an event (by id). The id is
// time-derived and unique across the registration list.
type Registration struct {
	ID        int64  `json:"id"`
	EventID   int64  `json:"eventId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

// SignUpRequest is the payload for creating an account.
type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LogInRequest is the payload for authenticating.
type LogInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the account shape returned to clients. The password hash
// never leaves the server.
type UserResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventView is an event decorated with the viewer's registration state.
type EventView struct {
	Event
	Registered bool `json:"registered"`
}

// RegistrationView is a registration joined with its resolved event for
// display. The event is a placeholder when the referenced event is missing.
type RegistrationView struct {
	Registration
	Event Event `json:"event"`
}

// DashboardResponse aggregates everything the dashboard page renders.
type DashboardResponse struct {
	User          UserResponse       `json:"user"`
	Events        []EventView        `json:"events"`
	Registrations []RegistrationView `json:"registrations"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UserView strips credentials from an account for client consumption.
func UserView(u UserAccount) UserResponse {
	return UserResponse{Name: u.Name, Email: u.Email}
}
