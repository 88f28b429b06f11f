package models

import "time"

// User is the authenticated caller as the assistant sees it.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session binds an issued token to its user.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ReminderPayload is queued when an appointment is booked.
type ReminderPayload struct {
	ReminderID    string `json:"reminderId"`
	UserID        string `json:"userId"`
	AppointmentID string `json:"appointmentId"`
	Patient       string `json:"patient"`
	Doctor        string `json:"doctor"`
	FireDate      string `json:"fireDate"`
	Title         string `json:"title"`
	Body          string `json:"body"`
}
