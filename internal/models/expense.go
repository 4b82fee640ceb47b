package models

import "time"

// DateLayout is the calendar date format used in forms and in storage.
const DateLayout = "2006-01-02"

// Expense represents a single spending record owned by a user.
type Expense struct {
	ID          int64     `json:"id"`
	UserEmail   string    `json:"user_email"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// DateString returns the expense date as YYYY-MM-DD, or "" when the stored date was unreadable.
func (e Expense) DateString() string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(DateLayout)
}

// User represents a user account. Email is the login key.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session represents a user session.
type Session struct {
	Token        string    `json:"token"`
	UserEmail    string    `json:"user_email"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
}
