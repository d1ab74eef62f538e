package entity

import "time"

// CartStatus -.
type CartStatus string

const (
	CartOpen      CartStatus = "open"
	CartCompleted CartStatus = "completed"
)

// Cart is the persisted cart row the abandonment worker reads. Once
// AbandonedNotified is true the cart must never emit another
// "Checkout Abandoned" event.
type Cart struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Total             float64    `json:"total"`
	Currency          string     `json:"currency"`
	Status            CartStatus `json:"status"`
	Items             []byte     `json:"items"` // raw JSON array of heterogeneous item shapes
	LastActivityAt    *time.Time `json:"last_activity_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
	AbandonedNotified bool       `json:"abandoned_notified"`
}
