package dto

import "time"

// Item is the heterogeneous upstream item shape. Different checkout flows
// populate different field pairs; normalization resolves the precedence once
// (see usecase/events).
type Item struct {
	ID        string   `json:"id,omitempty"`
	ProductID string   `json:"product_id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Title     string   `json:"title,omitempty"`
	SKU       string   `json:"sku,omitempty"`
	Quantity  *int     `json:"quantity,omitempty"`
	Qty       *int     `json:"qty,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	Category  string   `json:"category,omitempty"`
}

// Order is the completed-order hook payload.
type Order struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Total         float64 `json:"total"`
	Subtotal      float64 `json:"subtotal,omitempty"`
	Tax           float64 `json:"tax,omitempty"`
	Shipping      float64 `json:"shipping,omitempty"`
	Discount      float64 `json:"discount,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Items         []Item  `json:"items,omitempty"`
}

// Subscription is the subscription-activated hook payload.
type Subscription struct {
	ID                   string    `json:"id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	Email                string    `json:"email"`
	Tier                 string    `json:"tier,omitempty"`
	Interval             string    `json:"interval,omitempty"`
	IntervalCount        int       `json:"interval_count,omitempty"`
	Amount               float64   `json:"amount,omitempty"`
	Currency             string    `json:"currency,omitempty"`
	StartDate            time.Time `json:"start_date"`
}

// Cart is the cart-touched hook payload; also built by the worker from the
// persisted cart row.
type Cart struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Total          float64    `json:"total"`
	Currency       string     `json:"currency,omitempty"`
	Items          []Item     `json:"items,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}
