package kafka

import "encoding/json"

// Domain event types published by the business flows.
const (
	EventOrderCompleted        = "order.completed"
	EventSubscriptionActivated = "subscription.activated"
	EventCheckoutUpdated       = "checkout.updated"
)

// DomainEventPayload is the envelope on the domain-events topic.
type DomainEventPayload struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}
