package events

// Family is the feature-flag granularity: one switch per event family.
type Family string

const (
	FamilyPurchase            Family = "purchase"
	FamilySubscriptionStarted Family = "subscription_started"
	FamilyCartAbandoned       Family = "cart_abandoned_10m"
)

// Flags is read once from process configuration at construction.
type Flags struct {
	Purchase            bool
	SubscriptionStarted bool
	CartAbandoned       bool
}

func (f Flags) IsEnabled(family Family) bool {
	switch family {
	case FamilyPurchase:
		return f.Purchase
	case FamilySubscriptionStarted:
		return f.SubscriptionStarted
	case FamilyCartAbandoned:
		return f.CartAbandoned
	default:
		return false
	}
}
