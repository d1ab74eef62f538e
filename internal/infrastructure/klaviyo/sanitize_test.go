package klaviyo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePropertiesRedactsDenyListOnly(t *testing.T) {
	deny := buildDenyList(nil)

	props := map[string]any{
		"order_id":              "order-1",
		"total":                 42.5,
		"password":              "hunter2",
		"token":                 "tok_abc",
		"secret":                "shh",
		"key":                   "k",
		"credit_card":           "4242",
		"payment_method_id":     "pm_123",
		"stripe_payment_method": "pm_456",
	}

	sanitized := sanitizeProperties(props, deny)

	for _, denied := range []string{"password", "token", "secret", "key", "credit_card", "payment_method_id", "stripe_payment_method"} {
		assert.Equal(t, RedactedMarker, sanitized[denied], denied)
	}

	assert.Equal(t, "order-1", sanitized["order_id"])
	assert.Equal(t, 42.5, sanitized["total"])

	// input untouched
	assert.Equal(t, "hunter2", props["password"])
}

func TestSanitizePropertiesIsCaseInsensitive(t *testing.T) {
	sanitized := sanitizeProperties(map[string]any{"Password": "x"}, buildDenyList(nil))

	assert.Equal(t, RedactedMarker, sanitized["Password"])
}

func TestBuildDenyListExtension(t *testing.T) {
	deny := buildDenyList([]string{" SSN ", ""})

	sanitized := sanitizeProperties(map[string]any{"ssn": "123-45-6789", "name": "a"}, deny)

	assert.Equal(t, RedactedMarker, sanitized["ssn"])
	assert.Equal(t, "a", sanitized["name"])
}

func TestSanitizePropertiesNilInput(t *testing.T) {
	sanitized := sanitizeProperties(nil, buildDenyList(nil))

	assert.NotNil(t, sanitized)
	assert.Empty(t, sanitized)
}
