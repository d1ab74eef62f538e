package klaviyo

import "strings"

// RedactedMarker replaces any property whose key is on the deny list.
const RedactedMarker = "[REDACTED]"

// _defaultDenyFields is the built-in sensitive-field list; config extends it.
var _defaultDenyFields = []string{
	"password",
	"token",
	"secret",
	"key",
	"credit_card",
	"payment_method_id",
	"stripe_payment_method",
}

func buildDenyList(extra []string) map[string]struct{} {
	deny := make(map[string]struct{}, len(_defaultDenyFields)+len(extra))

	for _, f := range _defaultDenyFields {
		deny[f] = struct{}{}
	}
	for _, f := range extra {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			deny[f] = struct{}{}
		}
	}

	return deny
}

// sanitizeProperties runs unconditionally before serialization, so sensitive
// values are never transmitted or logged. Non-denied properties pass through
// untouched; the input map is not modified.
func sanitizeProperties(props map[string]any, denyList map[string]struct{}) map[string]any {
	if props == nil {
		return map[string]any{}
	}

	sanitized := make(map[string]any, len(props))
	for k, v := range props {
		if _, denied := denyList[strings.ToLower(k)]; denied {
			sanitized[k] = RedactedMarker
			continue
		}
		sanitized[k] = v
	}

	return sanitized
}
