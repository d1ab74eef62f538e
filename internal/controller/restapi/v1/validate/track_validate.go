package validate

import "strings"

const MaxEmailLen = 254

// Email is a cheap shape check; deliverability is Klaviyo's problem.
func Email(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > MaxEmailLen {
		return false
	}

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	return strings.Contains(email[at+1:], ".")
}
