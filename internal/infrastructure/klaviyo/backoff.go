package klaviyo

import (
	"math/rand"
	"time"
)

// Backoff computes the delay before retrying attempt+1:
// min(base * 2^(attempt-1) + jitter, cap), jitter uniform in [0, base).
// The jitter keeps concurrent callers from retrying in lockstep.
func Backoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := base << (attempt - 1)
	if delay <= 0 || delay > cap {
		// shift overflow or past the ceiling
		return cap
	}

	delay += time.Duration(rand.Int63n(int64(base)))
	if delay > cap {
		return cap
	}

	return delay
}
