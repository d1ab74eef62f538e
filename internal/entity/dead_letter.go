package entity

import "time"

// DeadLetterRecord is what gets archived when an event exhausts delivery,
// with enough context for an operator to replay it.
type DeadLetterRecord struct {
	Event      *Event    `json:"event"`
	Cause      string    `json:"cause"`
	Attempts   int       `json:"attempts"`
	ArchivedAt time.Time `json:"archived_at"`
}
