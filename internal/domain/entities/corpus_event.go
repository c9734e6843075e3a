package entities

import "time"

// CorpusEventType represents the type of corpus event
type CorpusEventType string

const (
	// CorpusEventUpdated is published after the backing store was rewritten.
	CorpusEventUpdated CorpusEventType = "corpus_updated"
)

// CorpusEvent announces a change to the stored corpus so running servers
// can refresh their snapshot without waiting for the next interval.
type CorpusEvent struct {
	ID          string          `json:"id"`
	Type        CorpusEventType `json:"type"`
	Source      string          `json:"source"`
	Facilities  int             `json:"facilities"`
	Providers   int             `json:"providers"`
	PostalCodes int             `json:"postal_codes"`
	Timestamp   time.Time       `json:"timestamp"`
}
