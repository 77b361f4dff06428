package tournament

import (
	"context"
)

// PublisherEvent is an analytics-style event generated server-side by the
// tournament systems.
type PublisherEvent struct {
	Name      string            `json:"name,omitempty"`
	Id        string            `json:"id,omitempty"`
	Timestamp int64             `json:"timestamp,omitempty"`
	PlayerID  string            `json:"player_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Value     string            `json:"value,omitempty"`
}

// The Publisher describes a service or similar target implementation that
// wishes to receive and process analytics-style events generated by the
// tournament systems.
//
// Each Publisher may choose to process or ignore each event as it sees fit.
// It may also choose to buffer events for batch processing at its discretion.
//
// Implementations must handle any errors or retries internally, callers will
// not repeat calls in case of errors.
type Publisher interface {
	// Send is called when there are one or more events generated.
	Send(ctx context.Context, logger Logger, events []*PublisherEvent)
}
