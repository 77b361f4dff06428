package tournament

import (
	"time"
)

// Event is a single published notification. Events are immutable once
// published; the bus keeps a bounded history of recent ones for debugging.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"` // unix milliseconds
	ID        string      `json:"id"`
	Source    string      `json:"source,omitempty"`
}

// EventCallback handles one delivered event. A returned error (or a panic,
// which the bus recovers) is recorded on the PublishResult and never stops
// delivery to the remaining listeners.
type EventCallback func(Event) error

// SubscribeOptions tunes a single subscription.
type SubscribeOptions struct {
	// Once removes the listener after its first delivery.
	Once bool
	// Priority orders delivery; higher runs first, ties keep subscribe order.
	Priority int
}

// PublishOptions annotates a single publish call.
type PublishOptions struct {
	// Source identifies the publisher, e.g. a game id.
	Source string
}

// ListenerError records one listener failure during a publish.
type ListenerError struct {
	ListenerID string `json:"listener_id"`
	Error      string `json:"error"`
	Stack      string `json:"stack,omitempty"`
}

// PublishResult reports the outcome of one publish call. Listener failures
// are surfaced here rather than returned as errors: publishers that need
// strict failure semantics must inspect Errors.
type PublishResult struct {
	EventID           string
	ListenersNotified int
	Errors            []ListenerError
	ExecutionTime     time.Duration
}

// EventBusStats is a read-only snapshot of bus state.
type EventBusStats struct {
	TotalListeners int
	EventTypes     int
	ListenerCounts map[string]int
	PublishCounts  map[string]int64
	HistorySize    int
}

// UnsubscribeFn removes the subscription it was returned for. It reports
// false when the listener was already gone.
type UnsubscribeFn func() bool

// EventBusConfig is the data definition for the EventBus system.
type EventBusConfig struct {
	MaxHistorySize int  `json:"max_history_size,omitempty"`
	DebugMode      bool `json:"debug_mode,omitempty"`
}

// DefaultEventBusConfig returns the stock bus configuration.
func DefaultEventBusConfig() *EventBusConfig {
	return &EventBusConfig{MaxHistorySize: 100}
}

// EventBus delivers published events synchronously and in-process to
// subscribers, isolating publishers from subscriber failures and subscribers
// from each other. It has no knowledge of tournaments or games.
type EventBus interface {
	System

	// Subscribe registers a callback for an event type and returns a
	// function that removes exactly this subscription. The event type must
	// be non-empty and the callback non-nil.
	Subscribe(eventType string, callback EventCallback, opts *SubscribeOptions) (UnsubscribeFn, error)

	// Once registers a callback that fires at most one time.
	Once(eventType string, callback EventCallback) (UnsubscribeFn, error)

	// Unsubscribe removes a listener by id. Unknown types or ids report
	// false with a warning log, never an error.
	Unsubscribe(eventType, listenerID string) bool

	// Publish delivers an event to every current listener of the type,
	// synchronously and in priority order. Returns an error only for an
	// invalid event type.
	Publish(eventType string, data interface{}, opts *PublishOptions) (*PublishResult, error)

	// Clear removes all listeners for one event type, or every listener
	// when eventType is empty.
	Clear(eventType string)

	// GetStats returns a snapshot of listener and publish counts.
	GetStats() *EventBusStats

	// GetHistory returns up to limit most recent events, oldest first.
	GetHistory(limit int) []Event

	// SetDebugMode toggles verbose logging. Delivery semantics are
	// unaffected.
	SetDebugMode(enabled bool)
}
