package tournament

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

var _ EventBus = (*LocalEventBus)(nil)

type listener struct {
	id       string
	callback EventCallback
	once     bool
	priority int
}

// LocalEventBus is an in-process EventBus. Delivery is synchronous: Publish
// returns only after every listener has run. Listeners may subscribe,
// unsubscribe and publish from inside their callbacks.
type LocalEventBus struct {
	sync.Mutex

	config *EventBusConfig
	logger Logger
	clock  Clock

	listeners     map[string][]*listener
	history       []Event
	publishCounts map[string]int64
	debugMode     bool
}

// NewLocalEventBus creates an event bus with the given config.
func NewLocalEventBus(config *EventBusConfig, logger Logger, clock Clock) *LocalEventBus {
	if config == nil {
		config = DefaultEventBusConfig()
	}
	if config.MaxHistorySize <= 0 {
		config.MaxHistorySize = 100
	}
	return &LocalEventBus{
		config:        config,
		logger:        logger,
		clock:         clock,
		listeners:     make(map[string][]*listener),
		publishCounts: make(map[string]int64),
		debugMode:     config.DebugMode,
	}
}

func (b *LocalEventBus) GetType() SystemType {
	return SystemTypeEventBus
}

func (b *LocalEventBus) GetConfig() any {
	return b.config
}

func (b *LocalEventBus) Subscribe(eventType string, callback EventCallback, opts *SubscribeOptions) (UnsubscribeFn, error) {
	if eventType == "" {
		return nil, ErrEventTypeInvalid
	}
	if callback == nil {
		return nil, ErrCallbackNil
	}

	l := &listener{
		id:       "listener-" + uuid.NewString(),
		callback: callback,
	}
	if opts != nil {
		l.once = opts.Once
		l.priority = opts.Priority
	}

	b.Lock()
	bucket := b.listeners[eventType]
	// Insert before the first listener with a strictly lower priority so
	// equal priorities keep subscription order.
	idx := len(bucket)
	for i, existing := range bucket {
		if existing.priority < l.priority {
			idx = i
			break
		}
	}
	bucket = append(bucket, nil)
	copy(bucket[idx+1:], bucket[idx:])
	bucket[idx] = l
	b.listeners[eventType] = bucket
	b.Unlock()

	if b.debugMode {
		b.logger.Info("event bus: subscribed %s to %q (priority=%d once=%v)", l.id, eventType, l.priority, l.once)
	}

	return func() bool {
		return b.Unsubscribe(eventType, l.id)
	}, nil
}

func (b *LocalEventBus) Once(eventType string, callback EventCallback) (UnsubscribeFn, error) {
	return b.Subscribe(eventType, callback, &SubscribeOptions{Once: true})
}

func (b *LocalEventBus) Unsubscribe(eventType, listenerID string) bool {
	b.Lock()
	bucket, ok := b.listeners[eventType]
	if ok {
		for i, l := range bucket {
			if l.id == listenerID {
				b.listeners[eventType] = append(bucket[:i], bucket[i+1:]...)
				if len(b.listeners[eventType]) == 0 {
					delete(b.listeners, eventType)
				}
				b.Unlock()
				if b.debugMode {
					b.logger.Info("event bus: unsubscribed %s from %q", listenerID, eventType)
				}
				return true
			}
		}
	}
	b.Unlock()

	b.logger.Warn("event bus: unsubscribe for unknown listener %s on %q", listenerID, eventType)
	return false
}

func (b *LocalEventBus) Publish(eventType string, data interface{}, opts *PublishOptions) (*PublishResult, error) {
	if eventType == "" {
		return nil, ErrEventTypeInvalid
	}

	start := b.clock.Now()
	event := Event{
		Type:      eventType,
		Data:      data,
		Timestamp: start.UnixMilli(),
		ID:        "event-" + uuid.NewString(),
	}
	if opts != nil {
		event.Source = opts.Source
	}

	b.Lock()
	b.history = append(b.history, event)
	if excess := len(b.history) - b.config.MaxHistorySize; excess > 0 {
		b.history = b.history[excess:]
	}
	b.publishCounts[eventType]++
	// Snapshot so listeners can mutate subscriptions, or publish again,
	// while this delivery is in flight.
	snapshot := make([]*listener, len(b.listeners[eventType]))
	copy(snapshot, b.listeners[eventType])
	b.Unlock()

	result := &PublishResult{EventID: event.ID}
	var fired []*listener
	for _, l := range snapshot {
		err := b.invoke(l, event)
		result.ListenersNotified++
		if err != nil {
			b.logger.Error("event bus: listener %s failed on %q: %v", l.id, eventType, err.Error)
			result.Errors = append(result.Errors, *err)
		}
		if l.once {
			fired = append(fired, l)
		}
	}

	if len(fired) > 0 {
		b.Lock()
		bucket := b.listeners[eventType]
		for _, f := range fired {
			for i, l := range bucket {
				if l == f {
					bucket = append(bucket[:i], bucket[i+1:]...)
					break
				}
			}
		}
		if len(bucket) == 0 {
			delete(b.listeners, eventType)
		} else {
			b.listeners[eventType] = bucket
		}
		b.Unlock()
	}

	result.ExecutionTime = b.clock.Now().Sub(start)

	if b.debugMode {
		b.logger.Info("event bus: published %q to %d listeners in %s", eventType, result.ListenersNotified, result.ExecutionTime)
	}

	return result, nil
}

// invoke runs one callback, converting a panic into a ListenerError.
func (b *LocalEventBus) invoke(l *listener, event Event) (lerr *ListenerError) {
	defer func() {
		if r := recover(); r != nil {
			lerr = &ListenerError{
				ListenerID: l.id,
				Error:      fmt.Sprintf("panic: %v", r),
				Stack:      string(debug.Stack()),
			}
		}
	}()
	if err := l.callback(event); err != nil {
		return &ListenerError{ListenerID: l.id, Error: err.Error()}
	}
	return nil
}

func (b *LocalEventBus) Clear(eventType string) {
	b.Lock()
	if eventType == "" {
		b.listeners = make(map[string][]*listener)
	} else {
		delete(b.listeners, eventType)
	}
	b.Unlock()

	if b.debugMode {
		if eventType == "" {
			b.logger.Info("event bus: cleared all listeners")
		} else {
			b.logger.Info("event bus: cleared listeners for %q", eventType)
		}
	}
}

func (b *LocalEventBus) GetStats() *EventBusStats {
	b.Lock()
	defer b.Unlock()

	stats := &EventBusStats{
		EventTypes:     len(b.listeners),
		ListenerCounts: make(map[string]int, len(b.listeners)),
		PublishCounts:  make(map[string]int64, len(b.publishCounts)),
		HistorySize:    len(b.history),
	}
	for eventType, bucket := range b.listeners {
		stats.ListenerCounts[eventType] = len(bucket)
		stats.TotalListeners += len(bucket)
	}
	for eventType, count := range b.publishCounts {
		stats.PublishCounts[eventType] = count
	}
	return stats
}

func (b *LocalEventBus) GetHistory(limit int) []Event {
	if limit <= 0 {
		limit = 10
	}

	b.Lock()
	defer b.Unlock()

	if limit > len(b.history) {
		limit = len(b.history)
	}
	out := make([]Event, limit)
	copy(out, b.history[len(b.history)-limit:])
	return out
}

func (b *LocalEventBus) SetDebugMode(enabled bool) {
	b.Lock()
	b.debugMode = enabled
	b.Unlock()
}
