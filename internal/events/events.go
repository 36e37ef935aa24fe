package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mlops-tools/dfa-wizard/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventLog            EventType = "log"
	EventStateChange    EventType = "state_change"
	EventRequestMessage EventType = "request_message"

	// Job lifecycle events published once the server acknowledged the request.
	EventJobCreated EventType = "job_created"
	EventJobStarted EventType = "job_started"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	JobID   string
	Error   error
}

// StateChangeEvent is published after every wizard transition.
type StateChangeEvent struct {
	BaseEvent
	Action       string // name of the transition that ran
	Mode         string // "simple" or "advanced"
	IsJobCreated bool
	IsJobStarted bool
	Problems     int // validation problems left in the draft
}

// RequestMessageEvent carries a notice appended to the wizard's request
// messages.
type RequestMessageEvent struct {
	BaseEvent
	Kind    string // "info" or "error"
	Message string
	Error   string
}

// JobEvent reports a created or started job.
type JobEvent struct {
	BaseEvent
	JobID string
	Node  string // only set for started jobs
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking. Events for a
// subscriber whose buffer is full are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message, jobID string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{
			EventType: EventLog,
			Time:      time.Now(),
		},
		Level:   level,
		Message: message,
		JobID:   jobID,
		Error:   err,
	})
}

// PublishStateChange is a convenience method for publishing state change events
func (eb *EventBus) PublishStateChange(action, mode string, created, started bool, problems int) {
	eb.Publish(&StateChangeEvent{
		BaseEvent: BaseEvent{
			EventType: EventStateChange,
			Time:      time.Now(),
		},
		Action:       action,
		Mode:         mode,
		IsJobCreated: created,
		IsJobStarted: started,
		Problems:     problems,
	})
}

// PublishRequestMessage is a convenience method for publishing request messages
func (eb *EventBus) PublishRequestMessage(kind, message, errText string, at time.Time) {
	eb.Publish(&RequestMessageEvent{
		BaseEvent: BaseEvent{
			EventType: EventRequestMessage,
			Time:      at,
		},
		Kind:    kind,
		Message: message,
		Error:   errText,
	})
}

// PublishJob is a convenience method for publishing job lifecycle events
func (eb *EventBus) PublishJob(eventType EventType, jobID, node string) {
	eb.Publish(&JobEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Time:      time.Now(),
		},
		JobID: jobID,
		Node:  node,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
