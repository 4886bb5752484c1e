package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/scaffold-api/internal/platform/jsoncodec"
)

// Event is a named payload destined for the external event system.
type Event struct {
	// ID is a unique identifier for this event. Receivers may use it to
	// deduplicate.
	ID uuid.UUID

	// Name is the event type, part of the wire contract with consumers
	// (for example "test/hello.world").
	Name string

	// Data is the event payload.
	Data map[string]any

	// Timestamp is when the event was created.
	Timestamp time.Time
}

// wireEvent is the JSON form of an Event.
type wireEvent struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
	TS   int64          `json:"ts"`
}

// NewEvent creates an Event with a fresh id. A nil payload is sent as an
// empty object.
func NewEvent(name string, data map[string]any) *Event {
	if data == nil {
		data = map[string]any{}
	}
	return &Event{
		ID:        uuid.New(),
		Name:      name,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// MarshalJSON encodes the event in its wire form.
func (e *Event) MarshalJSON() ([]byte, error) {
	return jsoncodec.Marshal(wireEvent{
		ID:   e.ID.String(),
		Name: e.Name,
		Data: e.Data,
		TS:   e.Timestamp.UnixMilli(),
	})
}

// UnmarshalJSON decodes the wire form.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := jsoncodec.Unmarshal(data, &w); err != nil {
		return err
	}
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return err
	}
	e.ID = id
	e.Name = w.Name
	e.Data = w.Data
	e.Timestamp = time.UnixMilli(w.TS)
	return nil
}

var _ json.Marshaler = (*Event)(nil)

// Ack acknowledges a dispatched event.
type Ack struct {
	// IDs lists the ids of the accepted events.
	IDs []string `json:"ids"`
}

// Dispatcher sends named events. Implementations are safe for concurrent use.
type Dispatcher interface {
	// Dispatch sends one event and returns once the external system accepted
	// or rejected it. Failures are returned as *DispatchError.
	Dispatch(ctx context.Context, name string, payload map[string]any) (Ack, error)
}

// Sender is the client to the external event system. A single Sender is
// shared by every in-flight call, so implementations must be safe for
// concurrent use.
type Sender interface {
	// Send performs exactly one outbound delivery attempt for evt.
	Send(ctx context.Context, evt *Event) error

	// Close releases the underlying connection.
	Close() error
}

// EventHandler processes events delivered to a DevConsumer.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}
