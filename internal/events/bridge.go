package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/phrazzld/scaffold-api/internal/redact"
)

// Bridge is the Dispatcher used by procedures. Every Dispatch call makes
// exactly one Send call on the shared Sender; nothing is retried, buffered,
// batched or deduplicated here.
type Bridge struct {
	sender Sender
	logger *slog.Logger
}

// NewBridge creates a Bridge over sender.
func NewBridge(sender Sender, logger *slog.Logger) (*Bridge, error) {
	if sender == nil {
		return nil, errors.New("events: sender is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		sender: sender,
		logger: logger.With("component", "event_bridge"),
	}, nil
}

// Dispatch implements Dispatcher.
func (b *Bridge) Dispatch(ctx context.Context, name string, payload map[string]any) (Ack, error) {
	if name == "" {
		return Ack{}, &DispatchError{
			EventName: name,
			Err:       fmt.Errorf("%w: event name is required", ErrInvalidEvent),
		}
	}

	evt := NewEvent(name, payload)
	id := evt.ID.String()
	start := time.Now()

	if err := b.sender.Send(ctx, evt); err != nil {
		b.logger.ErrorContext(ctx, "event dispatch failed",
			"event_name", name,
			"event_id", id,
			"payload_keys", payloadKeys(payload),
			"duration", time.Since(start),
			"error", redact.Error(err))
		return Ack{}, &DispatchError{EventName: name, EventID: id, Err: err}
	}

	b.logger.DebugContext(ctx, "event dispatched",
		"event_name", name,
		"event_id", id,
		"payload_keys", payloadKeys(payload),
		"duration", time.Since(start))

	return Ack{IDs: []string{id}}, nil
}

// payloadKeys lists the payload's field names; values may hold personal data
// and are never logged.
func payloadKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
