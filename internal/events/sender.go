package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Metadata keys set on outgoing Watermill messages.
const (
	MetadataEventName = "event_name"
	MetadataEventTS   = "event_ts"
)

// TopicFunc maps an event name to the publisher topic.
type TopicFunc func(eventName string) string

// PublisherSender sends events through a Watermill publisher, one message per
// event, using the event id as the message UUID.
type PublisherSender struct {
	publisher message.Publisher
	topic     TopicFunc

	mu     sync.RWMutex
	closed bool
}

// NewPublisherSender wraps publisher. Each event is published to topic(name).
func NewPublisherSender(publisher message.Publisher, topic TopicFunc) *PublisherSender {
	return &PublisherSender{publisher: publisher, topic: topic}
}

// Send implements Sender.
func (s *PublisherSender) Send(ctx context.Context, evt *Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSenderClosed
	}

	msg, err := toMessage(ctx, evt)
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(s.topic(evt.Name), msg); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Name, err)
	}
	return nil
}

// Close implements Sender.
func (s *PublisherSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.publisher.Close()
}

func toMessage(ctx context.Context, evt *Event) (*message.Message, error) {
	payload, err := evt.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", evt.Name, err)
	}

	msg := message.NewMessage(evt.ID.String(), payload)
	msg.Metadata.Set(MetadataEventName, evt.Name)
	msg.Metadata.Set(MetadataEventTS, fmt.Sprintf("%d", evt.Timestamp.UnixMilli()))
	msg.SetContext(ctx)
	return msg, nil
}

// fromMessage decodes a message produced by toMessage.
func fromMessage(msg *message.Message) (*Event, error) {
	var evt Event
	if err := evt.UnmarshalJSON(msg.Payload); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return &evt, nil
}
