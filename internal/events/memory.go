package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// MemoryTopic carries every event on the in-memory channel.
const MemoryTopic = "events"

// NewMemorySender returns a sender publishing to an in-process Go channel and
// the subscriber side of that channel, for use with a DevConsumer.
func NewMemorySender(logger *slog.Logger) (*PublisherSender, message.Subscriber) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(loggerOrDefault(logger).With("component", "event_memory_sender")),
	)
	sender := NewPublisherSender(pubSub, func(string) string { return MemoryTopic })
	return sender, pubSub
}

// DevConsumer stands in for the external event system during local
// development: it drains the in-memory channel and hands every event to the
// registered handlers.
type DevConsumer struct {
	subscriber message.Subscriber
	handlers   []EventHandler
	mu         sync.RWMutex
	logger     *slog.Logger
}

// NewDevConsumer creates a consumer reading from subscriber.
func NewDevConsumer(subscriber message.Subscriber, logger *slog.Logger) *DevConsumer {
	return &DevConsumer{
		subscriber: subscriber,
		handlers:   make([]EventHandler, 0),
		logger:     loggerOrDefault(logger).With("component", "event_dev_consumer"),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (c *DevConsumer) RegisterHandler(handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
	c.logger.Debug("registered new event handler", "handler_count", len(c.handlers))
}

// Run consumes events until ctx is cancelled or the subscriber closes.
func (c *DevConsumer) Run(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, MemoryTopic)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.consume(msg)
		}
	}
}

func (c *DevConsumer) consume(msg *message.Message) {
	evt, err := fromMessage(msg)
	if err != nil {
		c.logger.Error("dropping undecodable event", "error", err, "message_uuid", msg.UUID)
		msg.Ack()
		return
	}

	c.logger.Info("event received",
		"event_id", evt.ID,
		"event_name", evt.Name,
		"payload_keys", payloadKeys(evt.Data))

	// Handler failures are logged by handle; a nack would make the channel
	// redeliver forever.
	c.handle(msg.Context(), evt)
	msg.Ack()
}

// handle passes evt to every handler and logs failures. A failing handler
// does not stop the others.
func (c *DevConsumer) handle(ctx context.Context, evt *Event) {
	c.mu.RLock()
	handlers := make([]EventHandler, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.RUnlock()

	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, evt); err != nil {
			c.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", evt.ID,
				"event_name", evt.Name)
		}
	}
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}
