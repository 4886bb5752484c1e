package events

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/nats-io/nats.go"
)

// NATSConfig configures the NATS sender.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	// Timeout bounds connection attempts. Zero keeps the nats.go default.
	Timeout time.Duration
}

// NewNATSSender publishes each event on core NATS (JetStream disabled) to
// the subject returned by Subject.
func NewNATSSender(cfg NATSConfig, logger *slog.Logger) (*PublisherSender, error) {
	if cfg.URL == "" {
		return nil, errors.New("events: nats url is required")
	}

	opts := []nats.Option{nats.Name("scaffold-api")}
	if cfg.Timeout > 0 {
		opts = append(opts, nats.Timeout(cfg.Timeout))
	}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: opts,
			Marshaler:   &wmnats.NATSMarshaler{},
			JetStream:   wmnats.JetStreamConfig{Disabled: true},
		},
		watermill.NewSlogLogger(loggerOrDefault(logger).With("component", "event_nats_sender")),
	)
	if err != nil {
		return nil, err
	}

	prefix := cfg.SubjectPrefix
	return NewPublisherSender(publisher, func(name string) string {
		return Subject(prefix, name)
	}), nil
}

// Subject maps an event name to a NATS subject: "test/hello.world" with
// prefix "events" becomes "events.test.hello.world".
func Subject(prefix, name string) string {
	subject := strings.ReplaceAll(name, "/", ".")
	if prefix == "" {
		return subject
	}
	return strings.TrimRight(prefix, ".") + "." + subject
}
