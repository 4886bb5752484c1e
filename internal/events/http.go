package events

import (
	"bytes"
	"errors"
	"log/slog"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-http/v2/pkg/http"
	"github.com/ThreeDotsLabs/watermill/message"
)

// HTTPConfig configures the HTTP event API sender.
type HTTPConfig struct {
	// BaseURL is the event API root, for example "https://inn.gs".
	BaseURL string
	// EventKey authenticates the sender; it is the last path segment.
	EventKey string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *nethttp.Client
}

// NewHTTPSender sends each event as a single-element JSON array in one
// POST {BaseURL}/e/{EventKey} request. Responses with status 400 or above
// are failures.
func NewHTTPSender(cfg HTTPConfig, logger *slog.Logger) (*PublisherSender, error) {
	endpoint, err := eventEndpoint(cfg.BaseURL, cfg.EventKey)
	if err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		client = &nethttp.Client{Timeout: cfg.Timeout}
	}

	publisher, err := http.NewPublisher(
		http.PublisherConfig{
			MarshalMessageFunc: func(_ string, msg *message.Message) (*nethttp.Request, error) {
				return marshalEventRequest(endpoint, msg)
			},
			Client: client,
		},
		watermill.NewSlogLogger(loggerOrDefault(logger).With("component", "event_http_sender")),
	)
	if err != nil {
		return nil, err
	}

	return NewPublisherSender(publisher, func(name string) string { return name }), nil
}

func eventEndpoint(baseURL, eventKey string) (string, error) {
	if baseURL == "" {
		return "", errors.New("events: http base url is required")
	}
	if eventKey == "" {
		return "", errors.New("events: http event key is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return "", err
	}
	return strings.TrimRight(baseURL, "/") + "/e/" + url.PathEscape(eventKey), nil
}

func marshalEventRequest(endpoint string, msg *message.Message) (*nethttp.Request, error) {
	body := make([]byte, 0, len(msg.Payload)+2)
	body = append(body, '[')
	body = append(body, msg.Payload...)
	body = append(body, ']')

	req, err := nethttp.NewRequestWithContext(msg.Context(), nethttp.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Id", msg.UUID)
	return req, nil
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
