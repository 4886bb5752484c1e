package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewNATSSenderRequiresURL(t *testing.T) {
	s, err := NewNATSSender(NATSConfig{SubjectPrefix: "events"}, nil)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestNewNATSSenderFailsWhenUnreachable(t *testing.T) {
	s, err := NewNATSSender(NATSConfig{
		URL:     "nats://127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	}, nil)
	assert.Error(t, err)
	assert.Nil(t, s)
}
