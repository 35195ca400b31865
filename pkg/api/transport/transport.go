package transport

import (
	"fmt"
	"time"
)

type Message struct {
	ID      string
	Headers map[string]interface{}
	Payload string
}

func NewMessage(payload string) *Message {
	return &Message{
		Headers: map[string]interface{}{},
		Payload: payload,
	}
}

func (m *Message) Header(name string) (interface{}, bool) {
	if m.Headers == nil {
		return nil, false
	}
	v, ok := m.Headers[name]
	return v, ok
}

// Consumer blocks in Receive until a message arrives or the timeout elapses.
// A Consumer must return a *TimeoutError in the latter case.
type Consumer interface {
	Receive(timeout time.Duration) (*Message, error)
}

type Producer interface {
	Send(msg *Message) error
}

type Endpoint interface {
	Consumer
	Producer
	Name() string
	// DefaultTimeout is used by receiving actions that don't set their own timeout.
	DefaultTimeout() time.Duration
}

type TimeoutError struct {
	Endpoint string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("action timed out while receiving message from endpoint '%s' after %s", e.Endpoint, e.Timeout)
}
