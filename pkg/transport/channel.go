package transport

import (
	"fmt"
	"time"

	"github.com/mumoshu/itest/pkg/api/transport"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DefaultTimeout = 5 * time.Second

// ChannelEndpoint is an in-memory queue. Messages sent to it are received in
// FIFO order by whoever calls Receive next.
type ChannelEndpoint struct {
	name    string
	timeout time.Duration
	queue   chan *transport.Message
}

func NewChannelEndpoint(name string, timeout time.Duration, capacity int) *ChannelEndpoint {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &ChannelEndpoint{
		name:    name,
		timeout: timeout,
		queue:   make(chan *transport.Message, capacity),
	}
}

func (e *ChannelEndpoint) Name() string {
	return e.name
}

func (e *ChannelEndpoint) DefaultTimeout() time.Duration {
	return e.timeout
}

func (e *ChannelEndpoint) Send(msg *transport.Message) error {
	if msg == nil {
		return errors.New("unable to send nil message")
	}
	select {
	case e.queue <- msg:
		log.WithFields(log.Fields{"endpoint": e.name}).Debugf("sent message %s", msg.ID)
		return nil
	default:
		return fmt.Errorf("endpoint '%s' is full: capacity %d", e.name, cap(e.queue))
	}
}

func (e *ChannelEndpoint) Receive(timeout time.Duration) (*transport.Message, error) {
	if timeout <= 0 {
		timeout = e.timeout
	}

	log.WithFields(log.Fields{"endpoint": e.name}).Debugf("receiving message, timeout %s", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-e.queue:
		log.WithFields(log.Fields{"endpoint": e.name}).Infof("received message from endpoint '%s'", e.name)
		return msg, nil
	case <-timer.C:
		return nil, &transport.TimeoutError{Endpoint: e.name, Timeout: timeout}
	}
}

// Len reports the number of queued messages.
func (e *ChannelEndpoint) Len() int {
	return len(e.queue)
}
