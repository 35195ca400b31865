package itest

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/mumoshu/itest/pkg/api/transport"
	log "github.com/sirupsen/logrus"
)

// Listener observes the lifecycle of test cases and their actions.
// A returned error is logged by the dispatcher and otherwise ignored.
type Listener interface {
	OnTestStart(test *TestCase) error
	OnTestActionStart(test *TestCase, action Action) error
	OnTestActionFinish(test *TestCase, action Action) error
	OnTestActionSkipped(test *TestCase, action Action) error
	OnTestSuccess(test *TestCase) error
	OnTestFailure(test *TestCase, cause error) error
	OnTestSkipped(test *TestCase) error
	OnTestFinish(test *TestCase) error
}

// ListenerAdapter implements every Listener callback as a no-op. Embed it to
// implement only the callbacks you care about.
type ListenerAdapter struct{}

func (ListenerAdapter) OnTestStart(*TestCase) error                 { return nil }
func (ListenerAdapter) OnTestActionStart(*TestCase, Action) error   { return nil }
func (ListenerAdapter) OnTestActionFinish(*TestCase, Action) error  { return nil }
func (ListenerAdapter) OnTestActionSkipped(*TestCase, Action) error { return nil }
func (ListenerAdapter) OnTestSuccess(*TestCase) error               { return nil }
func (ListenerAdapter) OnTestFailure(*TestCase, error) error        { return nil }
func (ListenerAdapter) OnTestSkipped(*TestCase) error               { return nil }
func (ListenerAdapter) OnTestFinish(*TestCase) error                { return nil }

type MessageListener interface {
	OnInboundMessage(msg *transport.Message, ctx *Context)
	OnOutboundMessage(msg *transport.Message, ctx *Context)
}

// Listeners dispatches lifecycle events to the registered listeners,
// synchronously and in registration order. It may be shared by concurrent runs.
type Listeners struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewListeners(listeners ...Listener) *Listeners {
	return &Listeners{listeners: append([]Listener{}, listeners...)}
}

func (l *Listeners) Add(listener Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, listener)
}

func (l *Listeners) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.listeners)
}

func (l *Listeners) TestStart(test *TestCase) {
	l.dispatch("onTestStart", test, func(o Listener) error { return o.OnTestStart(test) })
}

func (l *Listeners) TestActionStart(test *TestCase, action Action) {
	l.dispatch("onTestActionStart", test, func(o Listener) error { return o.OnTestActionStart(test, action) })
}

func (l *Listeners) TestActionFinish(test *TestCase, action Action) {
	l.dispatch("onTestActionFinish", test, func(o Listener) error { return o.OnTestActionFinish(test, action) })
}

func (l *Listeners) TestActionSkipped(test *TestCase, action Action) {
	l.dispatch("onTestActionSkipped", test, func(o Listener) error { return o.OnTestActionSkipped(test, action) })
}

func (l *Listeners) TestSuccess(test *TestCase) {
	l.dispatch("onTestSuccess", test, func(o Listener) error { return o.OnTestSuccess(test) })
}

func (l *Listeners) TestFailure(test *TestCase, cause error) {
	l.dispatch("onTestFailure", test, func(o Listener) error { return o.OnTestFailure(test, cause) })
}

func (l *Listeners) TestSkipped(test *TestCase) {
	l.dispatch("onTestSkipped", test, func(o Listener) error { return o.OnTestSkipped(test) })
}

func (l *Listeners) TestFinish(test *TestCase) {
	l.dispatch("onTestFinish", test, func(o Listener) error { return o.OnTestFinish(test) })
}

func (l *Listeners) snapshot() []Listener {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Listener{}, l.listeners...)
}

func (l *Listeners) dispatch(event string, test *TestCase, fn func(Listener) error) {
	var result *multierror.Error

	for _, o := range l.snapshot() {
		if err := notify(o, fn); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		log.WithFields(log.Fields{"event": event, "test": test.Name()}).Warnf("listener failed: %v", err)
	}
}

func notify(o Listener, fn func(Listener) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener %T panicked: %v", o, r)
		}
	}()
	return fn(o)
}
