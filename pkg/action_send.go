package itest

import (
	"sort"

	"github.com/google/uuid"
	"github.com/mumoshu/itest/pkg/api/transport"
	log "github.com/sirupsen/logrus"
)

type SendActionLoader struct{}

func (l SendActionLoader) Key() string {
	return "send"
}

func (l SendActionLoader) LoadAction(def ActionDef) (Action, error) {
	a := &SendAction{ActionMeta: def.Meta()}
	if err := def.Decode(l.Key(), "", a); err != nil {
		return nil, err
	}
	if a.Endpoint == "" {
		return nil, NewFatalSetupError(nil, "send action %s is missing an endpoint", a.Name)
	}
	return a, nil
}

// SendAction sends a message through an endpoint. The payload and string
// headers are resolved against the context.
type SendAction struct {
	ActionMeta `mapstructure:",squash"`
	Endpoint   string                 `mapstructure:"endpoint"`
	Payload    string                 `mapstructure:"payload"`
	Headers    map[string]interface{} `mapstructure:"headers"`
}

func (a *SendAction) Execute(ctx *Context) error {
	endpoint, err := ctx.Endpoint(a.Endpoint)
	if err != nil {
		return err
	}

	msg, err := a.buildMessage(ctx)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"action": a.Name, "endpoint": endpoint.Name()}).Infof("sending message %s", msg.ID)

	ctx.OnOutboundMessage(msg)

	if err := endpoint.Send(msg); err != nil {
		return NewTestFailure(err, "failed sending message to endpoint '%s'", endpoint.Name())
	}

	return nil
}

func (a *SendAction) buildMessage(ctx *Context) (*transport.Message, error) {
	payload, err := ctx.ResolveDynamicContent(a.Payload)
	if err != nil {
		return nil, err
	}

	msg := transport.NewMessage(payload)
	msg.ID = uuid.New().String()

	names := make([]string, 0, len(a.Headers))
	for n := range a.Headers {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		v := a.Headers[n]
		if s, ok := v.(string); ok {
			resolved, err := ctx.ResolveDynamicContent(s)
			if err != nil {
				return nil, err
			}
			v = resolved
		}
		msg.Headers[n] = v
	}

	return msg, nil
}
