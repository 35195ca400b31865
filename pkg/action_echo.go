package itest

import (
	log "github.com/sirupsen/logrus"
)

type EchoActionLoader struct{}

func (l EchoActionLoader) Key() string {
	return "echo"
}

func (l EchoActionLoader) LoadAction(def ActionDef) (Action, error) {
	a := &EchoAction{ActionMeta: def.Meta()}
	if err := def.Decode(l.Key(), "message", a); err != nil {
		return nil, err
	}
	return a, nil
}

// EchoAction logs a message.
type EchoAction struct {
	ActionMeta `mapstructure:",squash"`
	Message    string `mapstructure:"message"`
}

func (a *EchoAction) Execute(ctx *Context) error {
	msg, err := ctx.ResolveDynamicContent(a.Message)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"action": a.Name}).Info(msg)
	return nil
}
