package itest

type FailActionLoader struct{}

func (l FailActionLoader) Key() string {
	return "fail"
}

func (l FailActionLoader) LoadAction(def ActionDef) (Action, error) {
	a := &FailAction{ActionMeta: def.Meta()}
	if err := def.Decode(l.Key(), "message", a); err != nil {
		return nil, err
	}
	return a, nil
}

// FailAction fails the test with a message.
type FailAction struct {
	ActionMeta `mapstructure:",squash"`
	Message    string `mapstructure:"message"`
}

func (a *FailAction) Execute(ctx *Context) error {
	msg, err := ctx.ResolveDynamicContent(a.Message)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Generated error to interrupt test execution"
	}
	return NewTestFailure(nil, "%s", msg)
}
