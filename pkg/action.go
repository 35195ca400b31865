package itest

import (
	"github.com/spf13/cast"
)

// Action is a single executable step of a test case.
type Action interface {
	GetName() string
	// IsDisabled reports whether the action must be skipped in the current run.
	// A condition that cannot be evaluated is an error, never a skip.
	IsDisabled(ctx *Context) (bool, error)
	// Execute runs the action. Any error fails the test.
	Execute(ctx *Context) error
}

// ActionMeta carries the fields every built-in action shares.
type ActionMeta struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	// Disabled is resolved against the context and parsed as a boolean.
	Disabled string `mapstructure:"disabled"`
}

func (m ActionMeta) GetName() string {
	return m.Name
}

func (m ActionMeta) IsDisabled(ctx *Context) (bool, error) {
	if m.Disabled == "" {
		return false, nil
	}

	resolved, err := ctx.ResolveDynamicContent(m.Disabled)
	if err != nil {
		return false, NewFatalSetupError(err, "unable to evaluate disabled condition of action '%s'", m.Name)
	}

	disabled, err := cast.ToBoolE(resolved)
	if err != nil {
		return false, NewFatalSetupError(err, "disabled condition %q of action '%s' is not a boolean", resolved, m.Name)
	}

	return disabled, nil
}

type funcAction struct {
	ActionMeta
	fn func(ctx *Context) error
}

// NewAction wraps fn as an always-enabled action.
func NewAction(name string, fn func(ctx *Context) error) Action {
	return funcAction{
		ActionMeta: ActionMeta{Name: name},
		fn:         fn,
	}
}

func (a funcAction) Execute(ctx *Context) error {
	return a.fn(ctx)
}
