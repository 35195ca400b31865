package itest

import (
	"sort"

	log "github.com/sirupsen/logrus"
)

type CreateVariablesActionLoader struct{}

func (l CreateVariablesActionLoader) Key() string {
	return "createVariables"
}

func (l CreateVariablesActionLoader) LoadAction(def ActionDef) (Action, error) {
	vars := map[string]interface{}{}
	if err := def.Decode(l.Key(), "", &vars); err != nil {
		return nil, err
	}
	return &CreateVariablesAction{ActionMeta: def.Meta(), Variables: vars}, nil
}

// CreateVariablesAction sets variables. String values are resolved first.
type CreateVariablesAction struct {
	ActionMeta
	Variables map[string]interface{}
}

func (a *CreateVariablesAction) Execute(ctx *Context) error {
	names := make([]string, 0, len(a.Variables))
	for n := range a.Variables {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		v := a.Variables[n]
		if s, ok := v.(string); ok {
			resolved, err := ctx.ResolveDynamicContent(s)
			if err != nil {
				return err
			}
			v = resolved
		}
		log.WithFields(log.Fields{"action": a.Name}).Debugf("setting variable: %s = %v", n, v)
		ctx.SetVariable(n, v)
	}
	return nil
}
