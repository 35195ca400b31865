package itest

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	log "github.com/sirupsen/logrus"
)

type SleepActionLoader struct{}

func (l SleepActionLoader) Key() string {
	return "sleep"
}

func (l SleepActionLoader) LoadAction(def ActionDef) (Action, error) {
	a := &SleepAction{ActionMeta: def.Meta()}
	if err := def.Decode(l.Key(), "duration", a); err != nil {
		return nil, err
	}
	return a, nil
}

// SleepAction pauses the test. Duration is either a Go duration like 1.5s or
// a number of milliseconds.
type SleepAction struct {
	ActionMeta `mapstructure:",squash"`
	Duration   string `mapstructure:"duration"`
}

func (a *SleepAction) Execute(ctx *Context) error {
	raw, err := ctx.ResolveDynamicContent(a.Duration)
	if err != nil {
		return err
	}

	d, err := parseDuration(raw)
	if err != nil {
		return NewFatalSetupError(err, "invalid sleep duration '%s'", raw)
	}

	log.WithFields(log.Fields{"action": a.Name}).Infof("sleeping %v", d)
	time.Sleep(d)
	return nil
}

// parseDuration reads plain numbers as milliseconds.
func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return cast.ToDurationE(s)
}
