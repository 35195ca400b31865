package itest

import (
	"path"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Hook is a setup or teardown sequence run around every matching test case.
type Hook interface {
	ShouldExecute(testName, packageName string, groups []string) bool
	Execute(ctx *Context) error
}

// Sequence is a named list of actions. It applies to tests whose name and
// package match the glob patterns and that belong to one of the groups.
// Empty patterns and an empty group list match everything.
type Sequence struct {
	Name     string
	Tests    string
	Packages string
	Groups   []string
	Actions  []Action
}

func (s *Sequence) ShouldExecute(testName, packageName string, groups []string) bool {
	if !globMatch(s.Tests, testName) || !globMatch(s.Packages, packageName) {
		return false
	}

	if len(s.Groups) == 0 {
		return true
	}

	for _, want := range s.Groups {
		for _, g := range groups {
			if want == g {
				return true
			}
		}
	}

	return false
}

func (s *Sequence) Execute(ctx *Context) error {
	logger := log.WithFields(log.Fields{"sequence": s.Name})

	for _, a := range s.Actions {
		disabled, err := a.IsDisabled(ctx)
		if err != nil {
			return errors.Wrapf(err, "sequence %s failed in action %s", s.Name, a.GetName())
		}
		if disabled {
			logger.Debugf("skipping disabled action %s", a.GetName())
			continue
		}
		if err := execute(a, ctx); err != nil {
			return errors.Wrapf(err, "sequence %s failed in action %s", s.Name, a.GetName())
		}
	}

	return nil
}

func globMatch(pattern, name string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	matched, err := path.Match(pattern, name)
	if err != nil {
		log.Warnf("invalid pattern %q: %v", pattern, err)
		return false
	}
	return matched
}
