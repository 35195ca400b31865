package itest

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Suite runs test cases, each in a fresh context, with at most Workers runs
// at a time.
type Suite struct {
	Tests   []*TestCase
	Workers int
	// Groups restricts the run to test cases belonging to one of the groups.
	Groups []string
	// NewContext creates the context of a single run.
	NewContext func() *Context
	Reporter   *SummaryReporter
}

// Run runs every selected test case and returns the failures aggregated in a
// *multierror.Error, or nil.
func (s *Suite) Run() error {
	workers := s.Workers
	if workers < 1 {
		workers = 1
	}

	newContext := s.NewContext
	if newContext == nil {
		newContext = func() *Context { return NewContext() }
	}

	var (
		mu     sync.Mutex
		result *multierror.Error
		wg     sync.WaitGroup
	)

	sem := make(chan struct{}, workers)

	for _, t := range s.Tests {
		if !s.selected(t) {
			log.WithFields(log.Fields{"test": t.FullName()}).Debugf("test case not in selected groups %v", s.Groups)
			continue
		}

		t := t
		wg.Add(1)
		sem <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			ctx := newContext()
			if s.Reporter != nil {
				ctx.Listeners().Add(s.Reporter)
			}

			if err := t.DoExecute(ctx); err != nil {
				// covers before hook and finally chain errors the listeners never saw
				if s.Reporter != nil {
					s.Reporter.RecordFailure(t)
				}
				mu.Lock()
				result = multierror.Append(result, errors.Wrapf(err, "%s", t.FullName()))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	return result.ErrorOrNil()
}

func (s *Suite) selected(t *TestCase) bool {
	if len(s.Groups) == 0 {
		return true
	}
	for _, want := range s.Groups {
		for _, g := range t.Groups() {
			if want == g {
				return true
			}
		}
	}
	return false
}
