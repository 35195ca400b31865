package itest

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
)

func TestSuiteRun(t *testing.T) {
	pass := NewTestCase("Pass", WithPackage("orders"))
	fail := NewTestCase("Fail", WithPackage("orders"), WithActions(NewAction("boom", func(*Context) error {
		return errors.New("boom")
	})))
	skip := NewTestCase("Skip", WithStatus(StatusDisabled))
	setup := NewTestCase("Setup", WithBeforeTest(hookFunc{match: true, fn: func(*Context) error {
		return errors.New("no database")
	}}))
	cleanup := NewTestCase("Cleanup", WithFinally(NewAction("cleanup", func(*Context) error {
		return errors.New("cleanup failed")
	})))

	reporter := NewSummaryReporter()
	suite := &Suite{
		Tests:    []*TestCase{pass, fail, skip, setup, cleanup},
		Workers:  2,
		Reporter: reporter,
	}

	err := suite.Run()
	if err == nil {
		t.Fatalf("expected error")
	}

	merr, ok := err.(*multierror.Error)
	if !ok {
		t.Fatalf("expected a *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 3 {
		t.Errorf("expected 3 failures, got %d: %v", len(merr.Errors), merr)
	}
	for _, name := range []string{"orders.Fail", "Setup", "Cleanup"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("expected %q in %q", name, err.Error())
		}
	}

	expected := Summary{
		Success: 1,
		Failed:  3,
		Skipped: 1,
		Results: map[string]Result{
			"orders.Pass": ResultSuccess,
			"orders.Fail": ResultFailed,
			"Skip":        ResultSkipped,
			"Setup":       ResultFailed,
			"Cleanup":     ResultFailed,
		},
	}
	if diff := cmp.Diff(expected, reporter.Summary()); diff != "" {
		t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
	}
}

func TestSuiteRunLimitsWorkers(t *testing.T) {
	var running, peak int32

	tests := []*TestCase{}
	for i := 0; i < 8; i++ {
		tests = append(tests, NewTestCase(fmt.Sprintf("T%d", i), WithActions(NewAction("work", func(*Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		}))))
	}

	suite := &Suite{Tests: tests, Workers: 3}
	if err := suite.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p := atomic.LoadInt32(&peak); p > 3 || p < 1 {
		t.Errorf("expected at most 3 concurrent runs, got %d", p)
	}
}

func TestSuiteRunIsolatesContexts(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]interface{}{}

	newTest := func(name, value string) *TestCase {
		return NewTestCase(name,
			WithVariable("shared", value),
			WithActions(NewAction("read", func(ctx *Context) error {
				time.Sleep(5 * time.Millisecond)
				v, err := ctx.GetVariable("shared")
				mu.Lock()
				seen[name] = v
				mu.Unlock()
				return err
			})),
		)
	}

	suite := &Suite{
		Tests:   []*TestCase{newTest("A", "a"), newTest("B", "b")},
		Workers: 2,
		NewContext: func() *Context {
			return NewContext(WithVariables(map[string]interface{}{"global": "g"}))
		},
	}
	if err := suite.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(map[string]interface{}{"A": "a", "B": "b"}, seen); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
}

func TestSuiteRunSelectsGroups(t *testing.T) {
	r := &recorder{}
	tests := []*TestCase{
		NewTestCase("Smoke", WithGroups("smoke"), WithActions(record(r, "smoke"))),
		NewTestCase("Slow", WithGroups("slow"), WithActions(record(r, "slow"))),
		NewTestCase("Both", WithGroups("slow", "smoke"), WithActions(record(r, "both"))),
		NewTestCase("None", WithActions(record(r, "none"))),
	}

	suite := &Suite{Tests: tests, Groups: []string{"smoke"}}
	if err := suite.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"exec:smoke", "exec:both"}, r.Events()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}
