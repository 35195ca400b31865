package itest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	log "github.com/sirupsen/logrus"
)

func TestSummaryString(t *testing.T) {
	s := Summary{
		Success: 1,
		Failed:  1,
		Results: map[string]Result{
			"orders.Pass": ResultSuccess,
			"orders.Fail": ResultFailed,
		},
	}

	expected := `orders.Fail ... failed
orders.Pass ... success
TOTAL: 2, SUCCESS: 1, FAILED: 1, SKIPPED: 0`

	if diff := cmp.Diff(expected, s.String()); diff != "" {
		t.Errorf("String() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoggingReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.Out = &buf
	logger.Formatter = &MessageOnlyFormatter{}

	reporter := NewLoggingReporter(logger)
	ctx := NewContext(WithListeners(NewListeners(reporter)))

	tc := NewTestCase("Failing", WithPackage("orders"), WithActions(NewAction("boom", func(*Context) error {
		return errors.New("boom")
	})))
	tc.DoExecute(ctx)

	out := buf.String()
	for _, s := range []string{
		"STARTING TEST orders.Failing",
		"TEST FAILED orders.Failing <orders> Nested exception is: boom",
		"TEST FINISHED orders.Failing",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in:\n%s", s, out)
		}
	}
}
