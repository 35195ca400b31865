package itest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mumoshu/itest/pkg/api/transport"
	log "github.com/sirupsen/logrus"
)

// LoggingReporter logs lifecycle events and messages.
type LoggingReporter struct {
	Log *log.Logger
}

func NewLoggingReporter(logger *log.Logger) *LoggingReporter {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LoggingReporter{Log: logger}
}

func (r *LoggingReporter) entry(test *TestCase) *log.Entry {
	return r.Log.WithFields(log.Fields{"test": test.FullName()})
}

func (r *LoggingReporter) OnTestStart(test *TestCase) error {
	r.entry(test).Infof("STARTING TEST %s", test.FullName())
	return nil
}

func (r *LoggingReporter) OnTestActionStart(test *TestCase, action Action) error {
	r.entry(test).WithField("action", action.GetName()).Debugf("TEST STEP %s", action.GetName())
	return nil
}

func (r *LoggingReporter) OnTestActionFinish(test *TestCase, action Action) error {
	r.entry(test).WithField("action", action.GetName()).Debugf("TEST STEP %s SUCCESS", action.GetName())
	return nil
}

func (r *LoggingReporter) OnTestActionSkipped(test *TestCase, action Action) error {
	r.entry(test).WithField("action", action.GetName()).Infof("TEST STEP %s SKIPPED", action.GetName())
	return nil
}

func (r *LoggingReporter) OnTestSuccess(test *TestCase) error {
	r.entry(test).Infof("TEST SUCCESS %s", test.FullName())
	return nil
}

func (r *LoggingReporter) OnTestFailure(test *TestCase, cause error) error {
	r.entry(test).Errorf("TEST FAILED %s <%s> Nested exception is: %v", test.FullName(), test.PackageName(), cause)
	return nil
}

func (r *LoggingReporter) OnTestSkipped(test *TestCase) error {
	r.entry(test).Infof("SKIP TEST %s", test.FullName())
	return nil
}

func (r *LoggingReporter) OnTestFinish(test *TestCase) error {
	r.entry(test).Infof("TEST FINISHED %s", test.FullName())
	return nil
}

func (r *LoggingReporter) OnInboundMessage(msg *transport.Message, _ *Context) {
	r.Log.WithFields(log.Fields{"message": msg.ID}).Debugf("received message: headers=%v payload=%s", msg.Headers, msg.Payload)
}

func (r *LoggingReporter) OnOutboundMessage(msg *transport.Message, _ *Context) {
	r.Log.WithFields(log.Fields{"message": msg.ID}).Debugf("sent message: headers=%v payload=%s", msg.Headers, msg.Payload)
}

type Result string

const (
	ResultSuccess Result = "success"
	ResultFailed  Result = "failed"
	ResultSkipped Result = "skipped"
)

type Summary struct {
	Success int
	Failed  int
	Skipped int
	// Results maps full test names to their outcome.
	Results map[string]Result
}

func (s Summary) Total() int {
	return s.Success + s.Failed + s.Skipped
}

func (s Summary) String() string {
	names := make([]string, 0, len(s.Results))
	for n := range s.Results {
		names = append(names, n)
	}
	sort.Strings(names)

	out := ""
	for _, n := range names {
		out += fmt.Sprintf("%s ... %s\n", n, s.Results[n])
	}
	out += fmt.Sprintf("TOTAL: %d, SUCCESS: %d, FAILED: %d, SKIPPED: %d", s.Total(), s.Success, s.Failed, s.Skipped)
	return out
}

// SummaryReporter tallies test outcomes. It can be shared by concurrent runs.
type SummaryReporter struct {
	ListenerAdapter

	mu      sync.Mutex
	results map[string]Result
}

func NewSummaryReporter() *SummaryReporter {
	return &SummaryReporter{results: map[string]Result{}}
}

func (r *SummaryReporter) record(test *TestCase, result Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[test.FullName()] = result
}

func (r *SummaryReporter) OnTestSuccess(test *TestCase) error {
	r.record(test, ResultSuccess)
	return nil
}

func (r *SummaryReporter) OnTestFailure(test *TestCase, _ error) error {
	r.record(test, ResultFailed)
	return nil
}

func (r *SummaryReporter) OnTestSkipped(test *TestCase) error {
	r.record(test, ResultSkipped)
	return nil
}

// RecordFailure marks a test as failed even when it never reported a failure
// itself, e.g. because a before hook aborted it or its finally chain failed.
func (r *SummaryReporter) RecordFailure(test *TestCase) {
	r.record(test, ResultFailed)
}

func (r *SummaryReporter) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{Results: make(map[string]Result, len(r.results))}
	for name, result := range r.results {
		s.Results[name] = result
		switch result {
		case ResultSuccess:
			s.Success++
		case ResultFailed:
			s.Failed++
		case ResultSkipped:
			s.Skipped++
		}
	}
	return s
}
