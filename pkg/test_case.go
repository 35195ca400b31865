package itest

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	TestNameVariable    = "itest.test.name"
	TestPackageVariable = "itest.test.package"
)

type Status int

const (
	StatusPending Status = iota
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
	default:
		return "pending"
	}
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "", "pending":
		return StatusPending, nil
	case "disabled":
		return StatusDisabled, nil
	default:
		return StatusPending, errors.Errorf("unknown test status %q: the status should be one of: pending, disabled", s)
	}
}

type MetaInfo struct {
	Author      string
	Description string
	Status      Status
}

// Variable is a named definition. String values are resolved against the
// context when the test starts, anything else is stored verbatim.
type Variable struct {
	Name  string
	Value interface{}
}

// TestCase runs an ordered list of actions with before/after hooks and a
// finally chain that runs regardless of the outcome.
type TestCase struct {
	name        string
	packageName string
	meta        MetaInfo
	groups      []string

	actions    []Action
	finally    []Action
	variables  []Variable
	parameters []Variable

	before []Hook
	after  []Hook

	context            *Context
	lastExecutedAction Action
}

type TestCaseOption func(*TestCase)

func WithPackage(name string) TestCaseOption {
	return func(t *TestCase) {
		t.packageName = name
	}
}

func WithMetaInfo(meta MetaInfo) TestCaseOption {
	return func(t *TestCase) {
		t.meta = meta
	}
}

func WithStatus(s Status) TestCaseOption {
	return func(t *TestCase) {
		t.meta.Status = s
	}
}

func WithGroups(groups ...string) TestCaseOption {
	return func(t *TestCase) {
		t.groups = append(t.groups, groups...)
	}
}

func WithActions(actions ...Action) TestCaseOption {
	return func(t *TestCase) {
		t.actions = append(t.actions, actions...)
	}
}

func WithFinally(actions ...Action) TestCaseOption {
	return func(t *TestCase) {
		t.finally = append(t.finally, actions...)
	}
}

func WithVariable(name string, value interface{}) TestCaseOption {
	return func(t *TestCase) {
		t.variables = append(t.variables, Variable{Name: name, Value: value})
	}
}

func WithBeforeTest(hooks ...Hook) TestCaseOption {
	return func(t *TestCase) {
		t.before = append(t.before, hooks...)
	}
}

func WithAfterTest(hooks ...Hook) TestCaseOption {
	return func(t *TestCase) {
		t.after = append(t.after, hooks...)
	}
}

func NewTestCase(name string, opts ...TestCaseOption) *TestCase {
	t := &TestCase{
		name:       name,
		actions:    []Action{},
		finally:    []Action{},
		variables:  []Variable{},
		parameters: []Variable{},
		before:     []Hook{},
		after:      []Hook{},
	}

	for _, o := range opts {
		o(t)
	}

	return t
}

func (t *TestCase) Validate() error {
	if t.name == "" {
		return errors.New("test case name must not be empty")
	}
	return nil
}

func (t *TestCase) Name() string {
	return t.name
}

func (t *TestCase) PackageName() string {
	return t.packageName
}

func (t *TestCase) MetaInfo() MetaInfo {
	return t.meta
}

func (t *TestCase) Groups() []string {
	return t.groups
}

func (t *TestCase) Actions() []Action {
	return t.actions
}

func (t *TestCase) Finally() []Action {
	return t.finally
}

func (t *TestCase) Variables() []Variable {
	return t.variables
}

func (t *TestCase) Parameters() []Variable {
	return t.parameters
}

// Context returns the context of the current or last run.
func (t *TestCase) Context() *Context {
	return t.context
}

func (t *TestCase) LastExecutedAction() Action {
	return t.lastExecutedAction
}

func (t *TestCase) FullName() string {
	if t.packageName == "" {
		return t.name
	}
	return fmt.Sprintf("%s.%s", t.packageName, t.name)
}

// SetParameters defines externally supplied values that are injected as
// variables after the test's own variables.
func (t *TestCase) SetParameters(names []string, values []interface{}) error {
	if len(names) != len(values) {
		return errors.Errorf("Invalid test parameter usage - received '%d' parameters with '%d' values", len(names), len(values))
	}

	for i := range names {
		t.parameters = append(t.parameters, Variable{Name: names[i], Value: values[i]})
	}

	return nil
}

// DoExecute runs the test case once against ctx.
//
// A disabled test is only reported as skipped. A failing before hook aborts
// the run with a FatalSetupError before anything else happens. Otherwise the
// actions run until the first failure, after hooks and the finally chain run
// in any case, and a failure is returned as a TestFailure wrapping its cause.
// An error of the finally chain is returned as-is and takes precedence.
func (t *TestCase) DoExecute(ctx *Context) error {
	if t.context != nil && t.context == ctx {
		return NewFatalSetupError(nil, "test case '%s' was already executed in this context", t.name)
	}
	t.context = ctx

	logger := log.WithFields(log.Fields{"test": t.FullName()})
	listeners := ctx.Listeners()

	if t.meta.Status == StatusDisabled {
		logger.Infof("skipping disabled test case")
		listeners.TestSkipped(t)
		return nil
	}

	listeners.TestStart(t)

	if err := t.beforeTest(ctx); err != nil {
		return err
	}

	runErr := t.run(ctx)

	if runErr == nil {
		listeners.TestSuccess(t)
	} else {
		listeners.TestFailure(t, runErr)
	}

	t.afterTest(ctx)
	listeners.TestFinish(t)

	if err := t.finish(ctx); err != nil {
		if runErr != nil {
			logger.Errorf("finally chain failed after test failure, the test failure was: %v", runErr)
		}
		return err
	}

	if runErr != nil {
		if t.lastExecutedAction != nil {
			return NewTestFailure(runErr, "test case '%s' failed in action '%s'", t.FullName(), t.lastExecutedAction.GetName())
		}
		return NewTestFailure(runErr, "test case '%s' failed", t.FullName())
	}

	return nil
}

func (t *TestCase) beforeTest(ctx *Context) error {
	for _, h := range t.before {
		if !h.ShouldExecute(t.name, t.packageName, t.groups) {
			continue
		}
		if err := executeHook(h, ctx); err != nil {
			return NewFatalSetupError(err, "Before test failed with errors")
		}
	}
	return nil
}

// afterTest never fails: errors would hide the outcome of the test itself.
func (t *TestCase) afterTest(ctx *Context) {
	for _, h := range t.after {
		if !h.ShouldExecute(t.name, t.packageName, t.groups) {
			continue
		}
		if err := executeHook(h, ctx); err != nil {
			log.WithFields(log.Fields{"test": t.FullName()}).Warnf("After test failed with errors: %v", err)
		}
	}
}

func (t *TestCase) run(ctx *Context) error {
	logger := log.WithFields(log.Fields{"test": t.FullName()})
	logger.Debugf("initializing test case")

	t.lastExecutedAction = nil

	for _, v := range t.variables {
		if s, ok := v.Value.(string); ok {
			resolved, err := ctx.ResolveDynamicContent(s)
			if err != nil {
				return errors.Wrapf(err, "failed resolving variable %s", v.Name)
			}
			ctx.SetVariable(v.Name, resolved)
		} else {
			ctx.SetVariable(v.Name, v.Value)
		}
	}

	if ctx.HasVariables() {
		logger.Debugf("global variables:\n%s", ctx.dump())
	}

	ctx.SetVariable(TestNameVariable, t.name)
	ctx.SetVariable(TestPackageVariable, t.packageName)

	for _, p := range t.parameters {
		logger.Infof("Initializing test parameter '%s' as variable", p.Name)
		ctx.SetVariable(p.Name, p.Value)
	}

	listeners := ctx.Listeners()

	for _, a := range t.actions {
		disabled, err := a.IsDisabled(ctx)
		if err != nil {
			t.lastExecutedAction = a
			return err
		}
		if disabled {
			listeners.TestActionSkipped(t, a)
			continue
		}

		listeners.TestActionStart(t, a)
		t.lastExecutedAction = a

		if err := execute(a, ctx); err != nil {
			return err
		}

		listeners.TestActionFinish(t, a)
	}

	return nil
}

// finish runs the finally chain. It stops at the first failing action.
func (t *TestCase) finish(ctx *Context) error {
	if len(t.finally) > 0 {
		log.WithFields(log.Fields{"test": t.FullName()}).Infof("Finish test case with finally block actions")
	}

	for _, a := range t.finally {
		if err := execute(a, ctx); err != nil {
			return NewTestFailure(err, "finally action '%s' of test case '%s' failed", a.GetName(), t.FullName())
		}
	}

	return nil
}

func (t *TestCase) String() string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("TestCase(%s) [testVariables:", t.FullName()))
	for _, v := range t.variables {
		buf.WriteString(fmt.Sprintf("%s=%v;", v.Name, v.Value))
	}
	buf.WriteString("] [testChain:")
	for _, a := range t.actions {
		buf.WriteString(fmt.Sprintf("%s;", a.GetName()))
	}
	buf.WriteString("]")

	return buf.String()
}

func execute(a Action, ctx *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("action %s panicked: %v", a.GetName(), r)
		}
	}()
	return a.Execute(ctx)
}

func executeHook(h Hook, ctx *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("hook %T panicked: %v", h, r)
		}
	}()
	return h.Execute(ctx)
}
