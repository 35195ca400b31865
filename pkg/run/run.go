package run

import (
	"os"
	"sort"
	"strings"

	itest "github.com/mumoshu/itest/pkg"
	"github.com/mumoshu/itest/pkg/get"
	"github.com/mumoshu/itest/pkg/load"
	"github.com/mumoshu/itest/pkg/util/maputil"
	"github.com/pkg/errors"
)

type Opts struct {
	// Paths are test files or directories of test files.
	Paths []string
	// Params override configured variables.
	Params  map[string]interface{}
	Workers int
	Groups  []string
	Fetcher *get.Fetcher
}

// Run loads the configuration and the test cases and runs them as a suite.
// The summary is complete even when the returned error reports failed tests.
func Run(app *itest.Application, opts Opts) (itest.Summary, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return itest.Summary{}, err
	}

	// log_level may come from the config files loaded above
	if err := app.UpdateLoggingConfiguration(); err != nil {
		return itest.Summary{}, err
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = get.New()
	}

	env, err := cfg.Build(fetcher)
	if err != nil {
		return itest.Summary{}, errors.Wrap(err, "invalid configuration")
	}

	if err := applyParams(env.Variables, opts.Params); err != nil {
		return itest.Summary{}, err
	}

	tests, err := Load(opts.Paths, env.TestCaseOptions()...)
	if err != nil {
		return itest.Summary{}, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = env.Workers
	}

	logging := itest.NewLoggingReporter(app.Log)
	summary := itest.NewSummaryReporter()

	suite := &itest.Suite{
		Tests:   tests,
		Workers: workers,
		Groups:  opts.Groups,
		NewContext: func() *itest.Context {
			return env.NewContext(
				itest.WithListeners(itest.NewListeners(logging)),
				itest.WithMessageListeners(logging),
			)
		},
		Reporter: summary,
	}

	runErr := suite.Run()

	return summary.Summary(), runErr
}

// applyParams merges params into vars. A dotted name like order.id sets a key
// inside the map variable order.
func applyParams(vars map[string]interface{}, params map[string]interface{}) error {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	overrides := map[string]interface{}{}
	for _, k := range names {
		if err := maputil.SetValueAtPath(overrides, strings.Split(k, "."), params[k]); err != nil {
			return errors.Wrapf(err, "parameter %s", k)
		}
	}

	return errors.Wrap(maputil.DeepMerge(vars, overrides), "invalid parameters")
}

// Load loads test cases from files and directories, in the given order.
func Load(paths []string, opts ...itest.TestCaseOption) ([]*itest.TestCase, error) {
	tests := []*itest.TestCase{}

	for _, p := range paths {
		stat, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed loading tests from %s", p)
		}

		if stat.IsDir() {
			loaded, err := load.Dir(p, opts...)
			if err != nil {
				return nil, err
			}
			tests = append(tests, loaded...)
			continue
		}

		t, err := load.File(p, opts...)
		if err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}

	return tests, nil
}
