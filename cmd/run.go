package cmd

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
	itest "github.com/mumoshu/itest/pkg"
	"github.com/mumoshu/itest/pkg/run"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// DefaultTestDir is run when no path is given.
const DefaultTestDir = "tests"

func NewRunCmd(app *itest.Application) *cobra.Command {
	var (
		params  []string
		workers int
		groups  []string
	)

	runCmd := &cobra.Command{
		Use:   "run [PATH...]",
		Short: "Run test cases",
		Long: `Run the test cases in the given files and directories.

Example:
itest run tests/orders --group smoke --param customer=acme --workers 4
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = []string{DefaultTestDir}
			}

			p, err := parseParams(params)
			if err != nil {
				return errors.Trace(err)
			}

			summary, err := run.Run(app, run.Opts{
				Paths:   paths,
				Params:  p,
				Workers: workers,
				Groups:  groups,
			})
			if summary.Total() > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), summary.String())
			}
			return err
		},
	}

	addRunFlags(runCmd.Flags(), &params, &workers, &groups)

	return runCmd
}

func addRunFlags(flags *pflag.FlagSet, params *[]string, workers *int, groups *[]string) {
	flags.StringArrayVarP(params, "param", "p", []string{}, "Set a variable for every test case, as NAME=VALUE. Can be repeated")
	flags.IntVarP(workers, "workers", "w", 0, "Number of test cases run concurrently. Defaults to the workers setting of the config")
	flags.StringSliceVarP(groups, "group", "g", []string{}, "Only run test cases in one of the groups")
}

func parseParams(params []string) (map[string]interface{}, error) {
	result := map[string]interface{}{}
	for _, p := range params {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, errors.NotValidf("parameter %q: expected NAME=VALUE", p)
		}
		result[kv[0]] = kv[1]
	}
	return result, nil
}
