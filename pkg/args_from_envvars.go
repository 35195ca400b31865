package itest

import (
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
)

// ArgsFromEnvVars reads command-line arguments from ITEST_ARGS, for runs
// where the command line can't be set, like in CI containers.
func ArgsFromEnvVars() ([]string, error) {
	return argsFromEnvVars(os.Getenv)
}

func argsFromEnvVars(getenv func(string) string) ([]string, error) {
	const (
		Args           = "ITEST_ARGS"
		ArgsTrimPrefix = "ITEST_ARGS_TRIM_PREFIX"
	)

	run := getenv(Args)
	prefix := getenv(ArgsTrimPrefix)

	if run != "" {
		run = strings.TrimSpace(run)
		if prefix != "" {
			run = strings.TrimPrefix(run, prefix)
		}

		return shellwords.Parse(run)
	}
	return nil, nil
}
