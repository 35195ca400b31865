package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/errors"
	itest "github.com/mumoshu/itest/pkg"
	"github.com/mumoshu/itest/pkg/cli/env"
	"github.com/sirupsen/logrus"
)

const (
	StatusOK          = 0
	StatusTestsFailed = 1
	StatusError       = 2
)

func MustRun() {
	app, err := RunE()
	HandleErrorAndExit(err, app)
}

// RunE runs the command given by os.Args, or by ITEST_ARGS when set.
func RunE() (*itest.Application, error) {
	app := itest.NewApplication(strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0])))
	env.SetAppName(app.Name)

	args, err := itest.ArgsFromEnvVars()
	if err != nil {
		return app, errors.Annotate(err, "invalid ITEST_ARGS")
	}
	if args == nil {
		args = os.Args[1:]
	}

	rootCmd := NewRootCmd(app)
	rootCmd.SetArgs(args)

	return app, rootCmd.Execute()
}

func HandleErrorAndExit(err error, app *itest.Application) {
	msg, status := HandleError(err, app)
	if msg != "" {
		app.Log.Errorf("%s", msg)
	}
	os.Exit(status)
}

func HandleError(err error, app *itest.Application) (string, int) {
	if err == nil {
		return "", StatusOK
	}

	status := GetStatus(err)

	var msg string
	switch e := err.(type) {
	case *multierror.Error:
		msg = fmt.Sprintf("%d test case(s) failed:", len(e.Errors))
		for _, f := range e.Errors {
			msg += fmt.Sprintf("\n- %v", f)
			if app.Log.GetLevel() == logrus.DebugLevel {
				msg += fmt.Sprintf("\n%+v", f)
			}
		}
	default:
		msg = fmt.Sprintf("Error: %v", err)
		if app.Log.GetLevel() == logrus.DebugLevel {
			msg += fmt.Sprintf("\nStack trace: %s", errors.ErrorStack(err))
		}
	}

	return msg, status
}

func GetStatus(err error) int {
	switch err.(type) {
	case nil:
		return StatusOK
	case *multierror.Error:
		return StatusTestsFailed
	default:
		return StatusError
	}
}
