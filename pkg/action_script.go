package itest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/mumoshu/itest/pkg/util/stringutil"
	log "github.com/sirupsen/logrus"
)

type ScriptActionLoader struct{}

func (l ScriptActionLoader) Key() string {
	return "script"
}

func (l ScriptActionLoader) LoadAction(def ActionDef) (Action, error) {
	a := &ScriptAction{ActionMeta: def.Meta()}
	if err := def.Decode(l.Key(), "script", a); err != nil {
		return nil, err
	}
	if (a.Script == "") == (a.Command == "") {
		return nil, fmt.Errorf("exactly one of script or command must be set: script=%q, command=%q", a.Script, a.Command)
	}
	return a, nil
}

// ScriptAction runs a shell script with `sh -c`, or a command whose
// arguments are split like a shell would. Variables are exported to the
// process environment.
type ScriptAction struct {
	ActionMeta `mapstructure:",squash"`
	Script     string        `mapstructure:"script"`
	Command    string        `mapstructure:"command"`
	Dir        string        `mapstructure:"dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// Variable receives the trimmed standard output.
	Variable string `mapstructure:"variable"`
}

func (a *ScriptAction) Execute(ctx *Context) error {
	name, args, err := a.commandNameAndArgs(ctx)
	if err != nil {
		return err
	}

	logger := log.WithFields(log.Fields{"action": a.Name, "cmd": append([]string{name}, args...)})
	logger.Debug("script started")

	c := context.Background()
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		c, cancel = context.WithTimeout(c, a.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(c, name, args...)
	cmd.Dir = a.Dir
	// children of a killed shell may keep the output pipes open
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(), scriptEnv(ctx)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	for _, line := range strings.Split(strings.TrimRight(stderr.String(), "\n"), "\n") {
		if line != "" {
			logger.WithField("stream", "stderr").Info(line)
		}
	}

	output := strings.TrimSpace(stdout.String())
	if output != "" {
		logger.WithField("stream", "stdout").Info(output)
	}

	if c.Err() == context.DeadlineExceeded {
		return NewTimeoutError(runErr, "script did not finish within %v", a.Timeout)
	}
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return NewTestFailure(exitErr, "script exited with non-zero status: %s", strings.TrimSpace(stderr.String()))
		}
		return NewFatalSetupError(runErr, "failed running script")
	}

	if a.Variable != "" {
		ctx.SetVariable(a.Variable, output)
	}

	return nil
}

func (a *ScriptAction) commandNameAndArgs(ctx *Context) (string, []string, error) {
	if a.Script != "" {
		script, err := ctx.ResolveDynamicContent(a.Script)
		if err != nil {
			return "", nil, err
		}
		return "sh", []string{"-c", script}, nil
	}

	command, err := ctx.ResolveDynamicContent(a.Command)
	if err != nil {
		return "", nil, err
	}

	argv, err := shellwords.Parse(command)
	if err != nil {
		return "", nil, NewFatalSetupError(err, "unable to parse command '%s'", command)
	}
	if len(argv) == 0 {
		return "", nil, NewFatalSetupError(nil, "empty command")
	}

	return argv[0], argv[1:], nil
}

// scriptEnv exposes scalar variables as environment variables, e.g. orderId
// becomes ITEST_ORDER_ID.
func scriptEnv(ctx *Context) []string {
	env := []string{}
	for name, value := range ctx.Variables() {
		switch value.(type) {
		case map[string]interface{}, map[interface{}]interface{}, []interface{}:
			continue
		}
		env = append(env, fmt.Sprintf("ITEST_%s=%s", stringutil.ToEnvironmentName(name), stringify(value)))
	}
	return env
}
