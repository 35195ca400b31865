package env

import (
	"fmt"
	"io/ioutil"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pkg/errors"
)

// EnvFile remembers the selected environment in a dot file in the working
// directory, e.g. .itestenv.
type EnvFile struct {
	appName string
}

var e *EnvFile

func init() {
	SetAppName("itest")
}

func New(name string) *EnvFile {
	e := new(EnvFile)
	e.appName = name

	return e
}

func SetAppName(name string) {
	e = New(name)
}

func GetPath() string { return e.GetPath() }
func (e *EnvFile) GetPath() string {
	return fmt.Sprintf(".%senv", e.appName)
}

func Set(env string) error { return e.Set(env) }
func (e *EnvFile) Set(env string) error {
	env = strings.TrimSpace(env)
	if env == "" {
		return errors.New("environment name must not be empty")
	}
	err := ioutil.WriteFile(e.GetPath(), []byte(env), 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func Get() (string, error) { return e.Get() }
func (e *EnvFile) Get() (string, error) {
	env, err := ioutil.ReadFile(e.GetPath())
	if err != nil {
		return "", errors.WithStack(err)
	}
	return strings.TrimSpace(string(env)), nil
}

// GetOrDefault returns the selected environment, or defaultEnv when none was selected.
func GetOrDefault(defaultEnv string) (string, error) { return e.GetOrDefault(defaultEnv) }
func (e *EnvFile) GetOrDefault(defaultEnv string) (string, error) {
	env, err := e.Get()
	if err != nil {
		log.Debugf("%s", err)
		return defaultEnv, nil
	}
	return env, nil
}
