package itest

import (
	"fmt"
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/mumoshu/itest/pkg/cli/env"
	"github.com/mumoshu/itest/pkg/util/fileutil"
	bunyan "github.com/mumoshu/logrus-bunyan-formatter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Application holds the settings shared by every command.
type Application struct {
	Name        string
	ConfigFile  string
	Verbose     bool
	Output      string
	Colorize    bool
	LogToStderr bool
	Env         string
	Viper       *viper.Viper
	Log         *log.Logger
}

func NewApplication(name string) *Application {
	v := viper.New()

	// Set default log level.
	v.SetDefault("log_level", "info")
	v.SetDefault("workers", 1)

	// Set default colors for the logs.
	v.SetDefault("log_color_panic", "red")
	v.SetDefault("log_color_fatal", "red")
	v.SetDefault("log_color_error", "red")
	v.SetDefault("log_color_warn", "yellow")
	v.SetDefault("log_color_info", "cyan")
	v.SetDefault("log_color_debug", "dark_gray")

	return &Application{
		Name:        name,
		Output:      "text",
		Colorize:    true,
		LogToStderr: true,
		Viper:       v,
		Log:         log.StandardLogger(),
	}
}

func (p *Application) UpdateLoggingConfiguration() error {
	level, err := log.ParseLevel(p.Viper.GetString("log_level"))
	if err != nil {
		return errors.Annotatef(err, "invalid log_level")
	}
	if p.Verbose {
		level = log.DebugLevel
	}
	p.Log.SetLevel(level)

	if p.LogToStderr {
		p.Log.SetOutput(os.Stderr)
	} else {
		p.Log.SetOutput(os.Stdout)
	}

	switch p.Output {
	case "bunyan":
		p.Log.SetFormatter(&bunyan.Formatter{Name: p.Name})
	case "json":
		p.Log.SetFormatter(&log.JSONFormatter{})
	case "text":
		if p.Colorize {
			p.Log.SetFormatter(newColorTextFormatter(p.logColors()))
		} else {
			p.Log.SetFormatter(&log.TextFormatter{})
		}
	case "message":
		p.Log.SetFormatter(&MessageOnlyFormatter{})
	default:
		return errors.Errorf("Unexpected output format specified: %s", p.Output)
	}

	return nil
}

func (p *Application) logColors() map[log.Level]string {
	colors := map[log.Level]string{}
	for _, l := range log.AllLevels {
		colors[l] = p.Viper.GetString(fmt.Sprintf("log_color_%s", l.String()))
	}
	// logrus names the warn level "warning"
	colors[log.WarnLevel] = p.Viper.GetString("log_color_warn")
	return colors
}

// LoadConfig merges $name.yaml (or the file given by ConfigFile), the
// config/environments/$env.yaml of the selected environment and $NAME_*
// environment variables, in increasing order of precedence.
func (p *Application) LoadConfig() (*Config, error) {
	v := p.Viper

	if p.ConfigFile != "" {
		v.SetConfigFile(p.ConfigFile)

		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Annotatef(err, "loading config file %s", p.ConfigFile)
		}
	} else {
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		// See "How to merge two config files" https://github.com/spf13/viper/issues/181
		v.SetConfigName(p.Name)
		commonConfigFile := fmt.Sprintf("%s.yaml", p.Name)
		commonConfigMsg := fmt.Sprintf("loading config file %s...", commonConfigFile)
		if fileutil.Exists(commonConfigFile) {
			if err := v.MergeInConfig(); err != nil {
				p.Log.Errorf("%serror", commonConfigMsg)
				return nil, errors.Trace(err)
			}
			p.Log.Debugf("%sdone", commonConfigMsg)
		} else {
			p.Log.Debugf("%smissing", commonConfigMsg)
		}
	}

	envName := p.Env
	if envName == "" {
		envFile := env.New(p.Name)
		p.Log.Debugf("loading env file %s", envFile.GetPath())
		envName, _ = envFile.GetOrDefault("")
	}

	if envName != "" {
		envConfigName := fmt.Sprintf("config/environments/%s", envName)
		envConfigFile := fmt.Sprintf("%s.yaml", envConfigName)
		envConfigMsg := fmt.Sprintf("loading config file %s...", envConfigFile)
		if fileutil.Exists(envConfigFile) {
			v.SetConfigFile(envConfigFile)
			if err := v.MergeInConfig(); err != nil {
				p.Log.Errorf("%serror", envConfigMsg)
				return nil, errors.Trace(err)
			}
			p.Log.Debugf("%sdone", envConfigMsg)
		} else {
			p.Log.Debugf("%smissing", envConfigMsg)
		}
	}

	//Set the environment prefix as app name
	v.SetEnvPrefix(strings.ToUpper(p.Name))
	v.AutomaticEnv()

	//Substitute the . and - to _,
	replacer := strings.NewReplacer(".", "_", "-", "_")
	v.SetEnvKeyReplacer(replacer)

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Annotatef(err, "invalid configuration")
	}
	// AutomaticEnv only applies to Get, not to Unmarshal.
	c.Workers = v.GetInt("workers")
	c.LogLevel = v.GetString("log_level")

	return c, nil
}
