package cmd

import (
	itest "github.com/mumoshu/itest/pkg"
	"github.com/spf13/cobra"
)

func NewRootCmd(app *itest.Application) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   app.Name,
		Short: "Run integration tests defined in YAML",
		Long: `Run integration tests defined in YAML.

A test case is an ordered list of actions, like sending and receiving messages,
with before and after hooks and a finally block that always runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.UpdateLoggingConfiguration()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&(app.Verbose), "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&(app.Output), "output", "o", "text", "Output format. One of: json|text|bunyan|message")
	rootCmd.PersistentFlags().BoolVarP(&(app.Colorize), "color", "C", true, "Colorize output")
	rootCmd.PersistentFlags().StringVarP(&(app.ConfigFile), "config-file", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&(app.Env), "env", "e", "", "Environment to load config/environments/$ENV.yaml for. Defaults to the one selected with `env set`")
	rootCmd.PersistentFlags().BoolVar(&(app.LogToStderr), "logtostderr", true, "write log messages to stderr")

	rootCmd.AddCommand(
		NewRunCmd(app),
		NewValidateCmd(),
		InitCmd,
		EnvCmd,
		VersionCmd(app),
	)

	return rootCmd
}
