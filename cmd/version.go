package cmd

import (
	"encoding/json"
	"fmt"

	itest "github.com/mumoshu/itest/pkg"
	"github.com/mumoshu/itest/pkg/cli/version"
	"github.com/spf13/cobra"
)

func VersionCmd(app *itest.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := version.Get()
			if app.Output != "json" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s %s (%s)\n", app.Name, v.Version, v.Platform, v.GoVersion)
				return nil
			}
			bytes, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bytes))
			return nil
		},
	}
}
