// Copyright © 2016 NAME HERE <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juju/errors"
	"github.com/mumoshu/itest/pkg/cli/env"
	subcommands "github.com/mumoshu/itest/cmd/env"
)

var EnvCmd = &cobra.Command{
	Use:   "env",
	Short: "Print currently selected environment",
	Long: `Print currently selected environment. The environment can be selected via the command "itest env set" or "itest env switch".
The config in config/environments/$ENV.yaml is merged over itest.yaml.

Example:
itest env switch staging
itest env #=> Prints "staging"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := env.Get()
		if err != nil {
			return errors.Annotate(err, "no environment selected")
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

func init() {
	EnvCmd.AddCommand(subcommands.SetCmd)
}
