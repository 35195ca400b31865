// Copyright © 2018 Yusuke KUOKA <ykuoka@gmail.com>
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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/mumoshu/itest/pkg/util/fileutil"
	"github.com/mumoshu/itest/pkg/util/stringutil"
	"github.com/spf13/cobra"
)

const testCaseTemplate = `name: %s
description: ""
groups: []
variables:
  greeting: Hello
actions:
  - echo: ${greeting} from ${itest.test.name}
finally: []
`

var InitCmd = &cobra.Command{
	Use:   "init PATH",
	Short: "Create a test case file",
	Long: `Create a test case file at PATH, named after the file.

Example:
itest init tests/orders/order_created.yaml
itest run tests/orders
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			path += ".yaml"
		}
		if fileutil.Exists(path) {
			return errors.AlreadyExistsf("%s", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.Trace(err)
		}
		content := fmt.Sprintf(testCaseTemplate, stringutil.ToTestName(path))
		if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
			return errors.Trace(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}
