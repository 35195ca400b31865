package load

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	itest "github.com/mumoshu/itest/pkg"
	"github.com/mumoshu/itest/pkg/util/fileutil"
	"github.com/mumoshu/itest/pkg/util/stringutil"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// File loads a test case file. An unnamed test case is named after the file.
func File(path string, opts ...itest.TestCaseOption) (*itest.TestCase, error) {
	if !fileutil.Exists(path) {
		return nil, errors.Errorf("%s does not exist", path)
	}

	log.Debugf("Loading %s", path)

	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Error while loading %s", path)
	}

	def, err := itest.ReadTestCaseDefFromBytes(bytes)
	if err != nil {
		return nil, errors.Wrapf(err, "Error while loading %s", path)
	}

	if def.Name == "" {
		def.Name = stringutil.ToTestName(path)
	}

	return itest.NewTestCaseFromDef(def, opts...)
}

// YAML loads a test case from its YAML source.
func YAML(source string, opts ...itest.TestCaseOption) (*itest.TestCase, error) {
	def, err := itest.ReadTestCaseDefFromBytes([]byte(source))
	if err != nil {
		return nil, err
	}
	return itest.NewTestCaseFromDef(def, opts...)
}

// Dir loads every *.yaml and *.yml file under root. Test cases without a
// package are put in the package named after their directory.
func Dir(root string, opts ...itest.TestCaseOption) ([]*itest.TestCase, error) {
	paths := []string{}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed walking %s", root)
	}

	sort.Strings(paths)

	tests := make([]*itest.TestCase, 0, len(paths))
	for _, p := range paths {
		fileOpts := opts
		if pkg := stringutil.ToPackageName(root, p); pkg != "" {
			fileOpts = append([]itest.TestCaseOption{defaultPackage(pkg)}, opts...)
		}
		t, err := File(p, fileOpts...)
		if err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}

	return tests, nil
}

func defaultPackage(pkg string) itest.TestCaseOption {
	return func(t *itest.TestCase) {
		if t.PackageName() == "" {
			itest.WithPackage(pkg)(t)
		}
	}
}
