package stringutil

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/huandu/xstrings"
)

var (
	regex       = regexp.MustCompile(`-([0-9]+)`)
	envReplacer = strings.NewReplacer("-", "_", ".", "_")
)

// ToTestName derives a test name from a test file path,
// e.g. tests/order_created-test.yaml becomes OrderCreatedTest.
func ToTestName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return xstrings.ToCamelCase(strings.Replace(base, "-", "_", -1))
}

// ToPackageName derives a dotted package name from the directory of a test
// file relative to root, e.g. orders/inbound becomes orders.inbound.
func ToPackageName(root, path string) string {
	dir := filepath.Dir(path)
	if rel, err := filepath.Rel(root, dir); err == nil {
		dir = rel
	}
	if dir == "." {
		return ""
	}
	return strings.Replace(filepath.ToSlash(dir), "/", ".", -1)
}

// ToEnvironmentName turns a config key like schemaRepositories into SCHEMA_REPOSITORIES.
func ToEnvironmentName(name string) string {
	n := strings.Trim(regex.ReplaceAllString(xstrings.ToKebabCase(name), "$1-"), "-")
	return strings.ToUpper(envReplacer.Replace(n))
}
