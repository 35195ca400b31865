package load

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	itest "github.com/mumoshu/itest/pkg"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir, err := ioutil.TempDir("", "itest-load")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	return dir
}

func TestDir(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top-level.yaml":                "actions:\n- echo: hi\n",
		"orders/inbound/order_new.yml":  "actions:\n- echo: hi\n",
		"orders/explicit.yaml":          "name: Explicit\npackage: custom\n",
		"orders/README.md":              "not a test",
		"customers/customer_check.yaml": "groups: [smoke]\n",
	})
	defer os.RemoveAll(dir)

	tests, err := Dir(dir, itest.WithGroups("all"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type loaded struct {
		Name   string
		Groups []string
	}
	actual := []loaded{}
	for _, tc := range tests {
		actual = append(actual, loaded{Name: tc.FullName(), Groups: tc.Groups()})
	}

	expected := []loaded{
		{Name: "customers.CustomerCheck", Groups: []string{"smoke", "all"}},
		{Name: "custom.Explicit", Groups: []string{"all"}},
		{Name: "orders.inbound.OrderNew", Groups: []string{"all"}},
		{Name: "TopLevel", Groups: []string{"all"}},
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("Dir() mismatch (-want +got):\n%s", diff)
	}
}

func TestFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"broken.yaml": "name: Broken\nnosuchfield: 1\n",
	})
	defer os.RemoveAll(dir)

	if _, err := File(filepath.Join(dir, "missing.yaml")); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("unexpected error: %v", err)
	}

	_, err := File(filepath.Join(dir, "broken.yaml"))
	if err == nil || !strings.Contains(err.Error(), "Error while loading") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestYAML(t *testing.T) {
	tc, err := YAML("name: Inline\nactions:\n- echo: hi\n", itest.WithPackage("inline"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.FullName() != "inline.Inline" || len(tc.Actions()) != 1 {
		t.Errorf("unexpected test case %s", tc)
	}
}
