package run

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
	itest "github.com/mumoshu/itest/pkg"
)

func setupProject(t *testing.T, files map[string]string) func() {
	t.Helper()

	dir, err := ioutil.TempDir("", "itest-run")
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

	pwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return func() {
		os.Chdir(pwd)
		os.RemoveAll(dir)
	}
}

var project = map[string]string{
	"itest.yaml": `
variables:
- name: customer
  value:
    name: globex
    tier: gold
endpoints:
- name: orders
  timeout: 1s
`,
	"tests/orders/order_created.yaml": `
groups: [smoke]
actions:
- send:
    endpoint: orders
    payload: '{"id": "${orderId}", "customer": "${customer.name}", "tier": "${customer.tier}"}'
- receive:
    endpoint: orders
    fields:
      id: ${orderId}
      customer: acme
      tier: gold
`,
	"tests/orders/broken.yml": `
name: Broken
groups: [slow]
actions:
- fail: broken
`,
}

func TestRun(t *testing.T) {
	testcases := []struct {
		groups   []string
		expected itest.Summary
		failures int
	}{
		{
			expected: itest.Summary{
				Success: 1,
				Failed:  1,
				Results: map[string]itest.Result{
					"orders.OrderCreated": itest.ResultSuccess,
					"orders.Broken":       itest.ResultFailed,
				},
			},
			failures: 1,
		},
		{
			groups: []string{"smoke"},
			expected: itest.Summary{
				Success: 1,
				Results: map[string]itest.Result{
					"orders.OrderCreated": itest.ResultSuccess,
				},
			},
		},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			cleanup := setupProject(t, project)
			defer cleanup()

			app := itest.NewApplication("itest")
			app.Env = "test"

			summary, err := Run(app, Opts{
				Paths:  []string{"tests"},
				Params: map[string]interface{}{"orderId": "o-1", "customer.name": "acme"},
				Groups: tc.groups,
			})

			if diff := cmp.Diff(tc.expected, summary); diff != "" {
				t.Errorf("Run() mismatch (-want +got):\n%s", diff)
			}

			if tc.failures == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			merr, ok := err.(*multierror.Error)
			if !ok {
				t.Fatalf("expected a *multierror.Error, got %T: %v", err, err)
			}
			if len(merr.Errors) != tc.failures {
				t.Errorf("expected %d failures, got %v", tc.failures, merr)
			}
		})
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cleanup := setupProject(t, map[string]string{
		"itest.yaml": "endpoints:\n- timeout: 1s\n",
	})
	defer cleanup()

	if _, err := Run(itest.NewApplication("itest"), Opts{Paths: []string{"."}}); err == nil {
		t.Errorf("expected an error for an endpoint without a name")
	}
}

func TestApplyParams(t *testing.T) {
	testcases := []struct {
		vars     map[string]interface{}
		params   map[string]interface{}
		expected map[string]interface{}
		err      bool
	}{
		{
			vars:     map[string]interface{}{"a": "1"},
			params:   map[string]interface{}{"a": "2", "b": "3"},
			expected: map[string]interface{}{"a": "2", "b": "3"},
		},
		{
			vars:     map[string]interface{}{"order": map[string]interface{}{"id": "1", "total": "5"}},
			params:   map[string]interface{}{"order.id": "2"},
			expected: map[string]interface{}{"order": map[string]interface{}{"id": "2", "total": "5"}},
		},
		{
			vars:     map[string]interface{}{},
			params:   map[string]interface{}{"order.id": "2"},
			expected: map[string]interface{}{"order": map[string]interface{}{"id": "2"}},
		},
		{
			vars:   map[string]interface{}{"order": "flat"},
			params: map[string]interface{}{"order.id": "2"},
			err:    true,
		},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			err := applyParams(tc.vars, tc.params)
			if tc.err {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.expected, tc.vars); diff != "" {
				t.Errorf("applyParams() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cleanup := setupProject(t, project)
	defer cleanup()

	tests, err := Load([]string{"tests/orders/broken.yml", "tests"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := []string{}
	for _, tc := range tests {
		names = append(names, tc.FullName())
	}
	expected := []string{"Broken", "orders.Broken", "orders.OrderCreated"}
	if diff := cmp.Diff(expected, names); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load([]string{"nosuch"}); err == nil {
		t.Errorf("expected an error for a missing path")
	}
}
