package itest

import (
	"fmt"
	"strings"
	"testing"
)

func TestResolveDynamicContent(t *testing.T) {
	vars := map[string]interface{}{
		"user":     "alice",
		"count":    3,
		"empty":    nil,
		"order":    map[string]interface{}{"id": "o-1", "lines": map[string]interface{}{"first": "apple"}},
		"a.dotted": "dotted",
		"payload":  `{"note": "{{ not a template }}"}`,
	}

	testcases := []struct {
		input    string
		expected string
		err      string
	}{
		{input: "plain", expected: "plain"},
		{input: "Hello ${user}", expected: "Hello alice"},
		{input: "${user}-${count}", expected: "alice-3"},
		{input: "${ user }", expected: "alice"},
		{input: "[${empty}]", expected: "[]"},
		{input: "${order.id}", expected: "o-1"},
		{input: "${order.lines.first}", expected: "apple"},
		{input: "${a.dotted}", expected: "dotted"},
		{input: "$${user}", expected: "${user}"},
		{input: "cost: $5", expected: "cost: $5"},
		{input: "${payload}", expected: `{"note": "{{ not a template }}"}`},
		{input: "${payload} by ${user}", expected: `{"note": "{{ not a template }}"} by alice`},
		{input: `${payload} {{ "abc" | upper }}`, expected: `{"note": "{{ not a template }}"} ABC`},
		{input: `{{ "${user}" | upper }}`, expected: "ALICE"},
		{input: `{{ "abc" | upper }}`, expected: "ABC"},
		{input: `{{ .user | title }} has {{ .count }}`, expected: "Alice has 3"},
		{input: `{{ get "a.dotted" }}`, expected: "dotted"},
		{input: `{{ .order | dig "lines.first" }}`, expected: "apple"},
		{input: `{{ dig "lines.first" .order }}`, expected: "apple"},
		{input: "${missing}", err: "unknown variable 'missing'"},
		{input: "${user", err: "unclosed variable reference"},
		{input: "${}", err: "empty variable reference"},
		{input: "{{ .missing }}", err: "failed rendering"},
		{input: "{{ nosuchfunc }}", err: "failed parsing"},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			ctx := NewContext(WithVariables(vars))
			actual, err := ctx.ResolveDynamicContent(tc.input)
			if tc.err != "" {
				if err == nil {
					t.Fatalf("expected error, got %q", actual)
				}
				if KindOf(err) != FatalSetupError {
					t.Errorf("expected a fatal setup error, got %s", KindOf(err))
				}
				if !strings.Contains(err.Error(), tc.err) {
					t.Errorf("unexpected message: want %q in %q", tc.err, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if actual != tc.expected {
				t.Errorf("ResolveDynamicContent(%q) = %q, want %q", tc.input, actual, tc.expected)
			}
		})
	}
}

func TestTemplateResolverExtraFuncs(t *testing.T) {
	r := NewTemplateResolver(map[string]interface{}{
		"greet": func(name string) string { return "hi " + name },
	})
	ctx := NewContext(WithResolver(r), WithVariables(map[string]interface{}{"user": "bob"}))

	actual, err := ctx.ResolveDynamicContent(`{{ greet "${user}" }}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actual != "hi bob" {
		t.Errorf("unexpected result %q", actual)
	}
}
