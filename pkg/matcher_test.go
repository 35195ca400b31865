package itest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseMatcherExpression(t *testing.T) {
	testcases := []struct {
		input    string
		expected MatcherExpression
		err      bool
	}{
		{input: "@ignore@", expected: MatcherExpression{Name: "ignore"}},
		{input: "@contains('foo')@", expected: MatcherExpression{Name: "contains", Parameters: "'foo'"}},
		{input: "@itest:startsWith('a', 'b')@", expected: MatcherExpression{Prefix: "itest", Name: "startsWith", Parameters: "'a', 'b'"}},
		{input: "@contains('foo'@", err: true},
		{input: "@()@", err: true},
		{input: "contains", err: true},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			actual, err := ParseMatcherExpression(tc.input)
			if tc.err != (err != nil) {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.expected, actual); diff != "" {
				t.Errorf("ParseMatcherExpression() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplitMatcherParameters(t *testing.T) {
	testcases := []struct {
		input    string
		expected []string
	}{
		{input: "", expected: []string{}},
		{input: "a", expected: []string{"a"}},
		{input: " a , b ", expected: []string{"a", "b"}},
		{input: "'a,b', c", expected: []string{"a,b", "c"}},
		{input: "'it''s'", expected: []string{"it''s"}},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			if diff := cmp.Diff(tc.expected, SplitMatcherParameters(tc.input)); diff != "" {
				t.Errorf("SplitMatcherParameters() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultMatchers(t *testing.T) {
	testcases := []struct {
		value      string
		expression string
		valid      bool
	}{
		{value: "anything", expression: "@ignore@", valid: true},
		{value: "Hello", expression: "@equalsIgnoreCase('HELLO')@", valid: true},
		{value: "Hello", expression: "@itest:equalsIgnoreCase('bye')@", valid: false},
		{value: "foobar", expression: "@contains('oba')@", valid: true},
		{value: "FooBar", expression: "@containsIgnoreCase('oba')@", valid: true},
		{value: "foobar", expression: "@startsWith('foo')@", valid: true},
		{value: "foobar", expression: "@endsWith('foo')@", valid: false},
		{value: "order-17", expression: "@matches('order-[0-9]+')@", valid: true},
		{value: "order-17x", expression: "@matches('order-[0-9]+')@", valid: false},
		{value: "3.14", expression: "@isNumber()@", valid: true},
		{value: "pi", expression: "@isNumber()@", valid: false},
		{value: "10", expression: "@greaterThan(9)@", valid: true},
		{value: "10", expression: "@greaterThan(10)@", valid: false},
		{value: "10", expression: "@lowerThan(11)@", valid: true},
		{value: "", expression: "@isEmpty()@", valid: true},
		{value: "x", expression: "@isNotEmpty()@", valid: true},
		{value: "a\nb", expression: "@ignoreNewLine('ab')@", valid: true},
		{value: "  a ", expression: "@trim('a')@", valid: true},
		{value: "123e4567-e89b-12d3-a456-426614174000", expression: "@isUUID()@", valid: true},
		{value: "not-a-uuid", expression: "@isUUID()@", valid: false},
		{value: "42", expression: "@expression('number > 40')@", valid: true},
		{value: "abc", expression: "@expression('len(value) == 3')@", valid: true},
		{value: "abc", expression: "@expression('value == \"abd\"')@", valid: false},
		{value: "foo", expression: "@contains()@", valid: false},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			ctx := NewContext()
			err := ctx.Matchers().Resolve("field", tc.value, tc.expression, ctx)
			if tc.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.valid {
				if err == nil {
					t.Errorf("expected %q to reject %q", tc.expression, tc.value)
				} else if KindOf(err) != ValidationError {
					t.Errorf("expected a validation error, got %s: %v", KindOf(err), err)
				}
			}
		})
	}
}

func TestMatcherResolvesParameters(t *testing.T) {
	ctx := NewContext(WithVariables(map[string]interface{}{"prefix": "ord"}))
	if err := ctx.Matchers().Resolve("id", "order-1", "@startsWith('${prefix}')@", ctx); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVariableMatcher(t *testing.T) {
	ctx := NewContext()
	lib := ctx.Matchers()

	if err := lib.Resolve("orderId", "17", "@variable('id')@", ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := lib.Resolve("status", "NEW", "@variable()@", ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := map[string]interface{}{"id": "17", "status": "NEW"}
	if diff := cmp.Diff(expected, ctx.Variables()); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownMatcher(t *testing.T) {
	ctx := NewContext()

	testcases := []struct {
		expression string
		message    string
	}{
		{expression: "@noSuchMatcher()@", message: "unknown validation matcher 'noSuchMatcher'"},
		{expression: "@other:contains('a')@", message: "unknown validation matcher library 'other'"},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			err := ctx.Matchers().Resolve("field", "a", tc.expression, ctx)
			if err == nil || !strings.Contains(err.Error(), tc.message) {
				t.Errorf("expected error containing %q, got %v", tc.message, err)
			}
		})
	}
}

func TestCustomMatcher(t *testing.T) {
	lib := NewMatcherLibrary("custom")
	calls := [][]string{}
	lib.Register("each", MatcherFunc(func(field, value string, params []string, ctx *Context) error {
		calls = append(calls, append([]string{field, value}, params...))
		return nil
	}))

	ctx := NewContext(WithMatchers(lib))
	if err := ValidateValue("v", "@custom:each('a,b', c)@", "f", ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := [][]string{{"f", "v", "a,b", "c"}}
	if diff := cmp.Diff(expected, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"each"}, lib.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
