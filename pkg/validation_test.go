package itest

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestValidateValue(t *testing.T) {
	testcases := []struct {
		actual   interface{}
		expected interface{}
		// message is a substring of the expected error message. Empty means no error.
		message string
	}{
		{actual: nil, expected: nil},
		{actual: nil, expected: ""},
		{actual: nil, expected: "a", message: "expected 'a' but was 'null'"},
		{actual: nil, expected: []byte{}, message: "but was 'null'"},
		{actual: nil, expected: []string{}, message: "but was 'null'"},
		{actual: "a", expected: nil, message: "expected 'null' but was 'a'"},
		{actual: "hello", expected: "hello"},
		{actual: "hello", expected: "world", message: "Values not equal for element 'field', expected 'world' but was 'hello'"},
		{actual: "42", expected: 42},
		{actual: 42, expected: 42},
		{actual: "42", expected: 43, message: "expected '43' but was '42'"},
		{actual: "08", expected: 8},
		{actual: "010", expected: 10},
		{actual: "010", expected: 8, message: "expected '8' but was '10'"},
		{actual: "18446744073709551615", expected: uint64(math.MaxUint64)},
		{actual: "true", expected: true},
		{actual: "1.5", expected: 1.5},
		{actual: "abc", expected: 42, message: "Validation failed"},
		{actual: []byte{0, 1}, expected: []byte{0, 1}},
		{actual: []byte{0, 1}, expected: []byte{0, 2}, message: "expected 'AAI=' but was 'AAE='"},
		{actual: "[1, 2, 3]", expected: []int{1, 2, 3}},
		{actual: []interface{}{1, 2, 3}, expected: []int{1, 2, 3}},
		{actual: "[1, 2, 3]", expected: []int{1, 2, 4}, message: "expected '[1, 2, 4]' but was '[1, 2, 3]'"},
		{actual: "a,b", expected: []string{"a", "b"}},
		{actual: "[a, b]", expected: []string{"a", "c"}, message: "expected 'a,c' but was 'a,b'"},
		{actual: "Hello", expected: "@equalsIgnoreCase('hello')@"},
		{actual: "Hello", expected: "@startsWith('x')@", message: "does not start with 'x'"},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			err := ValidateValue(tc.actual, tc.expected, "field", NewContext())
			if tc.message == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tc.message)
			}
			if KindOf(err) != ValidationError {
				t.Errorf("expected a validation error, got %s", KindOf(err))
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("unexpected message: want %q in %q", tc.message, err.Error())
			}
		})
	}
}

func TestValidateValueMentionsBothValues(t *testing.T) {
	err := ValidateValue("hello", "world", "greeting", NewContext())
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, s := range []string{"greeting", "hello", "world"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("expected %q in %q", s, err.Error())
		}
	}
}

func TestKindOfValue(t *testing.T) {
	testcases := []struct {
		value    interface{}
		expected ValueKind
	}{
		{value: nil, expected: ScalarKind},
		{value: "a", expected: ScalarKind},
		{value: 1, expected: ScalarKind},
		{value: []byte("a"), expected: BytesKind},
		{value: []string{"a"}, expected: StringArrayKind},
		{value: []int{1}, expected: SequenceKind},
		{value: [2]int{1, 2}, expected: SequenceKind},
	}

	for i, tc := range testcases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			if actual := KindOfValue(tc.value); actual != tc.expected {
				t.Errorf("KindOfValue(%#v) = %s, want %s", tc.value, actual, tc.expected)
			}
		})
	}
}
