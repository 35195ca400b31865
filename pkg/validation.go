package itest

import (
	"fmt"
	"reflect"
)

// ValidateValue validates the actual value of the element at path against an
// expected value.
//
// A nil actual value matches a nil or empty expected value only. An expected
// string is either a validation matcher expression or compared literally.
// Any other expected value is a control value: the actual value is converted
// to its type and compared according to its ValueKind.
func ValidateValue(actual, expected interface{}, path string, ctx *Context) error {
	base := fmt.Sprintf("Values not equal for element '%s'", path)

	if actual == nil {
		if s, ok := expected.(string); expected == nil || (ok && s == "") {
			return nil
		}
		return NewValidationError(nil, BuildValueMismatchErrorMessage(base, expected, nil))
	}

	actualValue := stringify(actual)
	if KindOfValue(actual) == SequenceKind {
		actualValue = canonicalSequence(actual)
	}

	if expected == nil {
		return NewValidationError(nil, BuildValueMismatchErrorMessage(base, nil, actualValue))
	}

	if s, ok := expected.(string); ok {
		if IsMatcherExpression(s) {
			return ctx.Matchers().Resolve(path, actualValue, s, ctx)
		}
		if actualValue != s {
			return NewValidationError(nil, BuildValueMismatchErrorMessage(base, s, actualValue))
		}
		return nil
	}

	converted, err := ctx.Converter().Convert(actualValue, reflect.TypeOf(expected))
	if err != nil {
		return NewValidationError(err, "Validation failed")
	}

	equal, renderedActual, renderedExpected := comparisons[KindOfValue(expected)](converted, expected)
	if !equal {
		return NewValidationError(nil, BuildValueMismatchErrorMessage(base, renderedExpected, renderedActual))
	}

	return nil
}

func BuildValueMismatchErrorMessage(base string, expected, actual interface{}) string {
	return fmt.Sprintf("%s, expected '%s' but was '%s'", base, renderNullable(expected), renderNullable(actual))
}

func renderNullable(v interface{}) string {
	if v == nil {
		return "null"
	}
	return stringify(v)
}
