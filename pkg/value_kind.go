package itest

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// ValueKind selects how a converted value is compared to its control value.
type ValueKind int

const (
	// ScalarKind values are compared by value equality.
	ScalarKind ValueKind = iota
	// SequenceKind values are compared by their canonical "[a, b, c]" form.
	SequenceKind
	// StringArrayKind values are compared by their comma-joined form.
	StringArrayKind
	// BytesKind values are compared by their base64 encoding.
	BytesKind
)

func (k ValueKind) String() string {
	switch k {
	case SequenceKind:
		return "sequence"
	case StringArrayKind:
		return "string array"
	case BytesKind:
		return "bytes"
	default:
		return "scalar"
	}
}

func KindOfValue(v interface{}) ValueKind {
	switch v.(type) {
	case []byte:
		return BytesKind
	case []string:
		return StringArrayKind
	}

	if v == nil {
		return ScalarKind
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return SequenceKind
	default:
		return ScalarKind
	}
}

// comparison reports whether actual equals expected and returns the forms of
// both values to print on mismatch.
type comparison func(actual, expected interface{}) (equal bool, renderedActual, renderedExpected string)

var comparisons = map[ValueKind]comparison{
	ScalarKind:      compareScalars,
	SequenceKind:    compareSequences,
	StringArrayKind: compareStringArrays,
	BytesKind:       compareBytes,
}

func compareScalars(actual, expected interface{}) (bool, string, string) {
	return cmp.Equal(actual, expected), fmt.Sprintf("%v", actual), fmt.Sprintf("%v", expected)
}

func compareSequences(actual, expected interface{}) (bool, string, string) {
	a, e := canonicalSequence(actual), canonicalSequence(expected)
	return a == e, a, e
}

func compareStringArrays(actual, expected interface{}) (bool, string, string) {
	a := strings.Join(actual.([]string), ",")
	e := strings.Join(expected.([]string), ",")
	return a == e, a, e
}

func compareBytes(actual, expected interface{}) (bool, string, string) {
	a := base64.StdEncoding.EncodeToString(actual.([]byte))
	e := base64.StdEncoding.EncodeToString(expected.([]byte))
	return a == e, a, e
}

func canonicalSequence(v interface{}) string {
	rv := reflect.ValueOf(v)
	items := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = stringify(rv.Index(i).Interface())
	}
	return "[" + strings.Join(items, ", ") + "]"
}
