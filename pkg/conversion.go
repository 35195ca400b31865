package itest

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mumoshu/itest/pkg/util/maputil"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

// Converter turns the string form of a value into a value of the target type.
type Converter interface {
	Convert(value string, target reflect.Type) (interface{}, error)
}

type ConversionError struct {
	Value  string
	Target reflect.Type
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unable to convert '%s' to %s: %v", e.Value, e.Target, e.Err)
	}
	return fmt.Sprintf("unable to convert '%s' to %s", e.Value, e.Target)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

var durationType = reflect.TypeOf(time.Duration(0))

type DefaultConverter struct{}

func (DefaultConverter) Convert(value string, target reflect.Type) (interface{}, error) {
	if target == nil {
		return nil, &ConversionError{Value: value, Target: target}
	}

	fail := func(err error) (interface{}, error) {
		return nil, &ConversionError{Value: value, Target: target, Err: err}
	}

	if target == durationType {
		d, err := cast.ToDurationE(value)
		if err != nil {
			return fail(err)
		}
		return d, nil
	}

	switch target.Kind() {
	case reflect.String:
		return reflect.ValueOf(value).Convert(target).Interface(), nil
	case reflect.Bool:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fail(err)
		}
		return reflect.ValueOf(b).Convert(target).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// decimal only: "010" is ten, not eight
		i, err := strconv.ParseInt(strings.TrimSpace(value), 10, target.Bits())
		if err != nil {
			return fail(err)
		}
		v := reflect.New(target).Elem()
		v.SetInt(i)
		return v.Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(strings.TrimSpace(value), 10, target.Bits())
		if err != nil {
			return fail(err)
		}
		v := reflect.New(target).Elem()
		v.SetUint(u)
		return v.Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(strings.TrimSpace(value))
		if err != nil {
			return fail(err)
		}
		v := reflect.New(target).Elem()
		if v.OverflowFloat(f) {
			return fail(fmt.Errorf("value out of range"))
		}
		v.SetFloat(f)
		return v.Interface(), nil
	case reflect.Slice:
		switch target.Elem().Kind() {
		case reflect.Uint8:
			return reflect.ValueOf([]byte(value)).Convert(target).Interface(), nil
		case reflect.String:
			items := splitList(value)
			v := reflect.MakeSlice(target, len(items), len(items))
			for i, item := range items {
				v.Index(i).SetString(item)
			}
			return v.Interface(), nil
		case reflect.Interface:
			items := splitList(value)
			v := reflect.MakeSlice(target, len(items), len(items))
			for i, item := range items {
				v.Index(i).Set(reflect.ValueOf(item))
			}
			return v.Interface(), nil
		default:
			items := splitList(value)
			v := reflect.MakeSlice(target, len(items), len(items))
			for i, item := range items {
				converted, err := DefaultConverter{}.Convert(item, target.Elem())
				if err != nil {
					return fail(err)
				}
				v.Index(i).Set(reflect.ValueOf(converted))
			}
			return v.Interface(), nil
		}
	case reflect.Map:
		if target.Key().Kind() != reflect.String {
			break
		}
		m := map[interface{}]interface{}{}
		if err := yaml.Unmarshal([]byte(value), &m); err != nil {
			return fail(err)
		}
		converted, err := maputil.RecursivelyStringifyKeys(m)
		if err != nil {
			return fail(err)
		}
		if target == reflect.TypeOf(converted) {
			return converted, nil
		}
		v := reflect.MakeMapWithSize(target, len(converted))
		for k, item := range converted {
			if target.Elem().Kind() == reflect.String {
				v.SetMapIndex(reflect.ValueOf(k).Convert(target.Key()), reflect.ValueOf(stringify(item)).Convert(target.Elem()))
				continue
			}
			iv := reflect.ValueOf(item)
			if item == nil || !iv.Type().ConvertibleTo(target.Elem()) {
				return fail(fmt.Errorf("unexpected value for key %s: %v(%T)", k, item, item))
			}
			v.SetMapIndex(reflect.ValueOf(k).Convert(target.Key()), iv.Convert(target.Elem()))
		}
		return v.Interface(), nil
	}

	return fail(fmt.Errorf("unsupported target type"))
}

// splitList parses "a, b, c" or "[a, b, c]" into its trimmed items.
func splitList(value string) []string {
	s := strings.TrimSpace(value)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
	}
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	items := strings.Split(s, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items
}
