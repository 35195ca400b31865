package maputil

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// GetValueAtPath walks nested maps and slices. Slice elements are addressed by
// their index. A missing key yields a nil value and no error.
func GetValueAtPath(m map[string]interface{}, keyComponents []string) (interface{}, error) {
	var cur interface{} = m

	for i, k := range keyComponents {
		switch node := cur.(type) {
		case map[string]interface{}:
			cur = node[k]
		case map[interface{}]interface{}:
			cur = node[k]
		case []interface{}:
			idx, err := strconv.Atoi(k)
			if err != nil {
				return nil, errors.Errorf("%s is a list and can not be indexed by %q", strings.Join(keyComponents[:i], "."), k)
			}
			if idx < 0 || idx >= len(node) {
				return nil, nil
			}
			cur = node[idx]
		case nil:
			return nil, nil
		default:
			return nil, errors.Errorf("%s is not a map: type is %T", strings.Join(keyComponents[:i], "."), node)
		}
	}

	return cur, nil
}

func SetValueAtPath(m map[string]interface{}, keyComponents []string, value interface{}) error {
	k, rest := keyComponents[0], keyComponents[1:]

	log.Debugf("maputil sets %#v for %s", value, strings.Join(keyComponents, "."))

	if len(rest) == 0 {
		m[k] = value
		return nil
	}

	if m[k] == nil {
		m[k] = map[string]interface{}{}
	}
	nested, ok := m[k].(map[string]interface{})
	if !ok {
		return errors.Errorf("%s is not a map[string]interface{}", k)
	}
	if err := SetValueAtPath(nested, rest, value); err != nil {
		return errors.Wrapf(err, "failed setting value for key %+v", keyComponents)
	}
	return nil
}

// DeepMerge merges src into dest. Nested maps are merged, everything else in
// src replaces the value in dest.
func DeepMerge(dest map[string]interface{}, src map[string]interface{}) error {
	for k, v := range src {
		m, isMap := v.(map[string]interface{})
		if !isMap {
			dest[k] = v
			continue
		}

		switch d := dest[k].(type) {
		case map[string]interface{}:
		case map[interface{}]interface{}:
			converted, err := CastKeysToStrings(d)
			if err != nil {
				return errors.Wrapf(err, "failed merging %s", k)
			}
			dest[k] = converted
		case nil:
			dest[k] = map[string]interface{}{}
		default:
			return errors.Errorf("failed merging %s: can not merge a map into %T", k, d)
		}

		if err := DeepMerge(dest[k].(map[string]interface{}), m); err != nil {
			return err
		}
	}
	return nil
}

func CastKeysToStrings(m map[interface{}]interface{}) (map[string]interface{}, error) {
	r := map[string]interface{}{}
	for k, v := range m {
		str, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("Unexpected type %s for key %v", reflect.TypeOf(k), k)
		}
		r[str] = v
	}
	return r, nil
}

// RecursivelyStringifyKeys turns the map[interface{}]interface{} values produced by yaml.v2 into
// map[string]interface{}, which is what encoding/json and gojsonschema expect.
func RecursivelyStringifyKeys(m interface{}) (map[string]interface{}, error) {
	mm, err := recursivelyStringifyKeys(m)
	if err != nil {
		return nil, err
	}
	if ms, ok := mm.(map[string]interface{}); ok {
		return ms, nil
	}
	return nil, fmt.Errorf("bug: unexpected type of m: %T", mm)
}

func recursivelyStringifyKeys(m interface{}) (interface{}, error) {
	switch src := m.(type) {
	case map[string]interface{}:
		dst := map[string]interface{}{}
		for k, v1 := range src {
			v2, err := recursivelyStringifyKeys(v1)
			if err != nil {
				return nil, err
			}
			dst[k] = v2
		}
		return dst, nil
	case []interface{}:
		dst := make([]interface{}, len(src))
		for i, v1 := range src {
			v2, err := recursivelyStringifyKeys(v1)
			if err != nil {
				return nil, err
			}
			dst[i] = v2
		}
		return dst, nil
	case map[interface{}]interface{}:
		dst := map[string]interface{}{}
		for k1, v1 := range src {
			k2, ok := k1.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected type of key \"%v\": %T", k1, k1)
			}
			v2, err := recursivelyStringifyKeys(v1)
			if err != nil {
				return nil, err
			}
			dst[k2] = v2
		}
		return dst, nil
	}
	return m, nil
}
