package itest

import (
	"fmt"
	"io/ioutil"
	"strings"
	"text/template"

	"github.com/mumoshu/itest/pkg/util/maputil"
	"gopkg.in/yaml.v2"
)

func templateFuncs(ctx *Context) template.FuncMap {
	get := func(name string) (interface{}, error) {
		return ctx.GetVariable(name)
	}

	escapeDoubleQuotes := func(str string) string {
		return strings.Replace(str, "\"", "\\\"", -1)
	}

	return template.FuncMap{
		"get":                get,
		"dig":                dig,
		"readFile":           readFile,
		"toYaml":             toYaml,
		"fromYaml":           fromYaml,
		"escapeDoubleQuotes": escapeDoubleQuotes,
	}
}

func dig(path string, val interface{}) (interface{}, error) {
	return _dig(strings.Split(path, "."), val)
}

func _dig(keys []string, val interface{}) (interface{}, error) {
	if len(keys) == 0 {
		return val, nil
	}
	k := keys[0]
	switch source := val.(type) {
	case map[string]interface{}:
		if v, ok := source[k]; ok {
			return _dig(keys[1:], v)
		}
		return nil, fmt.Errorf("key \"%s\" not found", k)
	case map[interface{}]interface{}:
		converted, err := maputil.CastKeysToStrings(source)
		if err != nil {
			return nil, err
		}
		return _dig(keys, converted)
	default:
		return nil, fmt.Errorf("unexpected type of value %+v: %T", source, source)
	}
}

func readFile(path string) (string, error) {
	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func toYaml(val interface{}) (string, error) {
	bytes, err := yaml.Marshal(val)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func fromYaml(str string) map[string]interface{} {
	m := map[string]interface{}{}

	if err := yaml.Unmarshal([]byte(str), &m); err != nil {
		m["Error"] = err.Error()
	}
	return m
}
