package itest

import (
	"github.com/mumoshu/itest/pkg/util/maputil"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// TestCaseDef is the YAML form of a test case.
type TestCaseDef struct {
	Name        string        `yaml:"name,omitempty"`
	Package     string        `yaml:"package,omitempty"`
	Author      string        `yaml:"author,omitempty"`
	Description string        `yaml:"description,omitempty"`
	Status      string        `yaml:"status,omitempty"`
	Groups      []string      `yaml:"groups,omitempty"`
	Variables   yaml.MapSlice `yaml:"variables,omitempty"`
	Actions     []interface{} `yaml:"actions,omitempty"`
	Finally     []interface{} `yaml:"finally,omitempty"`
}

func ReadTestCaseDefFromBytes(data []byte) (*TestCaseDef, error) {
	d := &TestCaseDef{}
	if err := yaml.UnmarshalStrict(data, d); err != nil {
		return nil, errors.Wrapf(err, "yaml.UnmarshalStrict failed")
	}
	return d, nil
}

// NewTestCaseFromDef builds a test case. opts are applied after the
// definition, so they can add hooks or override the package.
func NewTestCaseFromDef(d *TestCaseDef, opts ...TestCaseOption) (*TestCase, error) {
	status, err := ParseStatus(d.Status)
	if err != nil {
		return nil, errors.Wrapf(err, "test case %s", d.Name)
	}

	actions, err := LoadActions("action", d.Actions)
	if err != nil {
		return nil, errors.Wrapf(err, "test case %s", d.Name)
	}

	finally, err := LoadActions("finally", d.Finally)
	if err != nil {
		return nil, errors.Wrapf(err, "test case %s", d.Name)
	}

	defOpts := []TestCaseOption{
		WithPackage(d.Package),
		WithMetaInfo(MetaInfo{Author: d.Author, Description: d.Description, Status: status}),
		WithGroups(d.Groups...),
		WithActions(actions...),
		WithFinally(finally...),
	}

	for _, item := range d.Variables {
		name, ok := item.Key.(string)
		if !ok {
			return nil, errors.Errorf("test case %s: variable name %v is not a string", d.Name, item.Key)
		}
		value, err := normalizeYAMLValue(item.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "test case %s: variable %s", d.Name, name)
		}
		defOpts = append(defOpts, WithVariable(name, value))
	}

	t := NewTestCase(d.Name, append(defOpts, opts...)...)

	if err := t.Validate(); err != nil {
		return nil, err
	}

	log.WithField("test", t.FullName()).Debugf("test case loaded: %d actions, %d finally actions", len(actions), len(finally))

	return t, nil
}

// normalizeYAMLValue turns the nested mappings of a variable, which yaml.v2
// decodes as MapSlice below a MapSlice, into map[string]interface{}.
func normalizeYAMLValue(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case yaml.MapSlice:
		m := make(map[string]interface{}, len(t))
		for _, item := range t {
			k, ok := item.Key.(string)
			if !ok {
				return nil, errors.Errorf("key %v is not a string", item.Key)
			}
			value, err := normalizeYAMLValue(item.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "%s", k)
			}
			m[k] = value
		}
		return m, nil
	case map[interface{}]interface{}:
		return maputil.RecursivelyStringifyKeys(t)
	case []interface{}:
		items := make([]interface{}, len(t))
		for i, item := range t {
			value, err := normalizeYAMLValue(item)
			if err != nil {
				return nil, errors.Wrapf(err, "[%d]", i)
			}
			items[i] = value
		}
		return items, nil
	default:
		return v, nil
	}
}
