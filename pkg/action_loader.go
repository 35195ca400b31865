package itest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/mumoshu/itest/pkg/util/maputil"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ActionDef is the raw definition of an action, as read from a test file:
//
//	- name: greet
//	  disabled: ${skipGreeting}
//	  echo:
//	    message: Hello ${user}
type ActionDef struct {
	raw map[string]interface{}
}

func NewActionDef(raw map[string]interface{}) ActionDef {
	return ActionDef{raw: raw}
}

func (d ActionDef) Raw() map[string]interface{} {
	return d.raw
}

func (d ActionDef) Get(key string) interface{} {
	return d.raw[key]
}

// Meta returns the fields shared by every action kind.
func (d ActionDef) Meta() ActionMeta {
	m := ActionMeta{}
	if err := decode(map[string]interface{}{
		"name":        d.raw["name"],
		"description": d.raw["description"],
		"disabled":    d.raw["disabled"],
	}, &m); err != nil {
		log.Debugf("ignoring malformed action metadata in %v: %v", d.raw, err)
	}
	return m
}

// Decode decodes the settings under key into out. A scalar setting is
// treated as the value of scalarField, e.g. `echo: hello` becomes {message: hello}.
func (d ActionDef) Decode(key, scalarField string, out interface{}) error {
	var input interface{}

	switch v := d.raw[key].(type) {
	case map[interface{}]interface{}:
		converted, err := maputil.RecursivelyStringifyKeys(v)
		if err != nil {
			return errors.Wrapf(err, "%s", key)
		}
		input = converted
	case map[string]interface{}:
		input = v
	case nil:
		input = map[string]interface{}{}
	default:
		if scalarField == "" {
			return errors.Errorf("%s: expected a map of settings but got %T", key, v)
		}
		input = map[string]interface{}{scalarField: v}
	}

	return errors.Wrapf(decode(input, out), "%s", key)
}

func decode(input interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

type ActionLoader interface {
	// Key is the key identifying the action kind in a definition.
	Key() string
	LoadAction(def ActionDef) (Action, error)
}

var (
	actionLoadersMu sync.RWMutex
	actionLoaders   = map[string]ActionLoader{}
)

// Register makes an action kind available to LoadAction. A loader registered
// later under the same key replaces the earlier one.
func Register(loader ActionLoader) {
	actionLoadersMu.Lock()
	defer actionLoadersMu.Unlock()
	actionLoaders[loader.Key()] = loader
}

func RegisteredActionKeys() []string {
	actionLoadersMu.RLock()
	defer actionLoadersMu.RUnlock()
	return keysOf(actionLoaders)
}

var metaKeys = map[string]bool{"name": true, "description": true, "disabled": true}

// LoadAction picks the loader by the single non-meta key of the definition.
func LoadAction(def ActionDef) (Action, error) {
	actionLoadersMu.RLock()
	defer actionLoadersMu.RUnlock()

	var found []ActionLoader
	for k := range def.raw {
		if metaKeys[k] {
			continue
		}
		loader, ok := actionLoaders[k]
		if !ok {
			return nil, errors.Errorf("unknown action %q: expected one of %v", k, keysOf(actionLoaders))
		}
		found = append(found, loader)
	}

	switch len(found) {
	case 0:
		return nil, errors.Errorf("no action found in %v", def.raw)
	case 1:
	default:
		return nil, errors.Errorf("more than one action found in %v", def.raw)
	}

	a, err := found[0].LoadAction(def)
	if err != nil {
		return nil, errors.Wrapf(err, "failed loading %s action", found[0].Key())
	}

	log.WithField("action", a.GetName()).Debugf("action loaded")

	return a, nil
}

// LoadActions loads a list of raw definitions, naming unnamed actions after
// their position.
func LoadActions(prefix string, defs []interface{}) ([]Action, error) {
	result := make([]Action, 0, len(defs))

	for i, d := range defs {
		var raw map[string]interface{}
		switch v := d.(type) {
		case map[interface{}]interface{}:
			converted, err := maputil.CastKeysToStrings(v)
			if err != nil {
				return nil, errors.Wrapf(err, "%s[%d]", prefix, i)
			}
			raw = converted
		case map[string]interface{}:
			raw = v
		default:
			return nil, errors.Errorf("%s[%d]: expected a map but got %T", prefix, i, d)
		}

		if raw["name"] == nil || raw["name"] == "" {
			raw["name"] = fmt.Sprintf("%s-%d", prefix, i+1)
		}

		a, err := LoadAction(NewActionDef(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "%s[%d]", prefix, i)
		}
		result = append(result, a)
	}

	return result, nil
}

func keysOf(m map[string]ActionLoader) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	Register(EchoActionLoader{})
	Register(CreateVariablesActionLoader{})
	Register(SleepActionLoader{})
	Register(FailActionLoader{})
	Register(ScriptActionLoader{})
	Register(SendActionLoader{})
	Register(ReceiveActionLoader{})
}
