package itest

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mumoshu/itest/pkg/api/transport"
	"github.com/mumoshu/itest/pkg/util/maputil"
	log "github.com/sirupsen/logrus"
)

type ReceiveActionLoader struct{}

func (l ReceiveActionLoader) Key() string {
	return "receive"
}

func (l ReceiveActionLoader) LoadAction(def ActionDef) (Action, error) {
	a := &ReceiveAction{
		ActionMeta:       def.Meta(),
		SchemaValidation: true,
	}
	if err := def.Decode(l.Key(), "", a); err != nil {
		return nil, err
	}
	if a.Endpoint == "" {
		return nil, NewFatalSetupError(nil, "receive action %s is missing an endpoint", a.Name)
	}
	return a, nil
}

// Extraction maps variable names to header names and payload paths.
type Extraction struct {
	Headers map[string]string `mapstructure:"headers"`
	Payload map[string]string `mapstructure:"payload"`
}

// ReceiveAction waits for a message on an endpoint and validates it.
//
// Headers and Fields map header names and dotted JSON payload paths to
// expected values. Expected values are matcher expressions, plain strings or
// typed control values. Payload, when set, is compared with the whole
// payload, structurally when both sides are JSON.
type ReceiveAction struct {
	ActionMeta       `mapstructure:",squash"`
	Endpoint         string                 `mapstructure:"endpoint"`
	Timeout          time.Duration          `mapstructure:"timeout"`
	Headers          map[string]interface{} `mapstructure:"headers"`
	Fields           map[string]interface{} `mapstructure:"fields"`
	Payload          string                 `mapstructure:"payload"`
	Schema           string                 `mapstructure:"schema"`
	SchemaRepository string                 `mapstructure:"schemaRepository"`
	SchemaValidation bool                   `mapstructure:"schemaValidation"`
	Extract          Extraction             `mapstructure:"extract"`
}

func (a *ReceiveAction) Execute(ctx *Context) error {
	endpoint, err := ctx.Endpoint(a.Endpoint)
	if err != nil {
		return err
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = endpoint.DefaultTimeout()
	}

	logger := log.WithFields(log.Fields{"action": a.Name, "endpoint": endpoint.Name()})
	logger.Debugf("receiving message with timeout %v", timeout)

	msg, err := endpoint.Receive(timeout)
	if err != nil {
		if _, ok := err.(*transport.TimeoutError); ok {
			return NewTimeoutError(err, "no message received on endpoint '%s'", endpoint.Name())
		}
		return NewTestFailure(err, "failed receiving message from endpoint '%s'", endpoint.Name())
	}

	logger.Infof("received message %s", msg.ID)

	ctx.OnInboundMessage(msg)

	if err := a.validate(msg, ctx); err != nil {
		return err
	}

	return a.extract(msg, ctx)
}

func (a *ReceiveAction) validate(msg *transport.Message, ctx *Context) error {
	if a.SchemaValidation {
		schemas := SelectSchemas(ctx.SchemaRepositories(), ValidationContext{
			Schema:           a.Schema,
			SchemaRepository: a.SchemaRepository,
			SchemaValidation: a.SchemaValidation,
		}, ctx.SchemaRegistry())
		if err := ValidateJSONSchemas(msg.Payload, schemas); err != nil {
			return err
		}
	}

	for _, name := range sortedKeys(a.Headers) {
		actual, _ := msg.Header(name)
		expected, err := resolveExpected(a.Headers[name], ctx)
		if err != nil {
			return err
		}
		if err := ValidateValue(actual, expected, name, ctx); err != nil {
			return err
		}
	}

	if len(a.Fields) > 0 {
		doc, err := decodeJSONObject(msg.Payload)
		if err != nil {
			return err
		}
		for _, path := range sortedKeys(a.Fields) {
			actual, err := maputil.GetValueAtPath(doc, strings.Split(path, "."))
			if err != nil {
				return NewValidationError(err, "unable to read element '%s'", path)
			}
			expected, err := resolveExpected(a.Fields[path], ctx)
			if err != nil {
				return err
			}
			if err := ValidateValue(renderJSONValue(actual), expected, path, ctx); err != nil {
				return err
			}
		}
	}

	if a.Payload != "" {
		expected, err := ctx.ResolveDynamicContent(a.Payload)
		if err != nil {
			return err
		}
		if err := comparePayloads(msg.Payload, expected); err != nil {
			return err
		}
	}

	return nil
}

func (a *ReceiveAction) extract(msg *transport.Message, ctx *Context) error {
	for _, name := range sortedStringKeys(a.Extract.Headers) {
		header := a.Extract.Headers[name]
		v, ok := msg.Header(header)
		if !ok {
			return NewValidationError(nil, "failed to extract header '%s': no such header", header)
		}
		ctx.SetVariable(name, v)
	}

	if len(a.Extract.Payload) == 0 {
		return nil
	}

	doc, err := decodeJSONObject(msg.Payload)
	if err != nil {
		return err
	}

	for _, name := range sortedStringKeys(a.Extract.Payload) {
		path := a.Extract.Payload[name]
		v, err := maputil.GetValueAtPath(doc, strings.Split(path, "."))
		if err != nil || v == nil {
			return NewValidationError(err, "failed to extract element '%s' from payload", path)
		}
		ctx.SetVariable(name, renderJSONValue(v))
	}

	return nil
}

func resolveExpected(expected interface{}, ctx *Context) (interface{}, error) {
	s, ok := expected.(string)
	if !ok || IsMatcherExpression(s) {
		return expected, nil
	}
	return ctx.ResolveDynamicContent(s)
}

func decodeJSONObject(payload string) (map[string]interface{}, error) {
	doc := map[string]interface{}{}
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, NewValidationError(err, "payload is not a JSON object")
	}
	return doc, nil
}

// renderJSONValue turns decoded JSON into the string form validated against
// expected values. Objects are re-encoded, arrays use the "[a, b]" form.
func renderJSONValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return canonicalSequence(t)
	case map[string]interface{}:
		bytes, err := json.Marshal(t)
		if err != nil {
			return stringify(t)
		}
		return string(bytes)
	default:
		return stringify(t)
	}
}

func comparePayloads(actual, expected string) error {
	var a, e interface{}
	if json.Unmarshal([]byte(actual), &a) == nil && json.Unmarshal([]byte(expected), &e) == nil {
		if diff := cmp.Diff(e, a); diff != "" {
			return NewValidationError(nil, "JSON payload does not match (-expected +actual):\n%s", diff)
		}
		return nil
	}

	if actual != expected {
		return NewValidationError(nil, BuildValueMismatchErrorMessage("Message payload not equal", expected, actual))
	}
	return nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
