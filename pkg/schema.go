package itest

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema is a named, compiled JSON schema.
type JSONSchema struct {
	Name   string
	schema *gojsonschema.Schema
}

func NewJSONSchema(name string, loader gojsonschema.JSONLoader) (*JSONSchema, error) {
	s, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed compiling json schema %s", name)
	}
	return &JSONSchema{Name: name, schema: s}, nil
}

func NewJSONSchemaFromString(name, source string) (*JSONSchema, error) {
	return NewJSONSchema(name, gojsonschema.NewStringLoader(source))
}

// Validate validates a JSON document. Every schema violation is listed in the
// returned ValidationError.
func (s *JSONSchema) Validate(payload string) error {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return NewValidationError(err, "failed validating payload against json schema %s", s.Name)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, len(result.Errors()))
	for i, e := range result.Errors() {
		problems[i] = "- " + e.String()
	}

	return NewValidationError(nil, "json schema %s rejected the payload:\n%s", s.Name, strings.Join(problems, "\n"))
}

type SchemaRepository struct {
	Name    string
	Schemas []*JSONSchema
}

// ValidationContext narrows the schemas a payload is validated against.
// SchemaRepository takes priority over Schema.
type ValidationContext struct {
	Schema           string
	SchemaRepository string
	SchemaValidation bool
}

type SchemaLookup interface {
	LookupSchema(name string) (*JSONSchema, bool)
}

// SchemaRegistry holds schemas by name. Safe for concurrent reads.
type SchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string]*JSONSchema
}

func NewSchemaRegistry(schemas ...*JSONSchema) *SchemaRegistry {
	r := &SchemaRegistry{schemas: map[string]*JSONSchema{}}
	for _, s := range schemas {
		r.schemas[s.Name] = s
	}
	return r
}

func (r *SchemaRegistry) Register(s *JSONSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Name] = s
}

func (r *SchemaRegistry) LookupSchema(name string) (*JSONSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// SelectSchemas returns the schemas that apply to a validation. A named
// repository wins over a named schema; when neither is set or nothing
// matches, the result is empty.
func SelectSchemas(repositories []*SchemaRepository, vctx ValidationContext, lookup SchemaLookup) []*JSONSchema {
	if strings.TrimSpace(vctx.SchemaRepository) != "" {
		for _, r := range repositories {
			if r.Name == vctx.SchemaRepository {
				return r.Schemas
			}
		}
		log.Debugf("no schema repository named %s", vctx.SchemaRepository)
		return []*JSONSchema{}
	}

	if strings.TrimSpace(vctx.Schema) != "" && lookup != nil {
		if s, ok := lookup.LookupSchema(vctx.Schema); ok && s != nil {
			return []*JSONSchema{s}
		}
		log.Debugf("no schema named %s", vctx.Schema)
	}

	return []*JSONSchema{}
}

// ValidateJSONSchemas passes when at least one of the schemas accepts the
// payload. An empty schema list always passes.
func ValidateJSONSchemas(payload string, schemas []*JSONSchema) error {
	if len(schemas) == 0 {
		return nil
	}

	reports := make([]string, 0, len(schemas))
	for _, s := range schemas {
		err := s.Validate(payload)
		if err == nil {
			log.Debugf("payload accepted by json schema %s", s.Name)
			return nil
		}
		reports = append(reports, err.Error())
	}

	return NewValidationError(nil, "json schema validation failed for all %d schemas:\n%s", len(schemas), strings.Join(reports, "\n"))
}
