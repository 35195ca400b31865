package itest

import (
	"time"

	"github.com/mumoshu/itest/pkg/api/transport"
	"github.com/mumoshu/itest/pkg/get"
	inmemory "github.com/mumoshu/itest/pkg/transport"
	"github.com/mumoshu/itest/pkg/util/maputil"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config is the project configuration. Lists are used instead of maps
// wherever names are user-defined, because viper lower-cases map keys.
type Config struct {
	Variables          []VariableConfig         `mapstructure:"variables"`
	Schemas            []SchemaConfig           `mapstructure:"schemas"`
	SchemaRepositories []SchemaRepositoryConfig `mapstructure:"schemaRepositories"`
	Endpoints          []EndpointConfig         `mapstructure:"endpoints"`
	Before             []SequenceConfig         `mapstructure:"before"`
	After              []SequenceConfig         `mapstructure:"after"`
	Workers            int                      `mapstructure:"workers"`
	LogLevel           string                   `mapstructure:"log_level"`
}

type VariableConfig struct {
	Name  string      `mapstructure:"name"`
	Value interface{} `mapstructure:"value"`
}

type SchemaConfig struct {
	Name     string `mapstructure:"name"`
	Location string `mapstructure:"location"`
}

type SchemaRepositoryConfig struct {
	Name      string   `mapstructure:"name"`
	Locations []string `mapstructure:"locations"`
}

type EndpointConfig struct {
	Name     string        `mapstructure:"name"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Capacity int           `mapstructure:"capacity"`
}

type SequenceConfig struct {
	Name     string        `mapstructure:"name"`
	Tests    string        `mapstructure:"tests"`
	Packages string        `mapstructure:"packages"`
	Groups   []string      `mapstructure:"groups"`
	Actions  []interface{} `mapstructure:"actions"`
}

// Environment is everything built from a Config that test runs share.
type Environment struct {
	Variables    map[string]interface{}
	Before       []Hook
	After        []Hook
	Schemas      *SchemaRegistry
	Repositories []*SchemaRepository
	Endpoints    []transport.Endpoint
	Workers      int
}

func (c *Config) Build(fetcher *get.Fetcher) (*Environment, error) {
	e := &Environment{
		Variables:    map[string]interface{}{},
		Schemas:      NewSchemaRegistry(),
		Repositories: []*SchemaRepository{},
		Endpoints:    []transport.Endpoint{},
		Workers:      c.Workers,
	}

	for _, v := range c.Variables {
		if v.Name == "" {
			return nil, errors.New("variable without a name")
		}
		value := v.Value
		if m, ok := value.(map[interface{}]interface{}); ok {
			converted, err := maputil.RecursivelyStringifyKeys(m)
			if err != nil {
				return nil, errors.Wrapf(err, "variable %s", v.Name)
			}
			value = converted
		}
		e.Variables[v.Name] = value
	}

	for _, s := range c.Schemas {
		schema, err := LoadSchema(s.Name, s.Location, fetcher)
		if err != nil {
			return nil, err
		}
		e.Schemas.Register(schema)
	}

	for _, r := range c.SchemaRepositories {
		repo, err := LoadSchemaRepository(r.Name, r.Locations, fetcher)
		if err != nil {
			return nil, err
		}
		e.Repositories = append(e.Repositories, repo)
	}

	for _, ep := range c.Endpoints {
		if ep.Name == "" {
			return nil, errors.New("endpoint without a name")
		}
		e.Endpoints = append(e.Endpoints, inmemory.NewChannelEndpoint(ep.Name, ep.Timeout, ep.Capacity))
	}

	var err error
	if e.Before, err = buildHooks("before", c.Before); err != nil {
		return nil, err
	}
	if e.After, err = buildHooks("after", c.After); err != nil {
		return nil, err
	}

	log.Debugf("built environment: %d variables, %d schemas, %d schema repositories, %d endpoints, %d before hooks, %d after hooks",
		len(e.Variables), len(c.Schemas), len(e.Repositories), len(e.Endpoints), len(e.Before), len(e.After))

	return e, nil
}

func buildHooks(kind string, configs []SequenceConfig) ([]Hook, error) {
	hooks := make([]Hook, 0, len(configs))
	for i, c := range configs {
		actions, err := LoadActions(kind, c.Actions)
		if err != nil {
			return nil, errors.Wrapf(err, "%s[%d]", kind, i)
		}
		hooks = append(hooks, &Sequence{
			Name:     c.Name,
			Tests:    c.Tests,
			Packages: c.Packages,
			Groups:   c.Groups,
			Actions:  actions,
		})
	}
	return hooks, nil
}

// NewContext creates the context of a single run. Global variables are
// copied so that runs never see each other's writes.
func (e *Environment) NewContext(opts ...ContextOption) *Context {
	defaults := []ContextOption{
		WithVariables(e.Variables),
		WithSchemaRegistry(e.Schemas),
		WithSchemaRepositories(e.Repositories...),
		WithEndpoints(e.Endpoints...),
	}
	return NewContext(append(defaults, opts...)...)
}

// TestCaseOptions attaches the hooks to test cases.
func (e *Environment) TestCaseOptions() []TestCaseOption {
	return []TestCaseOption{
		WithBeforeTest(e.Before...),
		WithAfterTest(e.After...),
	}
}
