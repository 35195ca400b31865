package itest

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/mumoshu/itest/pkg/api/transport"
	"github.com/mumoshu/itest/pkg/util/maputil"
	log "github.com/sirupsen/logrus"
)

// Context is the variable store of a single test run. It is not safe for
// concurrent use: every run owns its own Context.
type Context struct {
	variables map[string]interface{}

	resolver         ContentResolver
	listeners        *Listeners
	messageListeners []MessageListener
	matchers         *MatcherLibrary
	converter        Converter
	schemas          *SchemaRegistry
	repositories     []*SchemaRepository
	endpoints        map[string]transport.Endpoint
}

type ContextOption func(*Context)

func WithResolver(r ContentResolver) ContextOption {
	return func(c *Context) {
		c.resolver = r
	}
}

func WithListeners(l *Listeners) ContextOption {
	return func(c *Context) {
		c.listeners = l
	}
}

func WithMessageListeners(l ...MessageListener) ContextOption {
	return func(c *Context) {
		c.messageListeners = append(c.messageListeners, l...)
	}
}

func WithMatchers(m *MatcherLibrary) ContextOption {
	return func(c *Context) {
		c.matchers = m
	}
}

func WithConverter(conv Converter) ContextOption {
	return func(c *Context) {
		c.converter = conv
	}
}

func WithSchemaRegistry(r *SchemaRegistry) ContextOption {
	return func(c *Context) {
		c.schemas = r
	}
}

func WithSchemaRepositories(repos ...*SchemaRepository) ContextOption {
	return func(c *Context) {
		c.repositories = append(c.repositories, repos...)
	}
}

func WithEndpoints(endpoints ...transport.Endpoint) ContextOption {
	return func(c *Context) {
		for _, e := range endpoints {
			c.endpoints[e.Name()] = e
		}
	}
}

func WithVariables(vars map[string]interface{}) ContextOption {
	return func(c *Context) {
		for k, v := range vars {
			c.variables[k] = v
		}
	}
}

func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		variables: map[string]interface{}{},
		endpoints: map[string]transport.Endpoint{},
	}

	for _, o := range opts {
		o(c)
	}

	if c.resolver == nil {
		c.resolver = NewTemplateResolver()
	}
	if c.listeners == nil {
		c.listeners = NewListeners()
	}
	if c.matchers == nil {
		c.matchers = DefaultMatcherLibrary()
	}
	if c.converter == nil {
		c.converter = DefaultConverter{}
	}
	if c.schemas == nil {
		c.schemas = NewSchemaRegistry()
	}

	return c
}

// SetVariable stores value under name. The last write wins.
func (c *Context) SetVariable(name string, value interface{}) {
	log.Debugf("setting variable %s to %v", name, value)
	c.variables[name] = value
}

// GetVariable returns the value of a variable. Dotted names that are not
// defined as-is are looked up as paths into nested maps.
func (c *Context) GetVariable(name string) (interface{}, error) {
	if v, ok := c.variables[name]; ok {
		return v, nil
	}

	if strings.Contains(name, ".") {
		v, err := maputil.GetValueAtPath(c.variables, strings.Split(name, "."))
		if err != nil {
			return nil, NewFatalSetupError(err, "unable to read variable '%s'", name)
		}
		if v != nil {
			return v, nil
		}
	}

	return nil, NewFatalSetupError(nil, "unknown variable '%s'", name)
}

func (c *Context) HasVariables() bool {
	return len(c.variables) > 0
}

// Variables returns a copy of the variable store.
func (c *Context) Variables() map[string]interface{} {
	vars := make(map[string]interface{}, len(c.variables))
	for k, v := range c.variables {
		vars[k] = v
	}
	return vars
}

// ResolveDynamicContent expands variable and function references in raw.
func (c *Context) ResolveDynamicContent(raw string) (string, error) {
	return c.resolver.Resolve(raw, c)
}

func (c *Context) Listeners() *Listeners {
	return c.listeners
}

func (c *Context) Matchers() *MatcherLibrary {
	return c.matchers
}

func (c *Context) Converter() Converter {
	return c.converter
}

func (c *Context) SchemaRegistry() *SchemaRegistry {
	return c.schemas
}

func (c *Context) SchemaRepositories() []*SchemaRepository {
	return c.repositories
}

func (c *Context) Endpoint(name string) (transport.Endpoint, error) {
	e, ok := c.endpoints[name]
	if !ok {
		return nil, NewFatalSetupError(nil, "unknown endpoint '%s'", name)
	}
	return e, nil
}

func (c *Context) OnInboundMessage(msg *transport.Message) {
	for _, l := range c.messageListeners {
		l.OnInboundMessage(msg, c)
	}
}

func (c *Context) OnOutboundMessage(msg *transport.Message) {
	for _, l := range c.messageListeners {
		l.OnOutboundMessage(msg, c)
	}
}

func (c *Context) dump() string {
	if log.GetLevel() < log.DebugLevel {
		return ""
	}
	return spew.Sdump(c.variables)
}

func (c *Context) String() string {
	return fmt.Sprintf("Context(variables=%d, endpoints=%d)", len(c.variables), len(c.endpoints))
}
