package itest

import (
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

const (
	matcherPrefix = "@"
	matcherSuffix = "@"

	DefaultMatcherLibraryPrefix = "itest"
)

// Matcher validates a value against control parameters. A mismatch is
// reported as a ValidationError.
type Matcher interface {
	Validate(fieldName, value string, controlParameters []string, ctx *Context) error
}

type MatcherFunc func(fieldName, value string, controlParameters []string, ctx *Context) error

func (f MatcherFunc) Validate(fieldName, value string, controlParameters []string, ctx *Context) error {
	return f(fieldName, value, controlParameters, ctx)
}

// MatcherLibrary is a named set of matchers. Expressions either omit the
// library prefix or use the library's own prefix. Safe for concurrent reads.
type MatcherLibrary struct {
	Prefix string

	mu       sync.RWMutex
	matchers map[string]Matcher
}

func NewMatcherLibrary(prefix string) *MatcherLibrary {
	return &MatcherLibrary{
		Prefix:   prefix,
		matchers: map[string]Matcher{},
	}
}

func (l *MatcherLibrary) Register(name string, m Matcher) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.matchers[name] = m
}

func (l *MatcherLibrary) Lookup(name string) (Matcher, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.matchers[name]
	return m, ok
}

func (l *MatcherLibrary) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.matchers))
	for n := range l.matchers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve parses a matcher expression and validates value with the matcher it
// names. Errors returned by the matcher are passed through unchanged.
func (l *MatcherLibrary) Resolve(fieldName, value, expression string, ctx *Context) error {
	expr, err := ParseMatcherExpression(expression)
	if err != nil {
		return err
	}

	if expr.Prefix != "" && expr.Prefix != l.Prefix {
		return NewValidationError(nil, "unknown validation matcher library '%s' in expression %s", expr.Prefix, expression)
	}

	m, ok := l.Lookup(expr.Name)
	if !ok {
		return NewValidationError(nil, "unknown validation matcher '%s' in expression %s", expr.Name, expression)
	}

	params := expr.Parameters
	if params != "" {
		params, err = ctx.ResolveDynamicContent(params)
		if err != nil {
			return err
		}
	}

	args := SplitMatcherParameters(params)

	log.WithFields(log.Fields{"field": fieldName, "matcher": expr.Name}).Debugf("validating %q with parameters %v", value, args)

	return m.Validate(fieldName, value, args, ctx)
}

// MatcherExpression is the parsed form of "@prefix:name(parameters)@".
type MatcherExpression struct {
	Prefix     string
	Name       string
	Parameters string
}

func IsMatcherExpression(s string) bool {
	return len(s) > len(matcherPrefix)+len(matcherSuffix) &&
		strings.HasPrefix(s, matcherPrefix) &&
		strings.HasSuffix(s, matcherSuffix)
}

func ParseMatcherExpression(s string) (MatcherExpression, error) {
	if !IsMatcherExpression(s) {
		return MatcherExpression{}, NewValidationError(nil, "invalid validation matcher expression %q", s)
	}

	inner := strings.TrimSpace(s[len(matcherPrefix) : len(s)-len(matcherSuffix)])

	var expr MatcherExpression

	if i := strings.Index(inner, "("); i >= 0 {
		if !strings.HasSuffix(inner, ")") {
			return MatcherExpression{}, NewValidationError(nil, "missing closing bracket in validation matcher expression %q", s)
		}
		expr.Name = strings.TrimSpace(inner[:i])
		expr.Parameters = inner[i+1 : len(inner)-1]
	} else {
		expr.Name = inner
	}

	if i := strings.Index(expr.Name, ":"); i >= 0 {
		expr.Prefix = expr.Name[:i]
		expr.Name = expr.Name[i+1:]
	}

	if expr.Name == "" {
		return MatcherExpression{}, NewValidationError(nil, "missing matcher name in validation matcher expression %q", s)
	}

	return expr, nil
}

// SplitMatcherParameters splits on commas outside of single quotes, trims
// every parameter and strips its surrounding single quotes.
func SplitMatcherParameters(params string) []string {
	if strings.TrimSpace(params) == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder
	quoted := false

	for _, r := range params {
		switch {
		case r == '\'':
			quoted = !quoted
			current.WriteRune(r)
		case r == ',' && !quoted:
			result = append(result, cutOffSingleQuotes(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(result, cutOffSingleQuotes(current.String()))
}

func cutOffSingleQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		return s[1 : len(s)-1]
	}
	return s
}
