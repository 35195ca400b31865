package itest

import (
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// DefaultMatcherLibrary returns a library holding every built-in matcher.
func DefaultMatcherLibrary() *MatcherLibrary {
	l := NewMatcherLibrary(DefaultMatcherLibraryPrefix)

	l.Register("ignore", MatcherFunc(ignore))
	l.Register("equalsIgnoreCase", MatcherFunc(equalsIgnoreCase))
	l.Register("contains", MatcherFunc(contains))
	l.Register("containsIgnoreCase", MatcherFunc(containsIgnoreCase))
	l.Register("startsWith", MatcherFunc(startsWith))
	l.Register("endsWith", MatcherFunc(endsWith))
	l.Register("matches", MatcherFunc(matches))
	l.Register("isNumber", MatcherFunc(isNumber))
	l.Register("greaterThan", MatcherFunc(greaterThan))
	l.Register("lowerThan", MatcherFunc(lowerThan))
	l.Register("isEmpty", MatcherFunc(isEmpty))
	l.Register("isNotEmpty", MatcherFunc(isNotEmpty))
	l.Register("ignoreNewLine", MatcherFunc(ignoreNewLine))
	l.Register("trim", MatcherFunc(trim))
	l.Register("isUUID", MatcherFunc(isUUID))
	l.Register("variable", MatcherFunc(variable))
	l.Register("expression", MatcherFunc(expression))

	return l
}

func requireParameter(matcher string, params []string) (string, error) {
	if len(params) == 0 {
		return "", NewValidationError(nil, "matcher %s requires a control parameter", matcher)
	}
	return params[0], nil
}

func ignore(string, string, []string, *Context) error {
	return nil
}

func equalsIgnoreCase(field, value string, params []string, _ *Context) error {
	control, err := requireParameter("equalsIgnoreCase", params)
	if err != nil {
		return err
	}
	if !strings.EqualFold(value, control) {
		return NewValidationError(nil, "%s value '%s' is not equal (ignoring case) to '%s'", field, value, control)
	}
	return nil
}

func contains(field, value string, params []string, _ *Context) error {
	control, err := requireParameter("contains", params)
	if err != nil {
		return err
	}
	if !strings.Contains(value, control) {
		return NewValidationError(nil, "%s value '%s' does not contain '%s'", field, value, control)
	}
	return nil
}

func containsIgnoreCase(field, value string, params []string, _ *Context) error {
	control, err := requireParameter("containsIgnoreCase", params)
	if err != nil {
		return err
	}
	if !strings.Contains(strings.ToLower(value), strings.ToLower(control)) {
		return NewValidationError(nil, "%s value '%s' does not contain (ignoring case) '%s'", field, value, control)
	}
	return nil
}

func startsWith(field, value string, params []string, _ *Context) error {
	control, err := requireParameter("startsWith", params)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(value, control) {
		return NewValidationError(nil, "%s value '%s' does not start with '%s'", field, value, control)
	}
	return nil
}

func endsWith(field, value string, params []string, _ *Context) error {
	control, err := requireParameter("endsWith", params)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(value, control) {
		return NewValidationError(nil, "%s value '%s' does not end with '%s'", field, value, control)
	}
	return nil
}

func matches(field, value string, params []string, _ *Context) error {
	control, err := requireParameter("matches", params)
	if err != nil {
		return err
	}
	re, err := regexp.Compile("^(?:" + control + ")$")
	if err != nil {
		return NewValidationError(err, "invalid regular expression '%s' for %s", control, field)
	}
	if !re.MatchString(value) {
		return NewValidationError(nil, "%s value '%s' does not match pattern '%s'", field, value, control)
	}
	return nil
}

func isNumber(field, value string, _ []string, _ *Context) error {
	if _, err := cast.ToFloat64E(strings.TrimSpace(value)); err != nil {
		return NewValidationError(nil, "%s value '%s' is not a number", field, value)
	}
	return nil
}

func compareNumbers(matcher, field, value string, params []string) (float64, float64, error) {
	control, err := requireParameter(matcher, params)
	if err != nil {
		return 0, 0, err
	}
	actual, err := cast.ToFloat64E(strings.TrimSpace(value))
	if err != nil {
		return 0, 0, NewValidationError(err, "%s value '%s' is not a number", field, value)
	}
	limit, err := cast.ToFloat64E(strings.TrimSpace(control))
	if err != nil {
		return 0, 0, NewValidationError(err, "control value '%s' of %s is not a number", control, matcher)
	}
	return actual, limit, nil
}

func greaterThan(field, value string, params []string, _ *Context) error {
	actual, limit, err := compareNumbers("greaterThan", field, value, params)
	if err != nil {
		return err
	}
	if actual <= limit {
		return NewValidationError(nil, "%s value '%s' is not greater than '%s'", field, value, params[0])
	}
	return nil
}

func lowerThan(field, value string, params []string, _ *Context) error {
	actual, limit, err := compareNumbers("lowerThan", field, value, params)
	if err != nil {
		return err
	}
	if actual >= limit {
		return NewValidationError(nil, "%s value '%s' is not lower than '%s'", field, value, params[0])
	}
	return nil
}

func isEmpty(field, value string, _ []string, _ *Context) error {
	if value != "" {
		return NewValidationError(nil, "%s value '%s' is not empty", field, value)
	}
	return nil
}

func isNotEmpty(field, value string, _ []string, _ *Context) error {
	if value == "" {
		return NewValidationError(nil, "%s value is empty", field)
	}
	return nil
}

var newLines = strings.NewReplacer("\r\n", "", "\n", "", "\r", "")

func ignoreNewLine(field, value string, params []string, _ *Context) error {
	control, err := requireParameter("ignoreNewLine", params)
	if err != nil {
		return err
	}
	if newLines.Replace(value) != newLines.Replace(control) {
		return NewValidationError(nil, "%s value '%s' is not equal (ignoring new lines) to '%s'", field, value, control)
	}
	return nil
}

func trim(field, value string, params []string, _ *Context) error {
	control, err := requireParameter("trim", params)
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) != strings.TrimSpace(control) {
		return NewValidationError(nil, "%s value '%s' is not equal (ignoring surrounding whitespace) to '%s'", field, value, control)
	}
	return nil
}

func isUUID(field, value string, _ []string, _ *Context) error {
	if _, err := uuid.Parse(value); err != nil {
		return NewValidationError(err, "%s value '%s' is not a valid UUID", field, value)
	}
	return nil
}

// variable stores the value under the given variable name, or under the
// field name when no parameter is given. It never fails.
func variable(field, value string, params []string, ctx *Context) error {
	name := field
	if len(params) > 0 && params[0] != "" {
		name = params[0]
	}
	ctx.SetVariable(name, value)
	return nil
}

// expression evaluates a boolean expression with the actual value bound to
// `value`, its numeric form (if any) to `number` and the variables to `vars`.
func expression(field, value string, params []string, ctx *Context) error {
	control, err := requireParameter("expression", params)
	if err != nil {
		return err
	}

	env := map[string]interface{}{
		"value": value,
		"field": field,
		"vars":  ctx.Variables(),
	}
	if n, err := cast.ToFloat64E(strings.TrimSpace(value)); err == nil {
		env["number"] = n
	}

	program, err := expr.Compile(control, expr.Env(env), expr.AsBool())
	if err != nil {
		return NewValidationError(err, "invalid expression '%s' for %s", control, field)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return NewValidationError(err, "failed evaluating expression '%s' for %s", control, field)
	}

	if ok, _ := out.(bool); !ok {
		return NewValidationError(nil, "%s value '%s' does not satisfy expression '%s'", field, value, control)
	}
	return nil
}
