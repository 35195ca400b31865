package itest

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	log "github.com/sirupsen/logrus"
)

const (
	variablePrefix = "${"
	variableSuffix = "}"
	escapedPrefix  = "$${"
)

// ContentResolver expands variable and function references. A reference that
// cannot be resolved must fail with a FatalSetupError.
type ContentResolver interface {
	Resolve(raw string, ctx *Context) (string, error)
}

// TemplateResolver replaces ${name} references with variable values and then
// renders the result as a Go template when it contains template actions.
type TemplateResolver struct {
	funcs template.FuncMap
}

func NewTemplateResolver(extra ...template.FuncMap) *TemplateResolver {
	funcs := template.FuncMap{}
	for _, m := range extra {
		for k, v := range m {
			funcs[k] = v
		}
	}
	return &TemplateResolver{funcs: funcs}
}

// Resolve renders raw as a template only when raw itself contains template
// actions. Variable values are never evaluated as templates, except when
// referenced inside an action, where they become part of the action.
func (r *TemplateResolver) Resolve(raw string, ctx *Context) (string, error) {
	if !strings.Contains(raw, "{{") {
		return ReplaceVariables(raw, ctx)
	}

	expanded, err := replaceVariables(raw, ctx, escapeTemplateText)
	if err != nil {
		return "", err
	}

	return r.render(expanded, ctx)
}

func escapeTemplateText(value string, inAction bool) string {
	if inAction {
		return value
	}
	return strings.Replace(value, "{{", `{{"{{"}}`, -1)
}

func (r *TemplateResolver) createFuncMap(ctx *Context) template.FuncMap {
	fns := sprig.TxtFuncMap()

	for k, v := range templateFuncs(ctx) {
		fns[k] = v
	}

	for k, v := range r.funcs {
		fns[k] = v
	}

	return fns
}

func (r *TemplateResolver) render(expr string, ctx *Context) (string, error) {
	tmpl := template.New("dynamic content")
	tmpl.Option("missingkey=error")

	tmpl, err := tmpl.Funcs(r.createFuncMap(ctx)).Parse(expr)
	if err != nil {
		return "", NewFatalSetupError(err, "failed parsing dynamic content %q", expr)
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, ctx.Variables()); err != nil {
		return "", NewFatalSetupError(err, "failed rendering dynamic content %q", expr)
	}

	return buff.String(), nil
}

// ReplaceVariables substitutes every ${name} reference in raw with the string
// form of the variable. $${ produces a literal ${.
func ReplaceVariables(raw string, ctx *Context) (string, error) {
	return replaceVariables(raw, ctx, nil)
}

// replaceVariables passes every substituted value through quote, when given,
// along with whether the reference sits inside a {{ }} action of raw.
func replaceVariables(raw string, ctx *Context, quote func(value string, inAction bool) string) (string, error) {
	if !strings.Contains(raw, variablePrefix) {
		return raw, nil
	}

	var out strings.Builder
	rest := raw

	for {
		i := strings.Index(rest, variablePrefix)
		if i < 0 {
			out.WriteString(rest)
			break
		}

		if i > 0 && rest[i-1] == '$' {
			out.WriteString(rest[:i-1])
			out.WriteString(variablePrefix)
			rest = rest[i+len(variablePrefix):]
			continue
		}

		out.WriteString(rest[:i])
		preceding := raw[:len(raw)-len(rest)+i]
		inAction := strings.LastIndex(preceding, "{{") > strings.LastIndex(preceding, "}}")
		rest = rest[i+len(variablePrefix):]

		j := strings.Index(rest, variableSuffix)
		if j < 0 {
			return "", NewFatalSetupError(nil, "unclosed variable reference in %q", raw)
		}

		name := strings.TrimSpace(rest[:j])
		if name == "" {
			return "", NewFatalSetupError(nil, "empty variable reference in %q", raw)
		}

		value, err := ctx.GetVariable(name)
		if err != nil {
			return "", err
		}

		log.Debugf("resolved variable %s to %v", name, value)

		str := stringify(value)
		if quote != nil {
			str = quote(str, inAction)
		}
		out.WriteString(str)
		rest = rest[j+len(variableSuffix):]
	}

	return out.String(), nil
}

func stringify(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
