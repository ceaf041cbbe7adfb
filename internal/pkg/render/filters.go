package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/nikolalohinski/gonja/exec"
	"gopkg.in/yaml.v3"
)

// MarkupResolver turns Ansible inline markup into the target format.
type MarkupResolver interface {
	ToMD(v any) string
	ToRST(v any) string
}

// filters returns the filters added on top of the engine's built-in ones:
// a set named after the Ansible core filters and, when markup is non-nil,
// the to_md and to_rst converters.
func filters(markup MarkupResolver) exec.FilterSet {
	set := exec.FilterSet{
		"to_yaml":       yamlFilter("to_yaml", 2),
		"to_nice_yaml":  yamlFilter("to_nice_yaml", 4),
		"to_json":       jsonFilter("to_json", 0),
		"to_nice_json":  jsonFilter("to_nice_json", 4),
		"bool":          valueFilter("bool", func(v any) (any, error) { return toBool(v), nil }),
		"type_debug":    valueFilter("type_debug", func(v any) (any, error) { return typeDebug(v), nil }),
		"mandatory":     filterMandatory,
		"regex_replace": filterRegexReplace,
	}
	if markup != nil {
		set["to_md"] = markupFilter("to_md", markup.ToMD)
		set["to_rst"] = markupFilter("to_rst", markup.ToRST)
	}
	return set
}

// globals exposes the Sprig function library as the sprig namespace,
// e.g. {{ sprig.trunc(8, name) }}.
func globals() *exec.Context {
	return exec.NewContext(map[string]any{
		"sprig": map[string]any(sprig.GenericFuncMap()),
	})
}

func signatureError(name string, p *exec.ReducedVarArgs) *exec.Value {
	return exec.AsValue(fmt.Errorf("wrong signature for '%s': %s", name, p.Error()))
}

// valueFilter adapts fn to a filter without arguments. Errors carried by
// the input, such as undefined variables, are passed through.
func valueFilter(name string, fn func(any) (any, error)) exec.FilterFunction {
	return func(_ *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
		if in.IsError() {
			return in
		}
		if p := params.ExpectNothing(); p.IsError() {
			return signatureError(name, p)
		}
		out, err := fn(plain(in))
		if err != nil {
			return exec.AsValue(err)
		}
		return exec.AsValue(out)
	}
}

// markupFilter marks its output safe: the converters produce finished
// markup that auto-escaping must not touch.
func markupFilter(name string, fn func(any) string) exec.FilterFunction {
	return func(_ *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
		if in.IsError() {
			return in
		}
		if p := params.ExpectNothing(); p.IsError() {
			return signatureError(name, p)
		}
		return exec.AsSafeValue(fn(plain(in)))
	}
}

func yamlFilter(name string, indent int) exec.FilterFunction {
	return func(_ *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
		if in.IsError() {
			return in
		}
		p := params.ExpectKwArgs([]*exec.KwArg{{Name: "indent", Default: indent}})
		if p.IsError() {
			return signatureError(name, p)
		}
		out, err := toYAML(plain(in), p.KwArgs["indent"].Integer())
		if err != nil {
			return exec.AsValue(err)
		}
		return exec.AsValue(out)
	}
}

func jsonFilter(name string, indent int) exec.FilterFunction {
	return func(_ *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
		if in.IsError() {
			return in
		}
		p := params.ExpectKwArgs([]*exec.KwArg{{Name: "indent", Default: indent}})
		if p.IsError() {
			return signatureError(name, p)
		}
		out, err := toJSON(plain(in), p.KwArgs["indent"].Integer())
		if err != nil {
			return exec.AsValue(err)
		}
		return exec.AsValue(out)
	}
}

// filterMandatory fails the render when its input is undefined or null:
// {{ x | mandatory }} or {{ x | mandatory("x must be set") }}.
func filterMandatory(_ *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
	p := params.Expect(0, []*exec.KwArg{{Name: "msg", Default: nil}})
	if p.IsError() {
		return signatureError("mandatory", p)
	}
	if !in.IsError() && !in.IsNil() {
		return in
	}
	msg := "Mandatory variable not defined."
	if m := p.KwArgs["msg"]; !m.IsNil() {
		msg = m.String()
	}
	return exec.AsValue(errors.New(msg))
}

// filterRegexReplace is {{ x | regex_replace(pattern, replacement) }}, with
// the ignorecase and multiline flags Ansible accepts.
func filterRegexReplace(_ *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
	if in.IsError() {
		return in
	}
	p := params.Expect(1, []*exec.KwArg{
		{Name: "replacement", Default: ""},
		{Name: "ignorecase", Default: false},
		{Name: "multiline", Default: false},
	})
	if p.IsError() {
		return signatureError("regex_replace", p)
	}
	out, err := regexReplace(in.String(), p.Args[0].String(), p.KwArgs["replacement"].String(),
		p.KwArgs["ignorecase"].Bool(), p.KwArgs["multiline"].Bool())
	if err != nil {
		return exec.AsValue(err)
	}
	return exec.AsValue(out)
}

func toYAML(v any, indent int) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.String(), nil
}

// toJSON encodes v without HTML escaping; escaping belongs to the
// template's output stage. An indent of 0 gives compact output.
func toJSON(v any, indent int) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// toBool follows Ansible's bool filter: yes/on/true/1 are true, anything
// else is false.
func toBool(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int:
		return t == 1
	case float64:
		return t == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "on", "1", "true", "y":
			return true
		}
		return false
	}
	return false
}

// typeDebug reports the YAML-level type of v using the names Ansible
// users know from type_debug.
func typeDebug(v any) string {
	if v == nil {
		return "NoneType"
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map:
		return "dict"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.String:
		return "str"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	}
	return reflect.TypeOf(v).String()
}

var backrefPattern = regexp.MustCompile(`\\(\d+)`)

// regexReplace accepts backslash references such as \1 in the
// replacement.
func regexReplace(value, pattern, replacement string, ignorecase, multiline bool) (string, error) {
	flags := ""
	if ignorecase {
		flags += "i"
	}
	if multiline {
		flags += "m"
	}
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regular expression %q: %w", pattern, err)
	}
	replacement = backrefPattern.ReplaceAllString(replacement, `$${$1}`)
	return re.ReplaceAllString(value, replacement), nil
}

// plain converts v to the Go values the spec data is made of. Lists and
// dicts written as template literals are held in engine types otherwise.
func plain(v *exec.Value) any {
	if v == nil || v.IsNil() {
		return nil
	}
	switch t := v.Interface().(type) {
	case exec.ValuesList:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	case *exec.Dict:
		out := make(map[string]any, len(t.Pairs))
		for _, pair := range t.Pairs {
			out[pair.Key.String()] = plain(pair.Value)
		}
		return out
	}
	return v.Interface()
}
