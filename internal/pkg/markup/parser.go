// Package markup parses the inline markup used in Ansible documentation
// strings (C(...), I(...), O(...), ...) and renders it as Markdown or
// reStructuredText.
package markup

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Kind int

const (
	Text Kind = iota
	Italic
	Bold
	Code
	URL
	Link
	Ref
	Module
	Plugin
	OptionName
	OptionValue
	ReturnValue
	EnvVariable
	HorizontalLine
	Error
)

// Part is one parsed piece of a paragraph. Text holds the visible text,
// Target the URL, reference or plugin type, Value the "=value" suffix of
// O() and RV().
type Part struct {
	Kind   Kind
	Text   string
	Target string
	Value  string
}

type command struct {
	name    string
	params  int
	escaped bool
}

// Longer names first so that RV( wins over R(.
var commands = []command{
	{name: "HORIZONTALLINE"},
	{name: "RV", params: 1, escaped: true},
	{name: "I", params: 1},
	{name: "B", params: 1},
	{name: "C", params: 1},
	{name: "U", params: 1},
	{name: "L", params: 2},
	{name: "R", params: 2},
	{name: "M", params: 1},
	{name: "P", params: 1, escaped: true},
	{name: "O", params: 1, escaped: true},
	{name: "V", params: 1, escaped: true},
	{name: "E", params: 1, escaped: true},
}

// Parse splits a paragraph into parts. Malformed commands become Error
// parts; Parse itself never fails.
func Parse(text string) []Part {
	var parts []Part
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			parts = append(parts, Part{Kind: Text, Text: plain.String()})
			plain.Reset()
		}
	}

	i := 0
	for i < len(text) {
		cmd, ok := matchCommand(text, i)
		if !ok {
			r, size := utf8.DecodeRuneInString(text[i:])
			plain.WriteRune(r)
			i += size
			continue
		}
		flush()

		start := i
		i += len(cmd.name)
		if cmd.params == 0 {
			parts = append(parts, Part{Kind: HorizontalLine})
			continue
		}
		i++ // "("

		var params []string
		var err error
		if cmd.escaped {
			params, i, err = parseEscaped(text, i, cmd.params)
		} else {
			params, i, err = parseClassic(text, i, cmd.params)
		}
		if err != nil {
			parts = append(parts, Part{
				Kind: Error,
				Text: fmt.Sprintf("While parsing %s() at index %d: %v", cmd.name, start+1, err),
			})
			continue
		}
		parts = append(parts, newPart(cmd.name, params))
	}
	flush()
	return parts
}

func matchCommand(text string, i int) (command, bool) {
	if i > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:i])
		if isWordRune(prev) {
			return command{}, false
		}
	}
	for _, cmd := range commands {
		if !strings.HasPrefix(text[i:], cmd.name) {
			continue
		}
		end := i + len(cmd.name)
		if cmd.params == 0 {
			if end < len(text) {
				next, _ := utf8.DecodeRuneInString(text[end:])
				if isWordRune(next) {
					continue
				}
			}
			return cmd, true
		}
		if end < len(text) && text[end] == '(' {
			return cmd, true
		}
	}
	return command{}, false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// parseClassic reads parameters separated by "," up to the first ")".
// No escaping is possible.
func parseClassic(text string, i, count int) ([]string, int, error) {
	params := make([]string, 0, count)
	for n := 1; n < count; n++ {
		comma := strings.IndexByte(text[i:], ',')
		if comma < 0 {
			return nil, len(text), fmt.Errorf("cannot find comma separating parameter %d from the next one", n)
		}
		params = append(params, strings.TrimSpace(text[i:i+comma]))
		i += comma + 1
	}
	closing := strings.IndexByte(text[i:], ')')
	if closing < 0 {
		return nil, len(text), fmt.Errorf("cannot find closing \")\" after last parameter")
	}
	params = append(params, strings.TrimSpace(text[i:i+closing]))
	return params, i + closing + 1, nil
}

// parseEscaped reads parameters where "\" escapes the next character.
func parseEscaped(text string, i, count int) ([]string, int, error) {
	params := make([]string, 0, count)
	var cur strings.Builder
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text):
			cur.WriteByte(text[i+1])
			i += 2
		case c == ',' && len(params) < count-1:
			params = append(params, cur.String())
			cur.Reset()
			i++
		case c == ')':
			params = append(params, cur.String())
			if len(params) < count {
				return nil, i + 1, fmt.Errorf("cannot find comma separating parameter %d from the next one", len(params))
			}
			return params, i + 1, nil
		default:
			cur.WriteByte(c)
			i++
		}
	}
	return nil, len(text), fmt.Errorf("cannot find closing \")\" after last parameter")
}

func newPart(name string, params []string) Part {
	switch name {
	case "I":
		return Part{Kind: Italic, Text: params[0]}
	case "B":
		return Part{Kind: Bold, Text: params[0]}
	case "C":
		return Part{Kind: Code, Text: params[0]}
	case "U":
		return Part{Kind: URL, Text: params[0], Target: params[0]}
	case "L":
		return Part{Kind: Link, Text: params[0], Target: params[1]}
	case "R":
		return Part{Kind: Ref, Text: params[0], Target: params[1]}
	case "M":
		return Part{Kind: Module, Text: params[0], Target: "module"}
	case "P":
		fqcn, typ, _ := strings.Cut(params[0], "#")
		return Part{Kind: Plugin, Text: fqcn, Target: typ}
	case "O":
		n, v := splitNameValue(params[0])
		return Part{Kind: OptionName, Text: n, Value: v}
	case "V":
		return Part{Kind: OptionValue, Text: params[0]}
	case "RV":
		n, v := splitNameValue(params[0])
		return Part{Kind: ReturnValue, Text: n, Value: v}
	case "E":
		return Part{Kind: EnvVariable, Text: params[0]}
	}
	return Part{Kind: Text, Text: strings.Join(params, ",")}
}

// splitNameValue handles "name=value" and drops a "ns.coll.plugin#type:"
// prefix from name.
func splitNameValue(s string) (string, string) {
	name, value, _ := strings.Cut(s, "=")
	if hash := strings.IndexByte(name, '#'); hash >= 0 {
		if colon := strings.IndexByte(name[hash:], ':'); colon >= 0 {
			name = name[hash+colon+1:]
		}
	}
	return name, value
}
