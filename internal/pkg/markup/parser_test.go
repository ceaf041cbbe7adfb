package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Part
	}{
		{
			name:  "plain text",
			input: "Just text, with (parens).",
			want:  []Part{{Kind: Text, Text: "Just text, with (parens)."}},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "classic commands",
			input: "Set C(state) to I(present) or B(absent).",
			want: []Part{
				{Kind: Text, Text: "Set "},
				{Kind: Code, Text: "state"},
				{Kind: Text, Text: " to "},
				{Kind: Italic, Text: "present"},
				{Kind: Text, Text: " or "},
				{Kind: Bold, Text: "absent"},
				{Kind: Text, Text: "."},
			},
		},
		{
			name:  "links",
			input: "See L(the docs, https://example.com/x) and U(https://example.com).",
			want: []Part{
				{Kind: Text, Text: "See "},
				{Kind: Link, Text: "the docs", Target: "https://example.com/x"},
				{Kind: Text, Text: " and "},
				{Kind: URL, Text: "https://example.com", Target: "https://example.com"},
				{Kind: Text, Text: "."},
			},
		},
		{
			name:  "semantic markup with escapes",
			input: `O(path=/tmp\)) RV(ns.coll.mod#module:result) V(a\\b) E(HOME)`,
			want: []Part{
				{Kind: OptionName, Text: "path", Value: "/tmp)"},
				{Kind: Text, Text: " "},
				{Kind: ReturnValue, Text: "result"},
				{Kind: Text, Text: " "},
				{Kind: OptionValue, Text: `a\b`},
				{Kind: Text, Text: " "},
				{Kind: EnvVariable, Text: "HOME"},
			},
		},
		{
			name:  "module and plugin",
			input: "M(ansible.builtin.copy) P(community.general.json_query#filter)",
			want: []Part{
				{Kind: Module, Text: "ansible.builtin.copy", Target: "module"},
				{Kind: Text, Text: " "},
				{Kind: Plugin, Text: "community.general.json_query", Target: "filter"},
			},
		},
		{
			name:  "horizontal line",
			input: "above HORIZONTALLINE below",
			want: []Part{
				{Kind: Text, Text: "above "},
				{Kind: HorizontalLine},
				{Kind: Text, Text: " below"},
			},
		},
		{
			name:  "commands need a word boundary",
			input: "ABC(x) and xC(y)",
			want:  []Part{{Kind: Text, Text: "ABC(x) and xC(y)"}},
		},
		{
			name:  "unterminated command",
			input: "bad C(oops",
			want: []Part{
				{Kind: Text, Text: "bad "},
				{Kind: Error, Text: `While parsing C() at index 5: cannot find closing ")" after last parameter`},
			},
		},
		{
			name:  "missing comma",
			input: "L(text only)",
			want: []Part{
				{Kind: Error, Text: "While parsing L() at index 1: cannot find comma separating parameter 1 from the next one"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.input)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}
