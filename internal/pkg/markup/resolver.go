package markup

import (
	"fmt"
	"strings"
)

// Resolver converts documentation values to the target markup. Values may
// be a string or a list of paragraphs, which is how description fields
// appear in argument spec files.
type Resolver struct{}

func (Resolver) ToMD(v any) string {
	return convert(v, ToMarkdown)
}

func (Resolver) ToRST(v any) string {
	return convert(v, ToRST)
}

func convert(v any, render func([]Part) string) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return render(Parse(t))
	case []string:
		return joinParagraphs(t, render)
	case []any:
		paragraphs := make([]string, 0, len(t))
		for _, p := range t {
			paragraphs = append(paragraphs, stringify(p))
		}
		return joinParagraphs(paragraphs, render)
	default:
		return render(Parse(stringify(v)))
	}
}

func joinParagraphs(paragraphs []string, render func([]Part) string) string {
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		out = append(out, render(Parse(p)))
	}
	return strings.Join(out, "\n\n")
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
