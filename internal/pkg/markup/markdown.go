package markup

import (
	"html"
	"strings"
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`|`, `\|`,
)

var mdURLEscaper = strings.NewReplacer(
	` `, `%20`,
	`(`, `%28`,
	`)`, `%29`,
)

// ToMarkdown renders parsed parts as Markdown. Inline HTML is used for
// emphasis and code so the result also survives inside table cells.
func ToMarkdown(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		switch p.Kind {
		case Text:
			b.WriteString(mdEscaper.Replace(p.Text))
		case Italic:
			b.WriteString("<em>" + html.EscapeString(p.Text) + "</em>")
		case Bold:
			b.WriteString("<b>" + html.EscapeString(p.Text) + "</b>")
		case Code, OptionValue, EnvVariable:
			b.WriteString("<code>" + html.EscapeString(p.Text) + "</code>")
		case OptionName, ReturnValue:
			b.WriteString("<code>" + html.EscapeString(joinValue(p)) + "</code>")
		case URL, Link:
			b.WriteString("[" + mdEscaper.Replace(p.Text) + "](" + mdURLEscaper.Replace(p.Target) + ")")
		case Ref:
			b.WriteString(mdEscaper.Replace(p.Text))
		case Module, Plugin:
			if url := pluginURL(p.Text, p.Target); url != "" {
				b.WriteString("[" + mdEscaper.Replace(p.Text) + "](" + url + ")")
			} else {
				b.WriteString("<code>" + html.EscapeString(p.Text) + "</code>")
			}
		case HorizontalLine:
			b.WriteString("<hr>")
		case Error:
			b.WriteString("<b>ERROR while parsing</b>: " + mdEscaper.Replace(p.Text))
		}
	}
	return b.String()
}

func joinValue(p Part) string {
	if p.Value == "" {
		return p.Text
	}
	return p.Text + "=" + p.Value
}

// pluginURL links a fully qualified collection name to the published
// collection docs. Names that are not FQCNs get no link.
func pluginURL(fqcn, pluginType string) string {
	parts := strings.Split(fqcn, ".")
	if len(parts) < 3 || pluginType == "" {
		return ""
	}
	for _, s := range parts {
		if s == "" {
			return ""
		}
	}
	name := strings.Join(parts[2:], ".")
	return "https://docs.ansible.com/ansible/latest/collections/" +
		parts[0] + "/" + parts[1] + "/" + name + "_" + pluginType + ".html"
}
