package markup

import "strings"

var rstEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`|`, `\|`,
)

// ToRST renders parsed parts as plain reStructuredText, without any
// Sphinx-specific roles.
func ToRST(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		switch p.Kind {
		case Text:
			b.WriteString(rstEscaper.Replace(p.Text))
		case Italic:
			b.WriteString(inline("*" + rstEscaper.Replace(p.Text) + "*"))
		case Bold:
			b.WriteString(inline("**" + rstEscaper.Replace(p.Text) + "**"))
		case Code, OptionValue, EnvVariable:
			b.WriteString(literal(p.Text))
		case OptionName, ReturnValue:
			b.WriteString(literal(joinValue(p)))
		case URL, Link:
			b.WriteString(inline("`" + rstEscaper.Replace(p.Text) + " <" + p.Target + ">`__"))
		case Ref:
			b.WriteString(rstEscaper.Replace(p.Text))
		case Module, Plugin:
			if url := pluginURL(p.Text, p.Target); url != "" {
				b.WriteString(inline("`" + rstEscaper.Replace(p.Text) + " <" + url + ">`__"))
			} else {
				b.WriteString(literal(p.Text))
			}
		case HorizontalLine:
			b.WriteString("\n\n------------\n\n")
		case Error:
			b.WriteString(inline("**ERROR while parsing**") + ": " + rstEscaper.Replace(p.Text))
		}
	}
	return b.String()
}

// inline wraps s in escaped spaces so RST recognizes the markup even when
// it touches surrounding word characters.
func inline(s string) string {
	return `\ ` + s + `\ `
}

func literal(s string) string {
	if s == "" {
		return ""
	}
	return inline("``" + s + "``")
}
