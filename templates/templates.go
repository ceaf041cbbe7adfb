// Package templates holds the built-in role documentation templates.
package templates

import (
	"embed"
	"fmt"
)

//go:embed *.j2
var FS embed.FS

// Formats that ship with a built-in template.
var Formats = []string{"md", "rst"}

// Builtin returns the file name of the built-in template for format.
func Builtin(format string) (string, bool) {
	for _, f := range Formats {
		if f == format {
			return fmt.Sprintf("role.%s.j2", format), true
		}
	}
	return "", false
}
