package render

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nikolalohinski/gonja/exec"
)

// NotFoundError means the template file does not exist in its search path.
type NotFoundError struct {
	Name       string
	SearchPath string
	Err        error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find template name %s in search path: %s", e.Name, e.SearchPath)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// SyntaxError is a parse failure of a template file.
type SyntaxError struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax error in template file %s, line %d: %s", e.File, e.Line, e.Message)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Classes reported by ExecError.
const (
	ClassUndefined = "UndefinedError"
	ClassRuntime   = "TemplateRuntimeError"
)

// ExecError is a failure while rendering, including references to
// undefined variables. Line is 0 when the engine did not report one.
type ExecError struct {
	File    string
	Line    int
	Class   string
	Message string
	Err     error
}

func (e *ExecError) Error() string {
	line := ""
	if e.Line > 0 {
		line = fmt.Sprintf(", line %d", e.Line)
	}
	return fmt.Sprintf("Could not render template file %s%s: %s: %s", e.File, line, e.Class, e.Message)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Parser errors end in "(Line: 3 Col: 7, near "x")"; render errors are
// wrapped once per enclosing node as "... at line 3: ...".
var (
	parsePosition   = regexp.MustCompile(` ?\(Line: (\d+) Col: \d+, near "(?:[^"\\]|\\.)*"\)`)
	renderPosition  = regexp.MustCompile(`at line (\d+)`)
	undefinedReason = regexp.MustCompile(`Unable to evaluate name|attribute '[^']*' not found|item '?[^']*'? not found|was not provided`)
)

// parseLocation extracts the line number and the bare message of a parse
// error.
func parseLocation(err error) (int, string) {
	line := lastLine(parsePosition, err.Error())
	msg := parsePosition.ReplaceAllString(rootCause(err).Error(), "")
	return line, strings.TrimSpace(msg)
}

// execLocation extracts the innermost line number, the error class and the
// bare message of a render error.
func execLocation(err error) (int, string, string) {
	line := lastLine(renderPosition, err.Error())
	msg := rootCause(err).Error()
	class := ClassRuntime
	if undefinedReason.MatchString(msg) {
		class = ClassUndefined
	}
	return line, class, msg
}

func lastLine(pattern *regexp.Regexp, s string) int {
	matches := pattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0
	}
	line, _ := strconv.Atoi(matches[len(matches)-1][1])
	return line
}

// rootCause follows the wrap chain down to the error that started it.
// Values carrying an error count as links of the chain.
func rootCause(err error) error {
	for {
		switch e := err.(type) {
		case interface{ Cause() error }:
			next := e.Cause()
			if next == nil {
				return err
			}
			err = next
		case *exec.Value:
			next, ok := e.Interface().(error)
			if !ok {
				return err
			}
			err = next
		default:
			next := errors.Unwrap(err)
			if next == nil {
				return err
			}
			err = next
		}
	}
}
