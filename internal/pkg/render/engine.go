// Package render compiles Jinja2 template files and renders them against
// the documentation context of a spec file.
package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikolalohinski/gonja"
	"github.com/nikolalohinski/gonja/config"
	"github.com/nikolalohinski/gonja/exec"
	"github.com/nikolalohinski/gonja/tokens"

	"ansible-doc-template-extractor/templates"
)

// BuiltinSearchPath is how the embedded template directory is reported.
const BuiltinSearchPath = "<builtin>/templates"

// Source locates a template: the file system it is read from, the name
// inside that file system, and how both are shown to users.
type Source struct {
	FS         fs.FS
	Name       string
	SearchPath string
	File       string
}

// Resolve picks the template for a run. An explicit file wins; otherwise
// the built-in role template for format md or rst is used.
func Resolve(templateFile, format string) (Source, error) {
	if templateFile != "" {
		dir := filepath.Dir(templateFile)
		return Source{
			FS:         os.DirFS(dir),
			Name:       filepath.Base(templateFile),
			SearchPath: dir,
			File:       templateFile,
		}, nil
	}
	name, ok := templates.Builtin(format)
	if !ok {
		return Source{}, fmt.Errorf("no built-in template for format %q", format)
	}
	return Source{
		FS:         templates.FS,
		Name:       name,
		SearchPath: BuiltinSearchPath,
		File:       BuiltinSearchPath + "/" + name,
	}, nil
}

// Engine compiles templates with a fixed configuration: block tags trimmed
// as with trim_blocks and lstrip_blocks, HTML auto-escaping, and strict
// undefined variables.
type Engine struct {
	markup MarkupResolver
}

// NewEngine returns an Engine. A nil markup resolver leaves out the
// to_md and to_rst filters.
func NewEngine(markup MarkupResolver) *Engine {
	return &Engine{markup: markup}
}

// Template is a compiled template. It is safe for concurrent use.
type Template struct {
	file string
	tpl  *exec.Template
}

// Compile resolves and parses a template. Templates pulled in with
// include, import or extends are loaded from the same search path.
func (e *Engine) Compile(templateFile, format string) (*Template, error) {
	src, err := Resolve(templateFile, format)
	if err != nil {
		return nil, err
	}
	return e.CompileSource(src)
}

func (e *Engine) CompileSource(src Source) (*Template, error) {
	data, err := fs.ReadFile(src.FS, src.Name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Name: src.Name, SearchPath: src.SearchPath, Err: err}
		}
		return nil, fmt.Errorf("failed to read template %s: %w", src.Name, err)
	}
	source := trimBlocks(string(data))

	env := e.environment(src.FS)
	tpl, err := exec.NewTemplate(src.Name, source, env.EvalConfig)
	if err != nil {
		line, msg := parseLocation(err)
		return nil, &SyntaxError{File: src.File, Line: line, Message: msg, Err: err}
	}
	if tok := unknownFilter(source, env.Filters); tok != nil {
		return nil, &SyntaxError{
			File:    src.File,
			Line:    tok.Line,
			Message: fmt.Sprintf("No filter named '%s'.", tok.Val),
			Err:     fmt.Errorf("unknown filter %q", tok.Val),
		}
	}
	return &Template{file: src.File, tpl: tpl}, nil
}

func (e *Engine) environment(fsys fs.FS) *gonja.Environment {
	cfg := config.NewConfig()
	cfg.Autoescape = true
	cfg.StrictUndefined = true

	env := gonja.NewEnvironment(cfg, &loader{fsys: fsys})
	env.Filters.Update(filters(e.markup))
	env.Statements.Update(statements())
	env.Globals.Merge(globals())
	return env
}

// unknownFilter returns the first filter name in source that is not in
// set. The engine itself only notices those when the filter is applied.
func unknownFilter(source string, set *exec.FilterSet) *tokens.Token {
	lexer := tokens.NewLexer(source)
	go lexer.Run()

	var found, prev *tokens.Token
	for tok := range lexer.Tokens {
		if tok.Type == tokens.Whitespace {
			continue
		}
		if found == nil && prev != nil && prev.Type == tokens.Pipe &&
			tok.Type == tokens.Name && !set.Exists(tok.Val) {
			found = tok
		}
		prev = tok
	}
	return found
}

func (t *Template) File() string {
	return t.file
}

// Render executes the template with vars as its context. The result always
// ends with a newline: one is appended when missing, never a second one.
func (t *Template) Render(vars map[string]any) (string, error) {
	out, err := t.tpl.Execute(vars)
	if err != nil {
		line, class, msg := execLocation(err)
		return "", &ExecError{File: t.file, Line: line, Class: class, Message: msg, Err: err}
	}
	return EnsureTrailingNewline(out), nil
}

// EnsureTrailingNewline appends "\n" unless s already ends with one.
func EnsureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
