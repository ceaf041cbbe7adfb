package app

import (
	"ansible-doc-template-extractor/internal/pkg/markup"
	"ansible-doc-template-extractor/internal/pkg/render"
	"ansible-doc-template-extractor/internal/pkg/spec"
)

// SpecParser loads one spec file into a generic document.
type SpecParser interface {
	Load(path string) (any, error)
}

// CompiledTemplate renders the template for one set of variables. It is
// compiled once per run and must not be changed by rendering.
type CompiledTemplate interface {
	File() string
	Render(vars map[string]any) (string, error)
}

// TemplateEngine compiles the template file, or the built-in template for
// format when templateFile is empty.
type TemplateEngine interface {
	Compile(templateFile, format string) (CompiledTemplate, error)
}

// MarkupResolver converts Ansible inline markup for the to_md and to_rst
// template functions.
type MarkupResolver interface {
	ToMD(v any) string
	ToRST(v any) string
}

type Deps struct {
	Parser SpecParser
	Engine TemplateEngine
}

// DefaultDeps wires the YAML loader and the template engine. The markup
// functions are left out in legacy mode.
func DefaultDeps(cfg Config) Deps {
	var resolver MarkupResolver
	if !cfg.Legacy {
		resolver = markup.Resolver{}
	}
	return Deps{
		Parser: spec.Parser{},
		Engine: engineAdapter{engine: render.NewEngine(resolver)},
	}
}

type engineAdapter struct {
	engine *render.Engine
}

func (a engineAdapter) Compile(templateFile, format string) (CompiledTemplate, error) {
	tpl, err := a.engine.Compile(templateFile, format)
	if err != nil {
		return nil, err
	}
	return tpl, nil
}
