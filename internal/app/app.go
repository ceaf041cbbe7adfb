package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"ansible-doc-template-extractor/internal/pkg/logger"
	"ansible-doc-template-extractor/internal/pkg/render"
)

// WriteError is returned when an output file cannot be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("Cannot write output file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// RenderContext is the set of variables a template sees.
type RenderContext struct {
	Name         string
	SpecFileName string
	SpecFileDict any
}

func (c RenderContext) Vars() map[string]any {
	return map[string]any{
		"name":           c.Name,
		"spec_file_name": c.SpecFileName,
		"spec_file_dict": c.SpecFileDict,
	}
}

type job struct {
	index    int
	specFile string
	name     string
	outFile  string
}

// Run compiles the template once and produces one output file per spec
// file. It stops at the first failing spec file; files written before the
// failure are kept.
func Run(ctx context.Context, cfg Config, deps Deps) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Log.Infof("Loading template file: %s", templateDisplayName(cfg))
	tpl, err := deps.Engine.Compile(cfg.Template, cfg.Format)
	if err != nil {
		return err
	}
	logger.Log.Debugf("Compiled template %s", tpl.File())

	jobs, err := planJobs(cfg)
	if err != nil {
		return err
	}

	if cfg.Jobs > 1 && len(jobs) > 1 {
		if dup, ok := duplicateOutput(jobs); ok {
			logger.Log.Warnf("More than one spec file writes %s, processing sequentially", dup)
		} else {
			return runParallel(ctx, tpl, deps.Parser, jobs, cfg.Jobs)
		}
	}
	return runSequential(ctx, tpl, deps.Parser, jobs)
}

func templateDisplayName(cfg Config) string {
	if cfg.Template != "" {
		return cfg.Template
	}
	return fmt.Sprintf("built-in %s template", cfg.Format)
}

func planJobs(cfg Config) ([]job, error) {
	jobs := make([]job, 0, len(cfg.SpecFiles))
	ext := cfg.Extension()
	for i, specFile := range cfg.SpecFiles {
		name, err := ResolveName(cfg.Name, specFile)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job{
			index:    i,
			specFile: specFile,
			name:     name,
			outFile:  OutputPath(cfg.outDir(), name, ext),
		})
	}
	return jobs, nil
}

func duplicateOutput(jobs []job) (string, bool) {
	seen := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		if seen[j.outFile] {
			return j.outFile, true
		}
		seen[j.outFile] = true
	}
	return "", false
}

func runSequential(ctx context.Context, tpl CompiledTemplate, parser SpecParser, jobs []job) error {
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := processSpecFile(tpl, parser, j); err != nil {
			return err
		}
	}
	return nil
}

// runParallel processes up to limit spec files at a time. Once a file fails,
// files after it in input order are skipped, while files before it still
// run. The reported error is therefore always the one of the lowest-indexed
// failing file, as in a sequential run.
func runParallel(ctx context.Context, tpl CompiledTemplate, parser SpecParser, jobs []job, limit int) error {
	errs := make([]error, len(jobs))

	var mu sync.Mutex
	firstFailed := len(jobs)
	skip := func(i int) bool {
		mu.Lock()
		defer mu.Unlock()
		return i > firstFailed
	}
	fail := func(i int) {
		mu.Lock()
		defer mu.Unlock()
		firstFailed = min(firstFailed, i)
	}

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if ctx.Err() != nil || skip(j.index) {
				return nil
			}
			if err := processSpecFile(tpl, parser, j); err != nil {
				errs[j.index] = err
				fail(j.index)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}

func processSpecFile(tpl CompiledTemplate, parser SpecParser, j job) error {
	logCtx := logger.Log.WithField("spec_file", j.specFile)

	logCtx.Infof("Ansible name: %s", j.name)
	logCtx.Infof("Loading spec file: %s", j.specFile)
	doc, err := parser.Load(j.specFile)
	if err != nil {
		return err
	}

	data, err := Render(tpl, RenderContext{
		Name:         j.name,
		SpecFileName: j.specFile,
		SpecFileDict: doc,
	})
	if err != nil {
		return err
	}

	if err := WriteOutput(j.outFile, data); err != nil {
		return err
	}
	logCtx.Infof("Created output file: %s", j.outFile)
	return nil
}

// Render binds the context to the template. The result always ends with a
// newline.
func Render(tpl CompiledTemplate, rc RenderContext) (string, error) {
	data, err := tpl.Render(rc.Vars())
	if err != nil {
		return "", err
	}
	return render.EnsureTrailingNewline(data), nil
}

// DeriveName returns the role name for a spec file laid out as
// <role>/meta/<file>: the name of the directory two levels above it.
// Symlinks are not resolved.
func DeriveName(specFile string) (string, error) {
	abs, err := filepath.Abs(specFile)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path of %s: %w", specFile, err)
	}
	return filepath.Base(filepath.Dir(filepath.Dir(abs))), nil
}

func ResolveName(explicit, specFile string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return DeriveName(specFile)
}

func OutputPath(outDir, name, ext string) string {
	return filepath.Join(outDir, name+"."+strings.TrimLeft(ext, "."))
}

// WriteOutput creates or truncates path. The parent directory must exist.
func WriteOutput(path, data string) error {
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
