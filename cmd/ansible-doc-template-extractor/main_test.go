package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ansible-doc-template-extractor/internal/pkg/cli"
	"ansible-doc-template-extractor/internal/pkg/logger"
	"ansible-doc-template-extractor/internal/pkg/render"
)

func init() {
	logger.Log.SetOutput(io.Discard)
}

func writeSpec(t *testing.T, root string) string {
	t.Helper()
	meta := filepath.Join(root, "myrole", "meta")
	require.NoError(t, os.MkdirAll(meta, 0755))
	path := filepath.Join(meta, "argument_specs.yml")
	require.NoError(t, os.WriteFile(path, []byte("argument_specs:\n  main:\n    options: {}\n"), 0644))
	return path
}

func TestRunBuiltinMarkdown(t *testing.T) {
	root := t.TempDir()
	specFile := writeSpec(t, root)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, "prog", []string{"-o", root, specFile}))
	require.Empty(t, out.String())

	data, err := os.ReadFile(filepath.Join(root, "myrole.md"))
	require.NoError(t, err)
	require.Equal(t, "# Ansible role: myrole\n\n## Entry point: `main`\n\n### Options\n\nThis entry point has no options.\n", string(data))
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, "prog", []string{"--version"}))
	require.Equal(t, "version: dev\n", out.String())
}

func TestRunArgumentError(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &out, "prog", []string{"-f", "other"})
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
}

func TestRunTemplateNotFound(t *testing.T) {
	root := t.TempDir()
	specFile := writeSpec(t, root)

	err := run(context.Background(), io.Discard, "prog", []string{"-o", root, "-t", filepath.Join(root, "nope.j2"), specFile})
	var notFound *render.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "Could not find template name nope.j2 in search path: "+root, err.Error())
	require.NoFileExists(t, filepath.Join(root, "myrole.md"))
}
