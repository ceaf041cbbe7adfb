package cli

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ansible-doc-template-extractor/internal/app"
)

var (
	mainOpts   = Options{Prog: "ansible-doc-template-extractor", Version: "1.2.3"}
	legacyOpts = Options{Prog: "ansible-doc-template-extractor-legacy", Version: "1.2.3", Legacy: true}
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		args []string
		want *app.Config
	}{
		{
			name: "defaults",
			opts: mainOpts,
			args: nil,
			want: &app.Config{OutDir: ".", Format: "md", Jobs: 1, LogLevel: "info"},
		},
		{
			name: "all options",
			opts: mainOpts,
			args: []string{"-o", "docs", "-n", "web", "-f", "other", "--ext", "txt", "-t", "t.j2", "-j", "4", "--log-level", "debug", "a.yml"},
			want: &app.Config{
				OutDir:    "docs",
				SpecFiles: []string{"a.yml"},
				Name:      "web",
				Format:    "other",
				Ext:       "txt",
				Template:  "t.j2",
				Jobs:      4,
				LogLevel:  "debug",
			},
		},
		{
			name: "spec files before options",
			opts: mainOpts,
			args: []string{"a.yml", "b.yml", "--format=rst"},
			want: &app.Config{OutDir: ".", SpecFiles: []string{"a.yml", "b.yml"}, Format: "rst", Jobs: 1, LogLevel: "info"},
		},
		{
			name: "legacy",
			opts: legacyOpts,
			args: []string{"--template", "t.j2", "out", "a.yml", "b.yml"},
			want: &app.Config{
				OutDir:    "out",
				SpecFiles: []string{"a.yml", "b.yml"},
				Ext:       "md",
				Template:  "t.j2",
				Legacy:    true,
				Jobs:      1,
				LogLevel:  "info",
			},
		},
		{
			name: "legacy out dir only",
			opts: legacyOpts,
			args: []string{"--template", "t.j2", "--ext", "html", "--name", "x", "out"},
			want: &app.Config{OutDir: "out", Name: "x", Ext: "html", Template: "t.j2", Legacy: true, Jobs: 1, LogLevel: "info"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, exit, err := Parse(tt.opts, tt.args, &out)
			require.NoError(t, err)
			require.False(t, exit)
			if tt.want.SpecFiles == nil {
				tt.want.SpecFiles = []string{}
			}
			if diff := cmp.Diff(tt.want, cfg); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
			require.Empty(t, out.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		args    []string
		wantMsg string
	}{
		{
			name:    "unknown flag",
			opts:    mainOpts,
			args:    []string{"--bogus"},
			wantMsg: "unknown flag: --bogus",
		},
		{
			name:    "bad format",
			opts:    mainOpts,
			args:    []string{"-f", "html"},
			wantMsg: `invalid argument "html" for "-f, --format" flag: invalid choice "html" (choose from md, rst, other)`,
		},
		{
			name:    "name with two spec files",
			opts:    mainOpts,
			args:    []string{"-n", "x", "a.yml", "b.yml"},
			wantMsg: "when the --name option is used, only one spec file may be specified.",
		},
		{
			name:    "other without ext",
			opts:    mainOpts,
			args:    []string{"-f", "other", "-t", "t.j2"},
			wantMsg: "when format 'other' is specified, the --ext option is required.",
		},
		{
			name:    "other without template",
			opts:    mainOpts,
			args:    []string{"-f", "other", "--ext", "txt"},
			wantMsg: "when format 'other' is specified, the --template option is required.",
		},
		{
			name:    "bad log level",
			opts:    mainOpts,
			args:    []string{"--log-level", "loud"},
			wantMsg: `invalid log level "loud".`,
		},
		{
			name:    "legacy without out dir",
			opts:    legacyOpts,
			args:    []string{"--template", "t.j2"},
			wantMsg: "the OUT_DIR argument is required.",
		},
		{
			name:    "legacy without template",
			opts:    legacyOpts,
			args:    []string{"out", "a.yml"},
			wantMsg: "the --template option is required.",
		},
		{
			name:    "legacy has no format option",
			opts:    legacyOpts,
			args:    []string{"--format", "md", "--template", "t.j2", "out"},
			wantMsg: "unknown flag: --format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, exit, err := Parse(tt.opts, tt.args, &out)
			require.Nil(t, cfg)
			require.False(t, exit)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			require.Equal(t, 2, exitErr.Code)
			require.Equal(t, tt.wantMsg+"\nRun '"+tt.opts.Prog+" --help' for usage.", exitErr.Message)
		})
	}
}

func TestParseEagerActions(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		args     []string
		contains []string
		excludes []string
	}{
		{
			name:     "version",
			opts:     mainOpts,
			args:     []string{"--version"},
			contains: []string{"version: 1.2.3\n"},
		},
		{
			name:     "version wins over validation",
			opts:     mainOpts,
			args:     []string{"-n", "x", "a.yml", "b.yml", "-f", "other", "--version"},
			contains: []string{"version: 1.2.3\n"},
		},
		{
			name:     "legacy version without out dir",
			opts:     legacyOpts,
			args:     []string{"--version"},
			contains: []string{"version: 1.2.3\n"},
		},
		{
			name:     "help template",
			opts:     mainOpts,
			args:     []string{"--help-template", "-f", "other"},
			contains: []string{"Help for template file", "Jinja2 templates", "spec_file_dict (map)", "to_md, to_rst", "\"do\" statement"},
		},
		{
			name:     "legacy help template",
			opts:     legacyOpts,
			args:     []string{"--help-template"},
			contains: []string{"Help for template file", "spec_file_name (string)"},
			excludes: []string{"to_md"},
		},
		{
			name:     "help",
			opts:     mainOpts,
			args:     []string{"-h"},
			contains: []string{"Usage: ansible-doc-template-extractor [options] [SPEC_FILE ...]", "--out-dir", "--format", "--jobs"},
		},
		{
			name:     "legacy help",
			opts:     legacyOpts,
			args:     []string{"--help"},
			contains: []string{"Usage: ansible-doc-template-extractor-legacy [options] OUT_DIR [SPEC_FILE ...]", "--template"},
			excludes: []string{"--format", "--out-dir"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, exit, err := Parse(tt.opts, tt.args, &out)
			require.NoError(t, err)
			require.True(t, exit)
			require.Nil(t, cfg)
			for _, s := range tt.contains {
				require.Contains(t, out.String(), s)
			}
			for _, s := range tt.excludes {
				require.NotContains(t, out.String(), s)
			}
		})
	}
}
