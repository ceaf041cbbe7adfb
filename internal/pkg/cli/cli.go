package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"ansible-doc-template-extractor/internal/app"
)

const usageExitCode = 2

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Options select the entry point being parsed for.
type Options struct {
	Prog    string
	Version string
	// Legacy selects the single-template interface: a positional OUT_DIR,
	// a required --template and no --format.
	Legacy bool
}

type formatValue string

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(s string) error {
	if !slices.Contains(app.ValidFormats, s) {
		return fmt.Errorf("invalid choice %q (choose from %s)", s, strings.Join(app.ValidFormats, ", "))
	}
	*f = formatValue(s)
	return nil
}

func (f *formatValue) Type() string { return "FORMAT" }

// Parse processes command line arguments. It returns the config, whether
// the program should exit without running (help or version was printed to
// output), or an *ExitError.
func Parse(opts Options, args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := pflag.NewFlagSet(opts.Prog, pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false
	flagSet.Usage = func() {
		printUsage(output, opts, flagSet)
	}

	cfg := &app.Config{Legacy: opts.Legacy}
	format := formatValue(app.DefaultFormat)
	var showVersion, helpTemplate bool

	if opts.Legacy {
		flagSet.StringVar(&cfg.Ext, "ext", app.LegacyDefaultExt,
			"file extension (suffix) for output file(s).")
		flagSet.StringVar(&cfg.Name, "name", "",
			"name of the Ansible role or playbook. When this option is used, only one spec file may be specified. "+
				"Default: Derived from path name of spec file: <role>/meta/argument_specs.yml.")
		flagSet.StringVar(&cfg.Template, "template", "",
			"path name of the template file. See --help-template for details. (required)")
	} else {
		flagSet.StringVarP(&cfg.OutDir, "out-dir", "o", app.DefaultOutDir,
			"path name of the output directory. Default: Current directory.")
		flagSet.StringVarP(&cfg.Name, "name", "n", "",
			"name of the Ansible role or playbook. When this option is used, only one spec file may be specified. "+
				"Default: Derived from path name of the spec file: <name>/meta/argument_specs.yml.")
		flagSet.VarP(&format, "format", "f",
			fmt.Sprintf("format of the output file(s). Valid values: %s.", strings.Join(app.ValidFormats, ", ")))
		flagSet.StringVar(&cfg.Ext, "ext", "",
			"file extension (suffix) of the output file(s). Default: For formats 'md' and 'rst', the format. "+
				"Required for format 'other'.")
		flagSet.StringVarP(&cfg.Template, "template", "t", "",
			"path name of the template file. See --help-template for details. "+
				"Default: For roles, the built-in templates for formats 'md' and 'rst'. "+
				"Required for non-roles and for format 'other'.")
	}
	flagSet.IntVarP(&cfg.Jobs, "jobs", "j", 1, "number of spec files processed concurrently.")
	flagSet.StringVar(&cfg.LogLevel, "log-level", "info", "log level: trace, debug, info, warn or error.")
	flagSet.BoolVar(&showVersion, "version", false, "show the version of the program and exit.")
	flagSet.BoolVar(&helpTemplate, "help-template", false, "show help for the template file and exit.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError(opts.Prog, err.Error())
	}

	if showVersion {
		fmt.Fprintf(output, "version: %s\n", opts.Version)
		return nil, true, nil
	}
	if helpTemplate {
		printHelpTemplate(output, opts.Legacy)
		return nil, true, nil
	}

	positional := flagSet.Args()
	if opts.Legacy && len(positional) > 0 {
		cfg.OutDir = positional[0]
		positional = positional[1:]
	}
	cfg.SpecFiles = positional
	if !opts.Legacy {
		cfg.Format = string(format)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, false, usageError(opts.Prog, fmt.Sprintf("invalid log level %q.", cfg.LogLevel))
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, usageError(opts.Prog, err.Error())
	}
	return cfg, false, nil
}

func usageError(prog, msg string) error {
	return &ExitError{
		Code:    usageExitCode,
		Message: fmt.Sprintf("%s\nRun '%s --help' for usage.", msg, prog),
	}
}

func printUsage(w io.Writer, opts Options, flagSet *pflag.FlagSet) {
	if opts.Legacy {
		fmt.Fprintf(w, `Usage: %s [options] OUT_DIR [SPEC_FILE ...]

Extract documentation from an Ansible argument_specs.yml file (such as
meta/argument_specs.yml in roles) using a template file.

Arguments:
  OUT_DIR     path name of output directory. (required)
  SPEC_FILE   path name of the Ansible argument_specs.yml file. Zero or more
              can be specified.

Options:
`, opts.Prog)
	} else {
		fmt.Fprintf(w, `Usage: %s [options] [SPEC_FILE ...]

Extract documentation from a spec file in YAML format (such as
<role>/meta/argument_specs.yml for roles) using a template file. Template
files for RST and Markdown output formats for roles are included. For
playbooks and for other output formats, templates can be provided by the
user.

Arguments:
  SPEC_FILE   path name of the spec file that documents the role or
              playbook. Zero or more spec files can be specified.

Options:
`, opts.Prog)
	}
	fmt.Fprint(w, flagSet.FlagUsagesWrapped(80))
}

func printHelpTemplate(w io.Writer, legacy bool) {
	fmt.Fprint(w, `
Help for template file

Template files are Jinja2 templates, see
https://jinja.palletsprojects.com/en/stable/templates/. HTML
auto-escaping is enabled, and block tags and comments on lines of their
own do not produce output (as with trim_blocks and lstrip_blocks).
Templates loaded with include, import or extends are looked up next to
the template file.

This program sets up the following variables for use by the template:

* name (string): Name of the Ansible role or playbook.

* spec_file_name (string): Path name of Ansible spec file.

* spec_file_dict (map): Content of Ansible spec file.

Referencing a variable, attribute or item that does not exist is an
error; test with "is defined" or use the default filter.

Filters, in addition to the Jinja2 built-in ones:

* to_yaml, to_nice_yaml, to_json, to_nice_json, bool, mandatory,
  type_debug, regex_replace: as in Ansible.
`)
	if !legacy {
		fmt.Fprint(w, `
* to_md, to_rst: convert text with Ansible markup such as C(...) to
  Markdown or RST.
`)
	}
	fmt.Fprint(w, `
Other extensions:

* The "do" statement evaluates an expression and discards the result,
  e.g. {% do x | mandatory("x is required") %}.

* The Sprig function library is available as the "sprig" variable, e.g.
  {{ sprig.trunc(8, name) }}. See https://masterminds.github.io/sprig/.

`)
}
