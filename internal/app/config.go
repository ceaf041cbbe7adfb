package app

import (
	"fmt"
	"slices"
	"strings"
)

const (
	FormatMD    = "md"
	FormatRST   = "rst"
	FormatOther = "other"

	DefaultFormat    = FormatMD
	DefaultOutDir    = "."
	LegacyDefaultExt = "md"
)

var ValidFormats = []string{FormatMD, FormatRST, FormatOther}

type Config struct {
	OutDir    string
	SpecFiles []string
	Name      string
	Format    string
	Ext       string
	Template  string
	Legacy    bool
	Jobs      int
	LogLevel  string
}

// ConfigError is an invalid combination of command line arguments.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// Validate checks the invariants between options. It does not touch the
// file system.
func (c Config) Validate() error {
	if c.Name != "" && len(c.SpecFiles) > 1 {
		return configErrorf("when the --name option is used, only one spec file may be specified.")
	}
	if c.Jobs < 0 {
		return configErrorf("--jobs must not be negative, got %d.", c.Jobs)
	}

	if c.Legacy {
		if c.OutDir == "" {
			return configErrorf("the OUT_DIR argument is required.")
		}
		if c.Template == "" {
			return configErrorf("the --template option is required.")
		}
		return nil
	}

	if !slices.Contains(ValidFormats, c.Format) {
		return configErrorf("invalid format %q (choose from %s).", c.Format, strings.Join(ValidFormats, ", "))
	}
	if c.Format == FormatOther && c.Ext == "" {
		return configErrorf("when format 'other' is specified, the --ext option is required.")
	}
	if c.Format == FormatOther && c.Template == "" {
		return configErrorf("when format 'other' is specified, the --template option is required.")
	}
	return nil
}

// Extension returns the output file extension without leading dots.
func (c Config) Extension() string {
	if c.Ext != "" {
		return strings.TrimLeft(c.Ext, ".")
	}
	if c.Legacy {
		return LegacyDefaultExt
	}
	return c.Format
}

func (c Config) outDir() string {
	if c.OutDir == "" {
		return DefaultOutDir
	}
	return c.OutDir
}
