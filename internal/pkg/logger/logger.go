package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var Log = logrus.New()

// InitLogger sets the default level and formatter. Colors are only used
// when the log output is a terminal.
func InitLogger() {
	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(&CustomFormatter{DisableColors: !isTerminal(Log.Out)})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetLevel switches the global logger to the named level
// (trace, debug, info, warn, error).
func SetLevel(name string) error {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	Log.SetLevel(level)
	return nil
}
