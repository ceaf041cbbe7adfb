package logger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[37m"
	colorReset  = "\033[0m"
)

// CustomFormatter prints "<time> <LEVEL> <message> key=value ..." with the
// level coloured and the fields in sorted order.
type CustomFormatter struct {
	// DisableColors drops the ANSI codes, e.g. when output is a file.
	DisableColors bool
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02T15:04:05-07:00")
	b.WriteString(timestamp)
	b.WriteString(" ")

	levelText := strings.ToUpper(entry.Level.String())
	fmt.Fprintf(b, "%s%s%s ", f.color(getColorByLevel(entry.Level)), levelText, f.color(colorReset))

	b.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		b.WriteString(" ")
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(b, "%s%s=%v%s", f.color(colorBlue), k, entry.Data[k], f.color(colorReset))
		}
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *CustomFormatter) color(code string) string {
	if f.DisableColors {
		return ""
	}
	return code
}

func getColorByLevel(level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorRed
	case logrus.WarnLevel:
		return colorYellow
	case logrus.InfoLevel:
		return colorGreen
	case logrus.DebugLevel, logrus.TraceLevel:
		return colorGray
	default:
		return colorReset
	}
}
