package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SetupLogging configures the standard logrus logger, which every package
// logs through via its own "pkg" entry. If logPath is not empty, output is
// also appended to that file. The returned closer should be called at exit.
func SetupLogging(level string, logPath string) (io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	logrus.SetLevel(lvl)
	logrus.SetFormatter(&SimpleFormatter{})

	if logPath == "" {
		logrus.SetOutput(os.Stdout)
		return io.NopCloser(nil), nil
	}

	err = os.MkdirAll(filepath.Dir(logPath), 0755)
	if err != nil {
		return nil, errors.Wrapf(err, "creating log directory for %s", logPath)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening log file %s", logPath)
	}

	logrus.SetOutput(io.MultiWriter(os.Stdout, f))
	return f, nil
}

// SimpleFormatter writes one short line per entry, like:
//
//	2025/04/06 17:30:00.000000 [INF] message key=value
type SimpleFormatter struct {
	TimestampFormat string
}

func (f *SimpleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	tf := f.TimestampFormat
	if tf == "" {
		tf = "2006/01/02 15:04:05.000000"
	}

	b.WriteString(entry.Time.Format(tf))

	level := strings.ToUpper(entry.Level.String())
	if len(level) > 3 {
		level = level[:3]
	}
	fmt.Fprintf(b, " [%s] %s", level, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
