// Package log provides the package-level logging calls used across the
// decode pipeline: logger.Infof/Warnf/Errorf/Debugf, the same call shape
// stash's pkg/logger exposes to pkg/ffmpeg and friends. It wraps a single
// shared logrus.Logger so output format and level are configured once, in
// this package's init, rather than per call site.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

var std = logrus.New()

func init() {
	std.SetOutput(os.Stderr)
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	std.SetLevel(logrus.InfoLevel)
}

// SetLevel adjusts the minimum level emitted; an unrecognized level name
// is logged and the current level kept. Nothing in this module calls it,
// so the level stays at Info unless a caller does.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		std.Warnf("unrecognized log level %q, keeping %s", level, std.GetLevel())
		return
	}
	std.SetLevel(lvl)
}

func Infof(format string, args ...any)  { std.Infof(format, args...) }
func Warnf(format string, args ...any)  { std.Warnf(format, args...) }
func Errorf(format string, args ...any) { std.Errorf(format, args...) }
func Debugf(format string, args ...any) { std.Debugf(format, args...) }
func Tracef(format string, args ...any) { std.Tracef(format, args...) }

// WithField returns an entry for structured call sites that need to attach
// a key, e.g. the format or file path under decode.
func WithField(key string, value any) *logrus.Entry {
	return std.WithField(key, value)
}
