package archive

import (
	"io"
	"log"
)

// defaultLogger discards output by default; callers opt into verbose
// diagnostics the same way the teacher logs non-fatal anomalies
// (skipped duplicate WAD offsets, ignored namespace markers, ...).
var defaultLogger = log.New(io.Discard, "", 0)

// SetLogger installs a package-wide diagnostic logger. Pass nil to
// restore the silent default.
func SetLogger(l *log.Logger) {
	if l == nil {
		defaultLogger = log.New(io.Discard, "", 0)
		return
	}
	defaultLogger = l
}

func logf(format string, args ...interface{}) {
	defaultLogger.Printf(format, args...)
}
