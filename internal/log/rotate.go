package log

import (
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation defaults.
const (
	// DefaultMaxSizeMB is the size at which the log file is rotated.
	DefaultMaxSizeMB = 10

	// DefaultMaxBackups is the number of rotated files kept.
	DefaultMaxBackups = 3

	// DefaultMaxAgeDays is how long rotated files are kept.
	DefaultMaxAgeDays = 28
)

// NewRotatingWriter returns a writer appending to path that rotates the file
// once it grows past DefaultMaxSizeMB. Rotated files are compressed.
// The parent directory is created if needed. Close the writer when done.
func NewRotatingWriter(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, err
		}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
		Compress:   true,
	}, nil
}
