// Package log wraps zap logger used by lrx packages. The logger is no-op until initialized.
package log

import (
	"github.com/pingcap/errors"
	pclog "github.com/pingcap/log"
	"go.uber.org/zap"
)

var appLogger = Logger{zap.NewNop()}

// Logger wraps the zap logger.
type Logger struct {
	*zap.Logger
}

// L returns the global logger.
func L() Logger {
	return appLogger
}

// Config serializes log related config in toml/json.
type Config struct {
	// Log level.
	// One of "debug", "info", "warn", "error", "dpanic", "panic", and "fatal".
	Level string `toml:"level" json:"level"`
	// Log filename, leave empty to log to stderr.
	File string `toml:"file" json:"file"`
	// Max size for a single file, in MB.
	FileMaxSize int `toml:"max-size" json:"max-size"`
	// Format of the log, one of `text`, `json` or `console`.
	Format string `toml:"format" json:"format"`
}

// InitLogger inits the wrapped logger from config.
func InitLogger(cfg *Config) error {
	logger, _, err := pclog.InitLogger(&pclog.Config{
		Level: cfg.Level,
		File: pclog.FileLogConfig{
			Filename: cfg.File,
			MaxSize:  cfg.FileMaxSize,
		},
		Format: cfg.Format,
	})
	if err != nil {
		return errors.Trace(err)
	}
	appLogger = Logger{logger}
	return nil
}

// SetLogger replaces the wrapped logger, nil restores no-op logger.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	appLogger = Logger{logger}
}

// Named returns child logger of the global logger.
func Named(name string) Logger {
	return Logger{appLogger.Logger.Named(name)}
}
