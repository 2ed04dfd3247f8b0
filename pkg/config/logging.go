package config

import (
	"fmt"
	"io"
	"os"

	"github.com/marmos91/fsaccess/internal/logger"
)

// ConfigureLogging applies the logging section to the process logger.
//
// Returns the opened log file when Output is a path (nil for stdout and
// stderr); the caller closes it on shutdown.
func ConfigureLogging(cfg *LoggingConfig) (io.Closer, error) {
	logger.SetLevel(cfg.Level)
	logger.SetFormat(cfg.Format)

	switch cfg.Output {
	case "", "stdout":
		logger.SetOutput(os.Stdout)
		return nil, nil
	case "stderr":
		logger.SetOutput(os.Stderr)
		return nil, nil
	}

	file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
	}
	logger.SetOutput(file)
	return file, nil
}
