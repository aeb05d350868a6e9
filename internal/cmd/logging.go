package cmd

import (
	"fmt"
	"io"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/config"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/logger"
)

// newLogger builds the console logger on w and, when withFile is set, a run
// log under the configured log directory. close releases the run log.
func newLogger(cfg *config.Config, w io.Writer, withFile bool) (log logger.Logger, close func(), err error) {
	console := logger.NewConsoleLogger(w, cfg.LogLevel)
	if !withFile {
		return console, func() {}, nil
	}

	logDir, err := cfg.LogDirectory()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve log directory: %w", err)
	}
	file, err := logger.NewFileLogger(logDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("create run log: %w", err)
	}
	console.LogDebug(fmt.Sprintf("writing run log to %s", file.RunFile()))
	return logger.NewMultiLogger(console, file), func() { file.Close() }, nil
}
