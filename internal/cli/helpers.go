// Package cli carries the shared logic of the easel commands: engine
// construction with the standard CLI conventions, script replay and the
// HTTP server loop.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/easel/internal/logging"
)

// createLogger configures the command logger. In debug mode it writes to
// stderr so transcripts and frames on stdout stay clean.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}
