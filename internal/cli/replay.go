package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/pkg/adapters/term"
)

// ReplayOptions contains the configuration for the replay command.
type ReplayOptions struct {
	EngineConfig
	ScriptPath string
	Render     bool
	Debug      bool
}

// Replay feeds a gesture script into a fresh engine and prints the
// transcript, one line per step. With Render set every scene mutation is
// repainted as a character grid.
func Replay(opts ReplayOptions) error {
	logger := createLogger(opts.Debug)

	data, err := os.ReadFile(opts.ScriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	script, err := easel.ParseScript(data)
	if err != nil {
		return err
	}

	var extra []easel.Option
	if opts.Render {
		extra = append(extra, easel.WithRenderer(term.NewRenderer(os.Stdout)))
	}

	engine, err := NewEngine(opts.EngineConfig, logger, extra...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := easel.NewRunner()
	r.Output = os.Stdout
	if err := r.Run(ctx, engine, script); err != nil {
		return err
	}

	printSystemMessage("Replay finished in '%s' state.", engine.State())
	return nil
}
