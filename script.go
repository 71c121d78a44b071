package easel

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/easel/pkg/domain"
)

// Step is one scripted input sample.
type Step struct {
	// Op is the input to feed: down, move, up, wheel, pan, pan-end, add,
	// cancel-add, open, save or discard.
	Op        string       `yaml:"op" json:"op"`
	At        domain.Point `yaml:"at,omitempty" json:"at,omitempty"`
	Magnitude float64      `yaml:"magnitude,omitempty" json:"magnitude,omitempty"`

	// Name selects the catalog entry for add steps, or names the session for
	// open steps. An add step with Type set skips the catalog and creates
	// the node directly.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
	Note string `yaml:"note,omitempty" json:"note,omitempty"`
}

// Script is a replayable gesture sequence.
type Script struct {
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

var scriptOps = map[string]bool{
	"down":       true,
	"move":       true,
	"up":         true,
	"wheel":      true,
	"pan":        true,
	"pan-end":    true,
	"add":        true,
	"cancel-add": true,
	"open":       true,
	"save":       true,
	"discard":    true,
}

// ParseScript reads a YAML gesture script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, step := range s.Steps {
		if !scriptOps[step.Op] {
			return nil, fmt.Errorf("step %d: unknown op %q", i+1, step.Op)
		}
	}
	return &s, nil
}

// Runner replays gesture scripts against an Engine using the provided IO.
// This allows for easy testing and integration with different frontends
// (CLI, automation, examples).
type Runner struct {
	Output   io.Writer
	Headless bool
}

// NewRunner creates a Runner. Set Output before Run, or set Headless to
// suppress the transcript.
func NewRunner() *Runner {
	return &Runner{}
}

// Run feeds the script into the engine step by step, writing one transcript
// line per step. A step that the engine rejects aborts the run.
func (r *Runner) Run(ctx context.Context, engine *Engine, script *Script) error {
	out := r.Output
	if r.Headless {
		out = io.Discard
	} else if out == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	if script.Name != "" {
		fmt.Fprintf(out, "--- %s ---\n", script.Name)
	}

	for i, step := range script.Steps {
		if err := apply(ctx, engine, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		fmt.Fprintf(out, "step %d %s -> %s\n", i+1, describe(step), engine.State())
	}
	return nil
}

func apply(ctx context.Context, e *Engine, s Step) error {
	switch s.Op {
	case "down":
		e.PointerDown(ctx, s.At)
	case "move":
		e.PointerMove(ctx, s.At)
	case "up":
		e.PointerUp(ctx, s.At)
	case "wheel":
		e.Wheel(ctx, s.At, s.Magnitude)
	case "pan":
		e.ActivatePanning()
	case "pan-end":
		e.DeactivatePanning()
	case "add":
		if s.Type != "" {
			_, err := e.BeginNodeAdd(ctx, s.Name, s.Type, s.At)
			return err
		}
		_, err := e.AddFromCatalog(ctx, s.Name, s.At)
		return err
	case "cancel-add":
		e.CancelNodeAdd(ctx)
	case "open":
		_, err := e.OpenSession(ctx, s.Name, s.Note)
		return err
	case "save":
		_, err := e.SaveSession(ctx)
		return err
	case "discard":
		_, err := e.CancelSession(ctx)
		return err
	}
	return nil
}

func describe(s Step) string {
	switch s.Op {
	case "down", "move", "up":
		return fmt.Sprintf("%s (%g,%g)", s.Op, s.At.X, s.At.Y)
	case "wheel":
		return fmt.Sprintf("wheel %g (%g,%g)", s.Magnitude, s.At.X, s.At.Y)
	case "add", "open":
		return fmt.Sprintf("%s %q", s.Op, s.Name)
	default:
		return s.Op
	}
}
