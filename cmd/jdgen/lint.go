package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bws/jdgen"
	"github.com/bws/jdgen/compiler/gen"
	"github.com/bws/jdgen/compiler/load"
	"github.com/bws/jdgen/compiler/state"
)

// debounce is how long the watcher waits for a burst of writes to settle.
const debounce = 200 * time.Millisecond

// LintResult is the outcome of checking a definitions directory.
type LintResult struct {
	Dir         string    `json:"dir"`
	Time        time.Time `json:"time"`
	Definitions int       `json:"definitions"`
	// Pending counts the definitions the project does not hold yet.
	Pending int    `json:"pending"`
	Report  string `json:"report,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK reports whether the definitions can be generated.
func (r *LintResult) OK() bool { return r.Error == "" }

func (r *LintResult) String() string {
	switch {
	case !r.OK():
		return fmt.Sprintf("%s: %s", r.Dir, r.Error)
	case r.Pending == 0:
		return fmt.Sprintf("%s: %d definitions, nothing to generate", r.Dir, r.Definitions)
	}
	return fmt.Sprintf("%s: ok, %s", r.Dir, r.Report)
}

// lint plans the pending definitions of dir without writing anything. Before
// init the definitions are checked against a fresh project.
func lint(ctx context.Context, g *gen.Generator, statePath, dir string, workers int) *LintResult {
	res := &LintResult{Dir: dir, Time: time.Now()}
	fail := func(err error) *LintResult {
		res.Error = err.Error()
		return res
	}
	defs, err := load.Load(ctx, dir, workers)
	if err != nil {
		return fail(err)
	}
	res.Definitions = len(defs)
	if _, err := defs.Order(); err != nil {
		return fail(err)
	}
	st, err := state.Load(statePath)
	if errors.Is(err, jdgen.ErrNotInitialized) {
		var fresh *gen.Plan
		if fresh, err = g.Init(ctx); err == nil {
			st = fresh.State
		}
	}
	if err != nil {
		return fail(err)
	}
	todo := pending(st, defs)
	res.Pending = len(todo)
	if len(todo) == 0 {
		return res
	}
	plan, err := g.Batch(ctx, st, todo)
	if err != nil {
		return fail(err)
	}
	res.Report = plan.Report.String()
	return res
}

func (a *app) lintCmd() *cobra.Command {
	var watching bool
	cmd := &cobra.Command{
		Use:   "lint [dir]",
		Short: "Check that the definitions of a directory can be generated",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.project()
			if err != nil {
				return err
			}
			g, err := a.generator(p)
			if err != nil {
				return err
			}
			dir := a.path(p.Definitions)
			if len(args) == 1 {
				dir = args[0]
			}
			statePath := a.path(g.Config().StatePath)
			run := func() *LintResult {
				res := lint(cmd.Context(), g, statePath, dir, p.Workers)
				fmt.Fprintln(a.out, res)
				return res
			}
			res := run()
			if watching {
				return watch(cmd.Context(), dir, a.logger, func() { run() })
			}
			if !res.OK() {
				return errors.New("lint failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "lint again whenever a definition file changes")
	return cmd
}

// definitionFile reports whether name is a file load.LoadDir reads.
func definitionFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// watch calls fn after the definition files of dir changed, once per burst
// of changes, until ctx is done.
func watch(ctx context.Context, dir string, logger *slog.Logger, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching definitions", "dir", dir)
	t := time.NewTimer(debounce)
	t.Stop()
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !definitionFile(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("definition changed", "file", ev.Name, "op", ev.Op.String())
			t.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "dir", dir, "error", err)
		case <-t.C:
			fn()
		}
	}
}
