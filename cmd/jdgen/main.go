// jdgen generates the configuration, pages and SQL of entity fragments for
// BWS web applications.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bws/jdgen/compiler/gen"
	"github.com/bws/jdgen/compiler/load"
	"github.com/bws/jdgen/compiler/state"
)

// app holds the global flags and the streams of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	dir        string
	verbose    bool
	logger     *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	cmd := &cobra.Command{
		Use:   "jdgen",
		Short: "Generate entity fragments for BWS web applications",
		Long: `jdgen turns fragment and relationship definitions into the constants,
configuration, pages, process classes and SQL scripts of a BWS web
application. Every run is validated as a whole before any file is written.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.PersistentFlags().StringVar(&a.configPath, "config", DefaultProjectFile, "project file, relative to --dir")
	cmd.PersistentFlags().StringVar(&a.dir, "dir", ".", "project root")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug records")

	cmd.AddCommand(
		a.initCmd(),
		a.fragmentCmd(),
		a.relationshipCmd(),
		a.generateCmd(),
		a.planCmd(),
		a.lintCmd(),
		a.applyCmd(),
		a.serveCmd(),
		a.stateCmd(),
		a.historyCmd(),
		a.exportCmd(),
		a.importCmd(),
	)
	return cmd
}

// path resolves p against the project root unless it is absolute.
func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.dir, filepath.FromSlash(p))
}

func (a *app) project() (*Project, error) {
	return LoadProject(a.path(a.configPath))
}

func (a *app) generator(p *Project) (*gen.Generator, error) {
	return gen.New(p.Options(a.logger)...)
}

// workspace loads the project file, builds the generator and reads the
// project state.
func (a *app) workspace() (*Project, *gen.Generator, *state.State, error) {
	p, err := a.project()
	if err != nil {
		return nil, nil, nil, err
	}
	g, err := a.generator(p)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := a.loadState(g)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, g, st, nil
}

func (a *app) loadState(g *gen.Generator) (*state.State, error) {
	return state.Load(a.path(g.Config().StatePath))
}

// commit writes a plan and prints its report.
func (a *app) commit(ctx context.Context, plan *gen.Plan) error {
	m, err := plan.Commit(ctx, a.dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, plan.Report.String())
	a.logger.Debug("plan committed", "run", plan.RunID, "files", m.Files, "bytes", m.Bytes)
	return nil
}

// pending drops the definitions the state already holds, so a definitions
// directory can be generated again after new files were added.
func pending(st *state.State, defs load.Definitions) load.Definitions {
	var out load.Definitions
	for _, d := range defs {
		switch {
		case d.Fragment != nil:
			if _, ok := st.Fragment(d.Fragment.EntityName); ok {
				continue
			}
		case d.Relationship != nil:
			if st.HasRelationship(d.Relationship.Source, d.Relationship.Target) {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
