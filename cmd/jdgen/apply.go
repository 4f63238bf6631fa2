package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bws/jdgen/compiler/gen"
	"github.com/bws/jdgen/dialect/sql"
)

// scriptOrder is the order apply runs the scripts in: tables first, then the
// lookup rows they reference, then the security rows.
var scriptOrder = []struct {
	name string
	file string
}{
	{"entity", gen.EntitySQL},
	{"category", gen.CategorySQL},
	{"security", gen.SecuritySQL},
}

// scriptNames returns the script files selected by the --script value.
func scriptNames(sel string) ([]string, error) {
	var files []string
	for _, s := range scriptOrder {
		if sel == "all" || sel == s.name {
			files = append(files, s.file)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("unknown script %q, want entity, category, security or all", sel)
	}
	return files, nil
}

func (a *app) applyCmd() *cobra.Command {
	var (
		sel          string
		skipExisting bool
		noTx         bool
		dsn          string
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run the generated SQL scripts against the project database",
		Long: `apply executes app-entity.sql, app-category.sql and app-security.sql
against the database of the project file. Each script runs in its own
transaction. With --skip-existing, tables, constraints and rows that already
exist are skipped, so the scripts can be applied after every run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.project()
			if err != nil {
				return err
			}
			if dsn != "" {
				p.Database.DSN = dsn
			}
			if err := p.Database.validate(); err != nil {
				return err
			}
			files, err := scriptNames(sel)
			if err != nil {
				return err
			}
			g, err := a.generator(p)
			if err != nil {
				return err
			}
			drv, err := sql.Open(p.Database.Driver, p.Database.DSN)
			if err != nil {
				return err
			}
			defer drv.Close()
			stats := sql.NewStatsDriver(drv,
				sql.WithSlowThreshold(p.Database.SlowThreshold),
				sql.WithSlowStatementLog(a.logger),
			)
			opts := []sql.ApplyOption{sql.WithApplyLogger(a.logger)}
			if skipExisting {
				opts = append(opts, sql.SkipExisting())
			}
			if noTx {
				opts = append(opts, sql.WithoutTx())
			}
			for _, f := range files {
				path := g.Config().SQLPath(f)
				b, err := os.ReadFile(a.path(path))
				if err != nil {
					return err
				}
				res, err := sql.Apply(cmd.Context(), stats, string(b), opts...)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(a.out, "%s: %d statements, %d executed, %d skipped\n", path, res.Statements, res.Executed, res.Skipped)
			}
			fmt.Fprintln(a.out, stats.Stats().Snapshot())
			return nil
		},
	}
	names := make([]string, 0, len(scriptOrder)+1)
	for _, s := range scriptOrder {
		names = append(names, s.name)
	}
	names = append(names, "all")
	cmd.Flags().StringVar(&sel, "script", "all", "script to run: "+strings.Join(names, ", "))
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip objects and rows that already exist")
	cmd.Flags().BoolVar(&noTx, "no-tx", false, "run statements outside a transaction")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN, overriding the project file and "+DSNEnv)
	return cmd
}
