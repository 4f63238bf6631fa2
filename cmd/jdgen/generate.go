package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bws/jdgen/compiler/gen"
	"github.com/bws/jdgen/compiler/load"
)

func (a *app) initCmd() *cobra.Command {
	var pkg string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the project documents and state",
		Long: `init writes the constant classes, the application configuration, the
header page, the three SQL scripts and an empty project state. Without a
project file, one is created for --package.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.project()
			created := false
			switch {
			case errors.Is(err, os.ErrNotExist):
				if pkg == "" {
					return fmt.Errorf("%s does not exist; pass --package to create it", a.configPath)
				}
				p = &Project{ConfigurationPackage: pkg}
				p.defaults()
				created = true
			case err != nil:
				return err
			case pkg != "" && pkg != p.ConfigurationPackage:
				return gen.NewConfigError("ConfigurationPackage", pkg, "project file uses "+p.ConfigurationPackage)
			}
			g, err := a.generator(p)
			if err != nil {
				return err
			}
			plan, err := g.Init(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.commit(cmd.Context(), plan); err != nil {
				return err
			}
			if !created {
				return nil
			}
			b, err := p.Encode()
			if err != nil {
				return err
			}
			return os.WriteFile(a.path(a.configPath), b, 0o644)
		},
	}
	cmd.Flags().StringVar(&pkg, "package", "", "Java package of the constant classes, for example com.acme.configuration")
	return cmd
}

// singleCmd builds the add command of one definition kind.
func (a *app) singleCmd(kind string, pick func(load.Definitions) load.Definitions, add func(*cobra.Command, *gen.Generator, *load.Definition) (*gen.Plan, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>",
		Short: "Generate the " + kind + " defined in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := load.LoadFile(args[0])
			if err != nil {
				return err
			}
			if all, picked := len(defs), pick(defs); all != 1 || len(picked) != 1 {
				return fmt.Errorf("%s: want exactly one %s definition, found %d definitions", args[0], kind, all)
			}
			g, err := a.generatorOnly()
			if err != nil {
				return err
			}
			plan, err := add(cmd, g, defs[0])
			if err != nil {
				return err
			}
			return a.commit(cmd.Context(), plan)
		},
	}
}

// generatorOnly is workspace for commands that load the state themselves.
func (a *app) generatorOnly() (*gen.Generator, error) {
	p, err := a.project()
	if err != nil {
		return nil, err
	}
	return a.generator(p)
}

func (a *app) fragmentCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "fragment", Short: "Fragment commands"}
	cmd.AddCommand(a.singleCmd("fragment", load.Definitions.Fragments,
		func(cmd *cobra.Command, g *gen.Generator, d *load.Definition) (*gen.Plan, error) {
			st, err := a.loadState(g)
			if err != nil {
				return nil, err
			}
			return g.AddFragment(cmd.Context(), st, d.Fragment, d.ViewOptions())
		}))
	return cmd
}

func (a *app) relationshipCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "relationship", Short: "Relationship commands"}
	cmd.AddCommand(a.singleCmd("relationship", load.Definitions.Relationships,
		func(cmd *cobra.Command, g *gen.Generator, d *load.Definition) (*gen.Plan, error) {
			st, err := a.loadState(g)
			if err != nil {
				return nil, err
			}
			return g.AddRelationship(cmd.Context(), st, d.Relationship)
		}))
	return cmd
}

func (a *app) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [dir]",
		Short: "Generate every new definition of a directory in one run",
		Long: `generate reads the definition files of dir (the project definitions
directory by default), skips fragments and relationships the project already
holds and generates the rest as one transaction.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, g, st, err := a.workspace()
			if err != nil {
				return err
			}
			dir := a.path(p.Definitions)
			if len(args) == 1 {
				dir = args[0]
			}
			defs, err := load.Load(cmd.Context(), dir, p.Workers)
			if err != nil {
				return err
			}
			todo := pending(st, defs)
			if len(todo) == 0 {
				fmt.Fprintln(a.out, "nothing to generate")
				return nil
			}
			plan, err := g.Batch(cmd.Context(), st, todo)
			if err != nil {
				return err
			}
			return a.commit(cmd.Context(), plan)
		},
	}
}

func (a *app) planCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "plan <file|dir>",
		Short: "Show what generating the definitions would write",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, g, st, err := a.workspace()
			if err != nil {
				return err
			}
			defs, err := load.Load(cmd.Context(), args[0], p.Workers)
			if err != nil {
				return err
			}
			todo := pending(st, defs)
			if len(todo) == 0 {
				fmt.Fprintln(a.out, "nothing to generate")
				return nil
			}
			plan, err := g.Batch(cmd.Context(), st, todo)
			if err != nil {
				return err
			}
			files, err := plan.Outputs(a.dir)
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(struct {
					*gen.Plan
					Files []*gen.File `json:"files"`
				}{plan, files})
			}
			fmt.Fprintln(a.out, plan.Report.String())
			for _, f := range files {
				mark := "M"
				if f.Created {
					mark = "A"
				}
				fmt.Fprintf(a.out, "%s %s\n", mark, f.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}
