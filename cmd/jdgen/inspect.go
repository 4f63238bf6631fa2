package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bws/jdgen/compiler/alloc"
	"github.com/bws/jdgen/compiler/gen"
	"github.com/bws/jdgen/compiler/load"
	"github.com/bws/jdgen/compiler/state"
	"github.com/bws/jdgen/naming"
)

// Summary is the overview printed by state show.
type Summary struct {
	ConfigurationPackage string                  `json:"configurationPackage"`
	Counters             map[alloc.Namespace]int `json:"counters"`
	Fragments            []string                `json:"fragments"`
	Relationships        []string                `json:"relationships"`
	Symbols              map[string]int          `json:"symbols"`
	Categories           map[string]int          `json:"categories"`
	Documents            []string                `json:"documents"`
	Runs                 int                     `json:"runs"`
}

func summarize(st *state.State) *Summary {
	s := &Summary{
		ConfigurationPackage: st.ConfigurationPackage,
		Counters:             maps.Clone(st.Counters),
		Fragments:            st.FragmentNames(),
		Symbols:              make(map[string]int, len(st.Symbols)),
		Categories:           maps.Clone(st.Categories),
		Documents:            slices.Sorted(maps.Keys(st.Documents)),
		Runs:                 len(st.History),
	}
	for _, r := range st.Relationships {
		s.Relationships = append(s.Relationships, naming.EntityCommon(r.Source)+" -> "+naming.EntityCommon(r.Target))
	}
	for class, symbols := range st.Symbols {
		s.Symbols[class] = len(symbols)
	}
	return s
}

func (a *app) stateCmd() *cobra.Command {
	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the project state",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, _, st, err := a.workspace()
			if err != nil {
				return err
			}
			s := summarize(st)
			if asJSON {
				return a.printJSON(s)
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "package\t%s\n", s.ConfigurationPackage)
			for _, ns := range alloc.Namespaces {
				fmt.Fprintf(w, "%s\t%d\n", ns, s.Counters[ns])
			}
			fmt.Fprintf(w, "fragments\t%s\n", strings.Join(s.Fragments, ", "))
			fmt.Fprintf(w, "relationships\t%s\n", strings.Join(s.Relationships, ", "))
			for _, class := range state.SymbolClasses {
				fmt.Fprintf(w, "%s\t%d\n", class, s.Symbols[class])
			}
			fmt.Fprintf(w, "documents\t%d\n", len(s.Documents))
			fmt.Fprintf(w, "runs\t%d\n", s.Runs)
			return w.Flush()
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd := &cobra.Command{Use: "state", Short: "Project state commands"}
	cmd.AddCommand(show)
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the committed runs",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, _, st, err := a.workspace()
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(st.History)
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tKIND\tFILES\tSUBJECT")
			for _, e := range st.History {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", e.ID, e.Time.UTC().Format(time.DateTime), e.Kind, len(e.Files), e.Subject)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var pkg, out string
	symbols := &cobra.Command{
		Use:   "symbols",
		Short: "Export the generated constants as Go source",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, _, st, err := a.workspace()
			if err != nil {
				return err
			}
			src, err := gen.ExportSymbols(st, pkg)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = a.out.Write(src)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			return os.WriteFile(out, src, 0o644)
		},
	}
	symbols.Flags().StringVar(&pkg, "package", "symbols", "Go package name")
	symbols.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd := &cobra.Command{Use: "export", Short: "Export project data"}
	cmd.AddCommand(symbols)
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var out, pkg string
	graphql := &cobra.Command{
		Use:   "graphql <schema.graphql>",
		Short: "Convert GraphQL object types into definition files",
		Long: `graphql writes one definition file holding a fragment per object type of
the schema and a relationship per object reference. Object types are placed
in --package unless they carry @package.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			base := filepath.Base(args[0])
			defs, err := load.ParseGraphQL(base, string(src), pkg)
			if err != nil {
				return err
			}
			b, err := load.Marshal(defs)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			target := filepath.Join(out, strings.TrimSuffix(base, filepath.Ext(base))+".yaml")
			if err := os.WriteFile(target, b, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d fragments, %d relationships written to %s\n",
				len(defs.Fragments()), len(defs.Relationships()), target)
			return nil
		},
	}
	graphql.Flags().StringVarP(&out, "out", "o", DefaultDefinitionsDir, "definitions directory")
	graphql.Flags().StringVar(&pkg, "package", "", "Java package of the imported entities")
	cmd := &cobra.Command{Use: "import", Short: "Import definitions from other schema languages"}
	cmd.AddCommand(graphql)
	return cmd
}
