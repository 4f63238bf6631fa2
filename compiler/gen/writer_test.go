package gen

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ariga.io/atlas/sql/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bws/jdgen"
	"github.com/bws/jdgen/compiler/state"
)

// snapshot reads every file below root.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	require.NoError(t, err)
	return files
}

// committedProject commits Init below a temporary root.
func committedProject(t *testing.T, g *Generator) (string, *state.State) {
	t.Helper()
	root := t.TempDir()
	plan, err := g.Init(context.Background())
	require.NoError(t, err)
	_, err = plan.Commit(context.Background(), root)
	require.NoError(t, err)
	st, err := state.Load(filepath.Join(root, g.Config().StatePath))
	require.NoError(t, err)
	return root, st
}

// failRename makes rename fail when fail reports true for a call.
func failRename(t *testing.T, fail func(oldpath, newpath string) bool) {
	t.Helper()
	orig := rename
	t.Cleanup(func() { rename = orig })
	rename = func(oldpath, newpath string) error {
		if fail(oldpath, newpath) {
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errors.New("injected failure")}
		}
		return orig(oldpath, newpath)
	}
}

func TestCommitInit(t *testing.T) {
	g := newTestGenerator(t)
	root, st := committedProject(t, g)
	cfg := g.Config()

	files := snapshot(t, root)
	assert.Contains(t, files, cfg.HeaderPath())
	assert.Contains(t, files, cfg.ConstantsPath(state.FieldIds))
	assert.Contains(t, files, cfg.StatePath)
	assert.Equal(t, "com.acme.app", st.ConfigurationPackage)
	assert.Len(t, st.History, 1)
	for path := range files {
		assert.NotContains(t, path, ".jdgen-", "no staging or backup file is left behind")
	}
}

func TestCommitRefusesExistingFiles(t *testing.T) {
	g := newTestGenerator(t)
	root, _ := committedProject(t, g)
	before := snapshot(t, root)

	plan, err := g.Init(context.Background())
	require.NoError(t, err)
	_, err = plan.Commit(context.Background(), root)
	require.Error(t, err)
	assert.True(t, jdgen.IsDuplicate(err))
	assert.Equal(t, before, snapshot(t, root))
}

func TestCommitFragment(t *testing.T) {
	g := newTestGenerator(t)
	root, st := committedProject(t, g)
	cfg := g.Config()

	plan, err := g.AddFragment(context.Background(), st, invoiceFragment(), nil)
	require.NoError(t, err)
	m, err := plan.Commit(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, len(plan.Files)+1, m.Files)
	assert.Equal(t, len(plan.Report.Updated)+1, m.Backups)

	files := snapshot(t, root)
	assert.Contains(t, files[cfg.ConstantsPath(state.FieldIds)], "INVOICE_NUMBER")
	assert.Contains(t, files[cfg.SQLPath(EntitySQL)], "CREATE TABLE invoice (")
	for _, f := range plan.Files {
		assert.Equal(t, string(f.Content), files[f.Path], f.Path)
	}

	loaded, err := state.Load(filepath.Join(root, cfg.StatePath))
	require.NoError(t, err)
	_, ok := loaded.Fragment("Invoice")
	assert.True(t, ok)
	assert.Len(t, loaded.History, 2)
}

func TestCommitRollback(t *testing.T) {
	g := newTestGenerator(t)
	root, st := committedProject(t, g)
	before := snapshot(t, root)

	plan, err := g.AddFragment(context.Background(), st, invoiceFragment(), nil)
	require.NoError(t, err)
	statePath := filepath.Join(root, g.Config().StatePath)
	failRename(t, func(_, newpath string) bool { return newpath == statePath })

	_, err = plan.Commit(context.Background(), root)
	require.Error(t, err)
	var rb *jdgen.RollbackError
	assert.False(t, errors.As(err, &rb), "every target was restored")
	assert.Equal(t, before, snapshot(t, root))
}

func TestCommitRollbackFailure(t *testing.T) {
	g := newTestGenerator(t)
	root, st := committedProject(t, g)

	plan, err := g.AddFragment(context.Background(), st, invoiceFragment(), nil)
	require.NoError(t, err)
	statePath := filepath.Join(root, g.Config().StatePath)
	failRename(t, func(oldpath, newpath string) bool {
		return newpath == statePath || strings.Contains(oldpath, ".jdgen-bak-")
	})

	_, err = plan.Commit(context.Background(), root)
	var rb *jdgen.RollbackError
	require.ErrorAs(t, err, &rb)
	assert.Contains(t, err.Error(), "injected failure")
}

func TestCommitCanceled(t *testing.T) {
	g := newTestGenerator(t)
	root, st := committedProject(t, g)
	before := snapshot(t, root)

	plan, err := g.AddFragment(context.Background(), st, invoiceFragment(), nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = plan.Commit(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, snapshot(t, root))
}

func TestCommitMigrations(t *testing.T) {
	g := newTestGenerator(t, WithMigrationDir("db/migrations"))
	root, st := committedProject(t, g)
	dir := filepath.Join(root, "db", "migrations")
	assert.NoDirExists(t, dir, "init has no schema changes")

	plan, err := g.AddFragment(context.Background(), st, invoiceFragment(), nil)
	require.NoError(t, err)
	_, err = plan.Commit(context.Background(), root)
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "20240501103000_fragment_invoice.sql"))
	require.NoError(t, err)
	assert.Equal(t, plan.Migration, string(b))
	assert.FileExists(t, filepath.Join(dir, migrate.HashFileName))

	ld, err := migrate.NewLocalDir(dir)
	require.NoError(t, err)
	require.NoError(t, migrate.Validate(ld))

	t.Run("sum covers later migrations", func(t *testing.T) {
		st, err := state.Load(filepath.Join(root, g.Config().StatePath))
		require.NoError(t, err)
		g2 := newTestGenerator(t, WithMigrationDir("db/migrations"), WithClock(func() time.Time { return testNow.Add(time.Hour) }))
		plan, err := g2.AddFragment(context.Background(), st, customerFragment(), nil)
		require.NoError(t, err)
		_, err = plan.Commit(context.Background(), root)
		require.NoError(t, err)

		files, err := ld.Files()
		require.NoError(t, err)
		assert.Len(t, files, 2)
		require.NoError(t, migrate.Validate(ld))
	})
}

func TestPlanSlug(t *testing.T) {
	tests := []struct {
		kind     string
		subjects []string
		want     string
	}{
		{KindFragment, []string{"Line Item"}, "fragment_line_item"},
		{KindRelationship, []string{"Invoice -> Customer"}, "relationship_invoice_customer"},
		{KindBatch, []string{"A", "B"}, "batch_a_b"},
	}
	for _, tt := range tests {
		p := &Plan{Kind: tt.kind, Subjects: tt.subjects}
		assert.Equal(t, tt.want, p.slug())
	}
}
