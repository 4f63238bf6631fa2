package gen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"ariga.io/atlas/sql/migrate"
	"golang.org/x/sync/errgroup"

	"github.com/bws/jdgen"
)

// rename and remove are replaced in tests to simulate failing file systems.
var (
	rename = os.Rename
	remove = os.Remove
)

// CommitMetrics describes a committed plan.
type CommitMetrics struct {
	Files   int   `json:"files"`
	Bytes   int64 `json:"bytes"`
	Backups int   `json:"backups"`
}

// staged is one output of a commit.
type staged struct {
	*File
	target string
	temp   string
	backup string
	// installed is set once target holds the new content.
	installed bool
	lost      error
}

// Outputs returns every file Commit writes: the plan files, the project
// state and, when a migration directory is configured, the migration file
// and its atlas.sum.
func (p *Plan) Outputs(root string) ([]*File, error) {
	files := append([]*File(nil), p.Files...)
	st, err := p.State.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	files = append(files, &File{Path: p.cfg.StatePath, Content: st, Created: p.Kind == KindInit})
	if p.Migration == "" || p.cfg.MigrationDir == "" {
		return files, nil
	}
	name := p.cfg.Clock().UTC().Format("20060102150405") + "_" + p.slug() + ".sql"
	mig := migrate.NewLocalFile(name, []byte(p.Migration))
	var all []migrate.File
	dir := filepath.Join(root, p.cfg.MigrationDir)
	if _, err := os.Stat(dir); err == nil {
		ld, err := migrate.NewLocalDir(dir)
		if err != nil {
			return nil, err
		}
		if all, err = ld.Files(); err != nil {
			return nil, fmt.Errorf("read migrations: %w", err)
		}
	}
	all = append(all, mig)
	slices.SortFunc(all, func(a, b migrate.File) int { return strings.Compare(a.Name(), b.Name()) })
	sum, err := migrate.NewHashFile(all)
	if err != nil {
		return nil, fmt.Errorf("hash migrations: %w", err)
	}
	text, err := sum.MarshalText()
	if err != nil {
		return nil, err
	}
	sumPath := filepath.Join(p.cfg.MigrationDir, migrate.HashFileName)
	_, statErr := os.Stat(filepath.Join(root, sumPath))
	return append(files,
		&File{Path: filepath.Join(p.cfg.MigrationDir, name), Content: mig.Bytes(), Created: true},
		&File{Path: sumPath, Content: text, Created: errors.Is(statErr, fs.ErrNotExist)},
	), nil
}

// slug names the migration file after the plan subjects.
func (p *Plan) slug() string {
	s := strings.ToLower(p.Kind + " " + strings.Join(p.Subjects, " "))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// Commit writes the plan below root. Files are staged next to their targets
// first and then renamed into place; if any step fails every target is
// restored and no file of the plan remains. Created files must not exist.
func (p *Plan) Commit(ctx context.Context, root string) (*CommitMetrics, error) {
	files, err := p.Outputs(root)
	if err != nil {
		return nil, err
	}
	out := make([]*staged, len(files))
	for i, f := range files {
		target := filepath.Join(root, f.Path)
		_, err := os.Stat(target)
		switch {
		case err == nil && f.Created:
			return nil, jdgen.NewDuplicateError("file", f.Path)
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return nil, err
		case err == nil:
			out[i] = &staged{File: f, target: target, backup: target + ".jdgen-bak-" + p.RunID}
		default:
			out[i] = &staged{File: f, target: target}
		}
	}
	if err := p.stage(ctx, out); err != nil {
		cleanup(out)
		return nil, err
	}
	m := &CommitMetrics{}
	for _, s := range out {
		if err := install(s); err != nil {
			err = fmt.Errorf("install %s: %w", s.Path, err)
			if rbErr := errors.Join(s.lost, rollback(out)); rbErr != nil {
				err = &jdgen.RollbackError{Err: errors.Join(err, rbErr)}
			}
			cleanup(out)
			p.cfg.Logger.Error("commit failed", "run", p.RunID, "error", err)
			return nil, err
		}
		m.Files++
		m.Bytes += int64(len(s.Content))
	}
	for _, s := range out {
		if s.backup == "" {
			continue
		}
		m.Backups++
		if err := remove(s.backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
			p.cfg.Logger.Warn("remove backup", "path", s.backup, "error", err)
		}
	}
	p.cfg.Logger.Info("plan committed", "run", p.RunID, "files", m.Files, "bytes", m.Bytes)
	return m, nil
}

// stage writes every file to a temporary sibling of its target.
func (p *Plan) stage(ctx context.Context, out []*staged) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.Workers)
	for _, s := range out {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dir := filepath.Dir(s.target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", dir, err)
			}
			tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.target)+".jdgen-*")
			if err != nil {
				return fmt.Errorf("stage %s: %w", s.Path, err)
			}
			s.temp = tmp.Name()
			if _, err := tmp.Write(s.Content); err != nil {
				tmp.Close()
				return fmt.Errorf("stage %s: %w", s.Path, err)
			}
			if err := tmp.Chmod(0o644); err != nil {
				tmp.Close()
				return err
			}
			return tmp.Close()
		})
	}
	return eg.Wait()
}

// install moves the previous target aside and the staged file into place.
// A previous target that cannot be put back after a failed install is
// recorded in s.lost.
func install(s *staged) error {
	if s.backup != "" {
		if err := rename(s.target, s.backup); err != nil {
			return err
		}
	}
	if err := rename(s.temp, s.target); err != nil {
		if s.backup != "" {
			if rbErr := rename(s.backup, s.target); rbErr != nil {
				s.lost = fmt.Errorf("restore %s: %w", s.Path, rbErr)
			}
		}
		return err
	}
	s.temp = ""
	s.installed = true
	return nil
}

// rollback restores installed targets in reverse order.
func rollback(out []*staged) error {
	var errs []error
	for i := len(out) - 1; i >= 0; i-- {
		s := out[i]
		if !s.installed {
			continue
		}
		var err error
		if s.backup != "" {
			err = rename(s.backup, s.target)
		} else {
			err = remove(s.target)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", s.Path, err))
			continue
		}
		s.installed = false
	}
	return errors.Join(errs...)
}

// cleanup removes staged files that were never installed.
func cleanup(out []*staged) {
	for _, s := range out {
		if s.temp != "" {
			_ = os.Remove(s.temp)
			s.temp = ""
		}
	}
}
