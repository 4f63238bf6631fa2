package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bws/jdgen/compiler/alloc"
	"github.com/bws/jdgen/compiler/gen"
)

func TestParseProject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Project
		wantErr string
	}{
		{
			name:  "defaults",
			input: "configurationPackage: com.acme.configuration\n",
			want: &Project{
				ConfigurationPackage: "com.acme.configuration",
				Definitions:          DefaultDefinitionsDir,
				Database:             Database{SlowThreshold: DefaultSlowThreshold},
				Serve:                Serve{Addr: DefaultServeAddr},
			},
		},
		{
			name: "full",
			input: `configurationPackage: com.acme.configuration
sourceDir: java/src
webContentDir: web
sqlDir: db
statePath: build/state.msgpack
migrationDir: db/migrations
definitions: defs
workers: 4
counters:
  fields: 100
  actions: 500
database:
  driver: pgx
  dsn: postgres://localhost/acme
  slowThreshold: 2s
serve:
  addr: ":9000"
`,
			want: &Project{
				ConfigurationPackage: "com.acme.configuration",
				SourceDir:            "java/src",
				WebContentDir:        "web",
				SQLDir:               "db",
				StatePath:            "build/state.msgpack",
				MigrationDir:         "db/migrations",
				Definitions:          "defs",
				Workers:              4,
				Counters:             map[alloc.Namespace]int{alloc.Fields: 100, alloc.Actions: 500},
				Database:             Database{Driver: "pgx", DSN: "postgres://localhost/acme", SlowThreshold: 2 * time.Second},
				Serve:                Serve{Addr: ":9000"},
			},
		},
		{
			name:    "unknown key",
			input:   "configurationPackage: a.b\nsourceDirectory: src\n",
			wantErr: "sourceDirectory",
		},
		{
			name: "empty",
			want: &Project{
				Definitions: DefaultDefinitionsDir,
				Database:    Database{SlowThreshold: DefaultSlowThreshold},
				Serve:       Serve{Addr: DefaultServeAddr},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseProject(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestLoadProjectDSNOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultProjectFile)
	require.NoError(t, os.WriteFile(path, []byte("configurationPackage: a.b\ndatabase:\n  driver: sqlite\n  dsn: file:one.db\n"), 0o644))

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "file:one.db", p.Database.DSN)

	t.Setenv(DSNEnv, "file:two.db")
	p, err = LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "file:two.db", p.Database.DSN)

	_, err = LoadProject(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProjectEncode(t *testing.T) {
	p := &Project{ConfigurationPackage: "com.acme.configuration", Counters: map[alloc.Namespace]int{alloc.Pages: 7}}
	p.defaults()
	b, err := p.Encode()
	require.NoError(t, err)
	got, err := ParseProject(strings.NewReader(string(b)))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestProjectOptions(t *testing.T) {
	p := &Project{
		ConfigurationPackage: "com.acme.configuration",
		SourceDir:            "java",
		SQLDir:               "db",
		MigrationDir:         "db/migrations",
		Workers:              3,
		Counters:             map[alloc.Namespace]int{alloc.Fields: 10},
	}
	cfg, err := gen.NewConfig(p.Options(slog.New(slog.DiscardHandler))...)
	require.NoError(t, err)
	assert.Equal(t, "java", cfg.SourceDir)
	assert.Equal(t, gen.DefaultWebContentDir, cfg.WebContentDir)
	assert.Equal(t, "db", cfg.SQLDir)
	assert.Equal(t, "db/migrations", cfg.MigrationDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, map[alloc.Namespace]int{alloc.Fields: 10}, cfg.Seeds)

	p.SourceDir = "../outside"
	_, err = gen.NewConfig(p.Options(slog.New(slog.DiscardHandler))...)
	assert.True(t, gen.IsConfigError(err))
}

func TestDatabaseValidate(t *testing.T) {
	tests := []struct {
		db      Database
		wantErr string
	}{
		{Database{}, "driver is not set"},
		{Database{Driver: "oracle", DSN: "x"}, `"oracle" is not one of`},
		{Database{Driver: "mysql"}, "dsn is not set"},
		{Database{Driver: "sqlite", DSN: "file:app.db"}, ""},
	}
	for _, tt := range tests {
		err := tt.db.validate()
		if tt.wantErr == "" {
			assert.NoError(t, err)
			continue
		}
		assert.ErrorContains(t, err, tt.wantErr)
	}
}
