package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bws/jdgen/compiler/alloc"
	"github.com/bws/jdgen/compiler/gen"
	"github.com/bws/jdgen/dialect"
)

// DefaultProjectFile is the project file looked up in the project root.
const DefaultProjectFile = "jdgen.yaml"

// DSNEnv overrides the database DSN of the project file.
const DSNEnv = "JDGEN_DSN"

// Default values of the project file.
const (
	DefaultDefinitionsDir = "definitions"
	DefaultServeAddr      = "localhost:8088"
	DefaultSlowThreshold  = 500 * time.Millisecond
)

// Project is the content of jdgen.yaml.
type Project struct {
	// ConfigurationPackage is the Java package of the constant classes.
	ConfigurationPackage string `yaml:"configurationPackage"`
	SourceDir            string `yaml:"sourceDir,omitempty"`
	WebContentDir        string `yaml:"webContentDir,omitempty"`
	SQLDir               string `yaml:"sqlDir,omitempty"`
	StatePath            string `yaml:"statePath,omitempty"`
	MigrationDir         string `yaml:"migrationDir,omitempty"`
	// Definitions is the directory of fragment and relationship files.
	Definitions string `yaml:"definitions,omitempty"`
	Workers     int    `yaml:"workers,omitempty"`
	// Counters seeds the id allocators of a new project.
	Counters map[alloc.Namespace]int `yaml:"counters,omitempty"`
	Database Database                `yaml:"database,omitempty"`
	Serve    Serve                   `yaml:"serve,omitempty"`
}

// Database configures jdgen apply.
type Database struct {
	Driver        string        `yaml:"driver,omitempty"`
	DSN           string        `yaml:"dsn,omitempty"`
	SlowThreshold time.Duration `yaml:"slowThreshold,omitempty"`
}

// Serve configures jdgen serve.
type Serve struct {
	Addr string `yaml:"addr,omitempty"`
}

// ParseProject decodes a project file. Unknown keys are errors.
func ParseProject(r io.Reader) (*Project, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	p := &Project{}
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	p.defaults()
	return p, nil
}

// LoadProject reads the project file at path and applies the DSN
// environment override.
func LoadProject(path string) (*Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParseProject(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if dsn := os.Getenv(DSNEnv); dsn != "" {
		p.Database.DSN = dsn
	}
	return p, nil
}

func (p *Project) defaults() {
	if p.Definitions == "" {
		p.Definitions = DefaultDefinitionsDir
	}
	if p.Serve.Addr == "" {
		p.Serve.Addr = DefaultServeAddr
	}
	if p.Database.SlowThreshold == 0 {
		p.Database.SlowThreshold = DefaultSlowThreshold
	}
}

// Encode returns the project file text.
func (p *Project) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Options converts the project into generator options.
func (p *Project) Options(logger *slog.Logger) []gen.Option {
	opts := []gen.Option{
		gen.WithConfigurationPackage(p.ConfigurationPackage),
		gen.WithLogger(logger),
	}
	for _, o := range []struct {
		value string
		opt   func(string) gen.Option
	}{
		{p.SourceDir, gen.WithSourceDir},
		{p.WebContentDir, gen.WithWebContentDir},
		{p.SQLDir, gen.WithSQLDir},
		{p.StatePath, gen.WithStatePath},
		{p.MigrationDir, gen.WithMigrationDir},
	} {
		if o.value != "" {
			opts = append(opts, o.opt(o.value))
		}
	}
	if p.Workers != 0 {
		opts = append(opts, gen.WithWorkers(p.Workers))
	}
	if len(p.Counters) > 0 {
		opts = append(opts, gen.WithSeeds(p.Counters))
	}
	return opts
}

// validateDatabase checks the settings needed by apply.
func (d Database) validate() error {
	switch {
	case d.Driver == "":
		return errors.New("database.driver is not set")
	case !dialect.Supported(d.Driver):
		return fmt.Errorf("database.driver %q is not one of %v", d.Driver, dialect.Names())
	case d.DSN == "":
		return fmt.Errorf("database.dsn is not set (or set %s)", DSNEnv)
	}
	return nil
}
