package gen

import (
	"errors"
	"log/slog"
	"maps"
	"path"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/bws/jdgen/compiler/alloc"
	"github.com/bws/jdgen/compiler/state"
	"github.com/bws/jdgen/templates"
)

// Default project layout, relative to the project root.
const (
	DefaultSourceDir     = "src"
	DefaultWebContentDir = "WebContent"
	DefaultSQLDir        = "sql"
)

// Config holds the generator configuration.
type Config struct {
	// SourceDir is the Java source root.
	SourceDir string
	// WebContentDir is the JSP root.
	WebContentDir string
	// SQLDir holds app-entity.sql, app-security.sql and app-category.sql.
	SQLDir string
	// ConfigurationPackage is the Java package of the constant classes and
	// the application configuration, for example "com.acme.configuration".
	ConfigurationPackage string
	// StatePath is the location of the persisted project state.
	StatePath string
	// MigrationDir, when set, receives one versioned migration file per
	// transaction that changes the schema, plus its atlas.sum.
	MigrationDir string
	// Seeds are the initial allocator maxima of a new project, so the first
	// generated id of a namespace is its seed plus one.
	Seeds map[alloc.Namespace]int
	// Workers bounds the concurrency of commit staging.
	Workers int
	Logger  *slog.Logger
	Catalog *templates.Catalog
	// Clock returns the time recorded in history entries and migration names.
	Clock func() time.Time
}

// Option configures code generation.
type Option func(*Config) error

var javaPackageRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)

// relative reports whether p is a clean relative slash path inside the root.
func relative(p string) bool {
	if p == "" || path.IsAbs(p) || strings.HasPrefix(p, "/") {
		return false
	}
	c := path.Clean(p)
	return c != ".." && !strings.HasPrefix(c, "../")
}

func dirOption(name string, dst func(*Config) *string) func(string) Option {
	return func(dir string) Option {
		return func(c *Config) error {
			if !relative(dir) {
				return NewConfigError(name, dir, "must be a relative path inside the project")
			}
			*dst(c) = path.Clean(dir)
			return nil
		}
	}
}

// WithSourceDir sets the Java source root.
var WithSourceDir = dirOption("SourceDir", func(c *Config) *string { return &c.SourceDir })

// WithWebContentDir sets the JSP root.
var WithWebContentDir = dirOption("WebContentDir", func(c *Config) *string { return &c.WebContentDir })

// WithSQLDir sets the directory of the SQL scripts.
var WithSQLDir = dirOption("SQLDir", func(c *Config) *string { return &c.SQLDir })

// WithStatePath sets the location of the state file.
var WithStatePath = dirOption("StatePath", func(c *Config) *string { return &c.StatePath })

// WithMigrationDir enables versioned migration files in dir.
var WithMigrationDir = dirOption("MigrationDir", func(c *Config) *string { return &c.MigrationDir })

// WithConfigurationPackage sets the Java package of the generated constant
// classes.
func WithConfigurationPackage(pkg string) Option {
	return func(c *Config) error {
		if !javaPackageRe.MatchString(pkg) {
			return NewConfigError("ConfigurationPackage", pkg, "not a valid Java package name")
		}
		c.ConfigurationPackage = pkg
		return nil
	}
}

// WithSeeds sets the initial allocator maxima used by Init.
func WithSeeds(seeds map[alloc.Namespace]int) Option {
	return func(c *Config) error {
		for ns, v := range seeds {
			if !slices.Contains(alloc.Namespaces, ns) {
				return NewConfigError("Seeds", string(ns), "unknown namespace")
			}
			if v < 0 {
				return NewConfigError("Seeds", v, "seed of "+string(ns)+" must not be negative")
			}
		}
		c.Seeds = maps.Clone(seeds)
		return nil
	}
}

// WithWorkers sets the number of parallel workers used while staging files.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithCatalog sets the template catalog. The catalog is shared, never
// modified, by every emitter.
func WithCatalog(cat *templates.Catalog) Option {
	return func(c *Config) error {
		if cat == nil {
			return NewConfigError("Catalog", nil, "catalog cannot be nil")
		}
		if missing := cat.Missing(templates.Required...); len(missing) > 0 {
			return NewConfigError("Catalog", strings.Join(missing, ", "), "required templates are missing")
		}
		c.Catalog = cat
		return nil
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Config) error {
		if now == nil {
			return NewConfigError("Clock", nil, "clock cannot be nil")
		}
		c.Clock = now
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// defaults fills unset fields. The catalog is loaded from the embedded
// template tree when none was given.
func (c *Config) defaults() error {
	if c.SourceDir == "" {
		c.SourceDir = DefaultSourceDir
	}
	if c.WebContentDir == "" {
		c.WebContentDir = DefaultWebContentDir
	}
	if c.SQLDir == "" {
		c.SQLDir = DefaultSQLDir
	}
	if c.StatePath == "" {
		c.StatePath = state.DefaultPath
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Catalog == nil {
		cat, err := templates.Load()
		if err != nil {
			return err
		}
		c.Catalog = cat
	}
	return nil
}

// validate checks the fields that have no usable default.
func (c *Config) validate() error {
	if c.ConfigurationPackage == "" {
		return NewConfigError("ConfigurationPackage", nil, "configuration package is required")
	}
	return nil
}

// NewConfig creates a new Config with the given options and defaults.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if err := c.defaults(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Project level artifact paths, all slash separated and relative to the
// project root.

func (c *Config) packageDir(pkg string) string {
	return path.Join(c.SourceDir, strings.ReplaceAll(pkg, ".", "/"))
}

// ConstantsPath returns the path of a constant class such as FieldIds.
func (c *Config) ConstantsPath(class string) string {
	return path.Join(c.packageDir(c.ConfigurationPackage), class+".java")
}

// ConfigurationPath returns the path of the application configuration class.
func (c *Config) ConfigurationPath() string {
	return path.Join(c.packageDir(c.ConfigurationPackage), "Configuration.java")
}

// FragmentConfigurationPath returns the path of an entity's configuration class.
func (c *Config) FragmentConfigurationPath(n EntityNames) string {
	return path.Join(c.packageDir(c.ConfigurationPackage), "fragments", n.Upper+"Configuration.java")
}

// ClassPath returns the path of a class in the entity's package.
func (c *Config) ClassPath(n EntityNames, class string) string {
	return path.Join(c.packageDir(n.Package), class+".java")
}

// PagePath returns the path of a page in the entity's web directory.
func (c *Config) PagePath(n EntityNames, page string) string {
	return path.Join(c.WebContentDir, n.Lower, page+".jsp")
}

// HeaderPath returns the path of the shared header page.
func (c *Config) HeaderPath() string {
	return path.Join(c.WebContentDir, "Header.jsp")
}

// SQL script names.
const (
	EntitySQL   = "app-entity.sql"
	SecuritySQL = "app-security.sql"
	CategorySQL = "app-category.sql"
)

// SQLPath returns the path of one of the SQL scripts.
func (c *Config) SQLPath(script string) string {
	return path.Join(c.SQLDir, script)
}
