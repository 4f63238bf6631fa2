package gen

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bws/jdgen/compiler/alloc"
	"github.com/bws/jdgen/compiler/state"
	"github.com/bws/jdgen/templates"
)

func TestNewConfigDefaults(t *testing.T) {
	c, err := NewConfig(WithConfigurationPackage("com.acme.app"))
	require.NoError(t, err)

	assert.Equal(t, DefaultSourceDir, c.SourceDir)
	assert.Equal(t, DefaultWebContentDir, c.WebContentDir)
	assert.Equal(t, DefaultSQLDir, c.SQLDir)
	assert.Equal(t, state.DefaultPath, c.StatePath)
	assert.Empty(t, c.MigrationDir)
	assert.Positive(t, c.Workers)
	assert.NotNil(t, c.Logger)
	assert.NotNil(t, c.Clock)
	require.NotNil(t, c.Catalog)
	assert.Empty(t, c.Catalog.Missing(templates.Required...))
}

func TestNewConfigRequiresPackage(t *testing.T) {
	_, err := NewConfig()
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.ErrorIs(t, err, ErrMissingConfig)
}

func TestWithConfigurationPackage(t *testing.T) {
	tests := []struct {
		pkg   string
		valid bool
	}{
		{"com.acme.app", true},
		{"app", true},
		{"com.acme_co.v2", true},
		{"", false},
		{"com..acme", false},
		{"com.acme.", false},
		{"com.2acme", false},
		{"com/acme", false},
	}
	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			c := &Config{}
			err := WithConfigurationPackage(tt.pkg)(c)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.pkg, c.ConfigurationPackage)
			} else {
				assert.True(t, IsConfigError(err))
			}
		})
	}
}

func TestDirOptions(t *testing.T) {
	t.Run("cleans relative paths", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, c.Apply(
			WithSourceDir("java/src/"),
			WithWebContentDir("./web"),
			WithSQLDir("db/sql"),
			WithStatePath(".jdgen/project.msgpack"),
			WithMigrationDir("db/migrations"),
		))
		assert.Equal(t, "java/src", c.SourceDir)
		assert.Equal(t, "web", c.WebContentDir)
		assert.Equal(t, "db/sql", c.SQLDir)
		assert.Equal(t, ".jdgen/project.msgpack", c.StatePath)
		assert.Equal(t, "db/migrations", c.MigrationDir)
	})

	for _, dir := range []string{"", "/abs/path", "..", "../outside", "a/../../b"} {
		t.Run("rejects "+dir, func(t *testing.T) {
			err := WithSourceDir(dir)(&Config{})
			assert.True(t, IsConfigError(err))
		})
	}
}

func TestWithWorkers(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithWorkers(4)(c))
	assert.Equal(t, 4, c.Workers)
	assert.True(t, IsConfigError(WithWorkers(0)(c)))
	assert.True(t, IsConfigError(WithWorkers(-2)(c)))
}

func TestWithSeeds(t *testing.T) {
	c := &Config{}
	seeds := map[alloc.Namespace]int{alloc.Fields: 1000, alloc.Pages: 50}
	require.NoError(t, WithSeeds(seeds)(c))
	assert.Equal(t, seeds, c.Seeds)
	seeds[alloc.Fields] = 1
	assert.Equal(t, 1000, c.Seeds[alloc.Fields], "seeds are copied")

	assert.True(t, IsConfigError(WithSeeds(map[alloc.Namespace]int{"widgets": 1})(c)))
	assert.True(t, IsConfigError(WithSeeds(map[alloc.Namespace]int{alloc.Actions: -1})(c)))
}

func TestWithLoggerClockCatalog(t *testing.T) {
	c := &Config{}
	assert.True(t, IsConfigError(WithLogger(nil)(c)))
	assert.True(t, IsConfigError(WithClock(nil)(c)))
	assert.True(t, IsConfigError(WithCatalog(nil)(c)))

	l := slog.New(slog.DiscardHandler)
	require.NoError(t, WithLogger(l)(c))
	assert.Same(t, l, c.Logger)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, WithClock(func() time.Time { return now })(c))
	assert.Equal(t, now, c.Clock())
}

func TestWithCatalogMissingTemplates(t *testing.T) {
	err := WithCatalog(templates.NewCatalog(map[string]string{
		templates.ConfigConstant: "x",
	}))(&Config{})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Catalog", cfgErr.Option)
	assert.Contains(t, cfgErr.Error(), "required templates are missing")
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(WithWorkers(0), WithConfigurationPackage("ok.pkg"), WithLogger(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workers")
	assert.Contains(t, err.Error(), "Logger")
	assert.Equal(t, "ok.pkg", c.ConfigurationPackage)
}

func TestMustNewConfigPanics(t *testing.T) {
	assert.Panics(t, func() { MustNewConfig() })
	assert.NotPanics(t, func() { MustNewConfig(WithConfigurationPackage("com.acme")) })
}

func TestConfigPaths(t *testing.T) {
	c := MustNewConfig(WithConfigurationPackage("com.acme.app"))
	n := NamesOf("Line Item", "com.acme.orders")

	assert.Equal(t, "src/com/acme/app/FieldIds.java", c.ConstantsPath(state.FieldIds))
	assert.Equal(t, "src/com/acme/app/Configuration.java", c.ConfigurationPath())
	assert.Equal(t, "src/com/acme/app/fragments/LineItemConfiguration.java", c.FragmentConfigurationPath(n))
	assert.Equal(t, "src/com/acme/orders/ViewLineItems.java", c.ClassPath(n, n.ViewClass()))
	assert.Equal(t, "WebContent/lineItem/LineItems.jsp", c.PagePath(n, n.PluralUpper))
	assert.Equal(t, "WebContent/Header.jsp", c.HeaderPath())
	assert.Equal(t, "sql/app-entity.sql", c.SQLPath(EntitySQL))
}
