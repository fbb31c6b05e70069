package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("primary_dir: a\nsecondary_dir: b\noutput_dir: c\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPlatformVersion, cfg.Platform.Version)
	assert.Equal(t, DefaultDynamicVersion, cfg.Dynamic.Version)
	assert.Equal(t, []string{"java.", "javax."}, cfg.Platform.Packages)
	assert.Equal(t, []string{"groovy."}, cfg.Dynamic.Packages)
	assert.Equal(t, DefaultSelectors(), cfg.Linking.Selectors)
	assert.Equal(t, DefaultExternalSelectors(), cfg.Linking.ExternalSelectors)
	assert.Equal(t, runtime.NumCPU(), cfg.Linking.Workers)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.True(t, cfg.ShouldCleanOutput())
	assert.True(t, cfg.ExternalLinking())
}

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("APIDOCMERGE_TEST_JDK", "/opt/jdk")
	cfg, err := Parse([]byte(`
platform:
  version: "1.8"
  sources: ["${APIDOCMERGE_TEST_JDK}/jre/lib/rt.jar"]
clean_output: false
linking:
  external: false
  workers: 3
logging:
  level: DEBUG
  format: Json
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/jdk/jre/lib/rt.jar"}, cfg.Platform.Sources)
	assert.Equal(t, "1.8", cfg.Platform.Version)
	assert.False(t, cfg.ShouldCleanOutput())
	assert.False(t, cfg.ExternalLinking())
	assert.Equal(t, 3, cfg.Linking.Workers)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestParseRejectsUnknownLogLevel(t *testing.T) {
	_, err := Parse([]byte("logging:\n  level: chatty\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestInitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./target/site/apidocs", cfg.PrimaryDir)
	assert.Equal(t, 4, cfg.Linking.Workers)
}

func validDirs(t *testing.T) *Config {
	t.Helper()
	root := t.TempDir()
	cfg := Default()
	cfg.PrimaryDir = filepath.Join(root, "javadoc")
	cfg.SecondaryDir = filepath.Join(root, "groovydoc")
	cfg.OutputDir = filepath.Join(root, "merged")
	require.NoError(t, os.Mkdir(cfg.PrimaryDir, 0o755))
	require.NoError(t, os.Mkdir(cfg.SecondaryDir, 0o755))
	return cfg
}

func TestValidate(t *testing.T) {
	cfg := validDirs(t)
	require.NoError(t, Validate(cfg))

	tests := []struct {
		name   string
		field  string
		mutate func(c *Config)
	}{
		{"missing primary", "primary_dir", func(c *Config) { c.PrimaryDir = "" }},
		{"secondary not a dir", "secondary_dir", func(c *Config) { c.SecondaryDir = filepath.Join(c.SecondaryDir, "nope") }},
		{"output is input", "output_dir", func(c *Config) { c.OutputDir = c.PrimaryDir }},
		{"output contains input", "output_dir", func(c *Config) { c.OutputDir = filepath.Dir(c.PrimaryDir) }},
		{"output inside primary", "output_dir", func(c *Config) { c.OutputDir = filepath.Join(c.PrimaryDir, "merged") }},
		{"output inside secondary", "output_dir", func(c *Config) { c.OutputDir = filepath.Join(c.SecondaryDir, "a", "b") }},
		{"platform version", "platform.version", func(c *Config) { c.Platform.Version = "eleven" }},
		{"dynamic version", "dynamic.version", func(c *Config) { c.Dynamic.Version = "a/b" }},
		{"workers", "linking.workers", func(c *Config) { c.Linking.Workers = 0 }},
		{"selector", "linking.selectors", func(c *Config) { c.Linking.Selectors = []string{"div[["} }},
		{"external selector", "linking.external_selectors", func(c *Config) { c.Linking.ExternalSelectors = []string{"pre[["} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validDirs(t)
			tt.mutate(c)
			err := Validate(c)
			require.Error(t, err)
			ce, ok := errors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, errors.CategoryValidation, ce.Category())
			fields, _ := ce.Context().Get("fields")
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, contains("/a", "/a"))
	assert.True(t, contains("/a", "/a/b"))
	assert.False(t, contains("/a/b", "/a"))
	assert.False(t, contains("/a/b", "/a/c"))
	assert.False(t, contains("/a", "/ab"))
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", NormalizeLogLevel("debug").SlogLevel().String())
	assert.Equal(t, "WARN", NormalizeLogLevel("warning").SlogLevel().String())
	assert.Equal(t, "INFO", NormalizeLogLevel("bogus").SlogLevel().String())
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat(" JSON "))
}
