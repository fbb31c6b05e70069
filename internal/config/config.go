// Package config loads the merge configuration: a YAML file with ${VAR}
// expansion, optional .env files, per-domain defaults and validation.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "apidocmerge.yaml"

// Config is the full merge configuration.
type Config struct {
	PrimaryDir   string         `yaml:"primary_dir"`
	SecondaryDir string         `yaml:"secondary_dir"`
	OutputDir    string         `yaml:"output_dir"`
	CleanOutput  *bool          `yaml:"clean_output,omitempty"`
	Platform     UniverseConfig `yaml:"platform"`
	Dynamic      UniverseConfig `yaml:"dynamic"`
	Linking      LinkingConfig  `yaml:"linking"`
	Logging      LoggingConfig  `yaml:"logging"`
	Metrics      MetricsConfig  `yaml:"metrics"`
}

// UniverseConfig describes an externally documented class population.
type UniverseConfig struct {
	Version  string   `yaml:"version"`
	Sources  []string `yaml:"sources,omitempty"`  // jars, jmods, class dirs or name lists
	Packages []string `yaml:"packages,omitempty"` // qualified-name prefixes
}

// LinkingConfig controls the text linker.
type LinkingConfig struct {
	Selectors         []string `yaml:"selectors,omitempty"`
	ExternalSelectors []string `yaml:"external_selectors,omitempty"`
	Workers           int      `yaml:"workers,omitempty"`
	External          *bool    `yaml:"external,omitempty"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig configures the run metrics export.
type MetricsConfig struct {
	// Textfile, when set, receives the run metrics in Prometheus text format.
	Textfile string `yaml:"textfile,omitempty"`
}

// ShouldCleanOutput reports whether the output directory is wiped first.
func (c *Config) ShouldCleanOutput() bool {
	return c.CleanOutput == nil || *c.CleanOutput
}

// ExternalLinking reports whether the external link pass runs.
func (c *Config) ExternalLinking() bool {
	return c.Linking.External == nil || *c.Linking.External
}

// Load reads the file at path, expands it and applies defaults. A missing
// file is an error; use Default for flag-only runs. Validation is left to
// Validate so CLI overrides can be merged first.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ConfigError("configuration file not found").
				WithCause(err).WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "read configuration file").
			WithContext("path", path).Build()
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse configuration file").
			WithContext("path", path).Build()
	}
	return cfg, nil
}

// Parse decodes YAML content after ${VAR} expansion and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, err
	}
	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration holding only defaults.
func Default() *Config {
	loadEnvFiles()
	cfg := &Config{}
	_ = ApplyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).Build()
	}
	clean, external := true, true
	example := Config{
		PrimaryDir:   "./target/site/apidocs",
		SecondaryDir: "./target/site/gapidocs",
		OutputDir:    "./target/site/merged-apidocs",
		CleanOutput:  &clean,
		Platform: UniverseConfig{
			Version:  DefaultPlatformVersion,
			Sources:  []string{"${JAVA_HOME}/jmods"},
			Packages: []string{"java.", "javax."},
		},
		Dynamic: UniverseConfig{
			Version:  DefaultDynamicVersion,
			Sources:  []string{"${GROOVY_HOME}/lib"},
			Packages: []string{"groovy."},
		},
		Linking: LinkingConfig{
			Selectors:         DefaultSelectors(),
			ExternalSelectors: DefaultExternalSelectors(),
			Workers:           4,
			External:          &external,
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal example configuration").Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- example config is not secret
		return errors.WrapError(err, errors.CategoryFileSystem, "write configuration file").
			WithContext("path", path).Build()
	}
	return nil
}
