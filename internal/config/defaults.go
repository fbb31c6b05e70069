package config

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/catalog"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/linker"
)

// Default universe versions.
const (
	DefaultPlatformVersion = "11"
	DefaultDynamicVersion  = "latest"
)

// DefaultSelectors returns a copy of the linker's default prose selectors.
func DefaultSelectors() []string { return slices.Clone(linker.DefaultSelectors) }

// DefaultExternalSelectors returns a copy of the external pass selectors.
func DefaultExternalSelectors() []string { return slices.Clone(linker.DefaultExternalSelectors) }

// DefaultApplier applies defaults for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// UniverseDefaultApplier fills versions and package filters.
type UniverseDefaultApplier struct{}

func (UniverseDefaultApplier) Domain() string { return "universes" }

func (UniverseDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Platform.Version == "" {
		cfg.Platform.Version = DefaultPlatformVersion
	}
	if cfg.Dynamic.Version == "" {
		cfg.Dynamic.Version = DefaultDynamicVersion
	}
	if len(cfg.Platform.Packages) == 0 {
		cfg.Platform.Packages = slices.Clone(catalog.DefaultPlatformPackages)
	}
	if len(cfg.Dynamic.Packages) == 0 {
		cfg.Dynamic.Packages = slices.Clone(catalog.DefaultDynamicPackages)
	}
	return nil
}

// LinkingDefaultApplier fills selectors and the worker count.
type LinkingDefaultApplier struct{}

func (LinkingDefaultApplier) Domain() string { return "linking" }

func (LinkingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Linking.Selectors) == 0 {
		cfg.Linking.Selectors = DefaultSelectors()
	}
	if len(cfg.Linking.ExternalSelectors) == 0 {
		cfg.Linking.ExternalSelectors = DefaultExternalSelectors()
	}
	if cfg.Linking.Workers <= 0 {
		cfg.Linking.Workers = runtime.NumCPU()
	}
	return nil
}

// LoggingDefaultApplier canonicalizes the logging enums.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	} else {
		lvl, err := logLevels.NormalizeWithError(string(cfg.Logging.Level))
		if err != nil {
			return err
		}
		cfg.Logging.Level = lvl
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	} else {
		f, err := logFormats.NormalizeWithError(string(cfg.Logging.Format))
		if err != nil {
			return err
		}
		cfg.Logging.Format = f
	}
	return nil
}

var defaultAppliers = []DefaultApplier{
	UniverseDefaultApplier{},
	LinkingDefaultApplier{},
	LoggingDefaultApplier{},
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", a.Domain(), err)
		}
	}
	return nil
}
