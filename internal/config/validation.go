package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/catalog"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/htmlutil"
)

// Validate checks a configuration after defaults and CLI overrides are
// applied. All problems are reported together.
func Validate(cfg *Config) error {
	chain := foundation.NewValidatorChain(
		validateDirs,
		validateVersions,
		validateLinking,
	)
	return chain.Validate(cfg).ToError()
}

func validateDirs(cfg *Config) foundation.ValidationResult {
	res := foundation.Valid()
	for _, d := range []struct{ field, path string }{
		{"primary_dir", cfg.PrimaryDir},
		{"secondary_dir", cfg.SecondaryDir},
	} {
		if d.path == "" {
			res = res.Combine(foundation.Invalid(foundation.NewValidationError(d.field, "required", "directory is required")))
			continue
		}
		st, err := os.Stat(d.path)
		if err != nil || !st.IsDir() {
			res = res.Combine(foundation.Invalid(foundation.NewValidationError(d.field, "not_dir", "not an existing directory: "+d.path)))
		}
	}
	if cfg.OutputDir == "" {
		return res.Combine(foundation.Invalid(foundation.NewValidationError("output_dir", "required", "directory is required")))
	}
	for _, in := range []string{cfg.PrimaryDir, cfg.SecondaryDir} {
		switch {
		case in == "":
		case contains(cfg.OutputDir, in):
			res = res.Combine(foundation.Invalid(foundation.NewValidationError("output_dir", "overlap",
				"must not be or contain an input directory: "+in)))
		case contains(in, cfg.OutputDir):
			res = res.Combine(foundation.Invalid(foundation.NewValidationError("output_dir", "nested",
				"must not be inside an input directory: "+in)))
		}
	}
	return res
}

// contains reports whether dir equals or is an ancestor of other.
func contains(dir, other string) bool {
	a, err1 := filepath.Abs(dir)
	b, err2 := filepath.Abs(other)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(a, b)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func validateVersions(cfg *Config) foundation.ValidationResult {
	res := foundation.Valid()
	if _, err := catalog.PlatformMajor(cfg.Platform.Version); err != nil {
		res = res.Combine(foundation.Invalid(foundation.NewValidationError("platform.version", "numeric",
			"must be numeric (8, 1.8, 17): "+cfg.Platform.Version)))
	}
	if _, err := catalog.DynamicBaseURL(cfg.Dynamic.Version); err != nil {
		res = res.Combine(foundation.Invalid(foundation.NewValidationError("dynamic.version", "invalid",
			"must be a plain version string: "+cfg.Dynamic.Version)))
	}
	return res
}

func validateLinking(cfg *Config) foundation.ValidationResult {
	res := foundation.Valid()
	if cfg.Linking.Workers < 1 {
		res = res.Combine(foundation.Invalid(foundation.NewValidationError("linking.workers", "positive", "must be at least 1")))
	}
	for _, set := range []struct {
		field     string
		selectors []string
	}{
		{"linking.selectors", cfg.Linking.Selectors},
		{"linking.external_selectors", cfg.Linking.ExternalSelectors},
	} {
		for _, s := range set.selectors {
			if _, err := htmlutil.Compile(s); err != nil {
				res = res.Combine(foundation.Invalid(foundation.NewValidationError(set.field, "selector", err.Error())))
			}
		}
	}
	return res
}
