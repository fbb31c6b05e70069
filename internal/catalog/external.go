package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/logfields"
)

// Default package filters per universe.
var (
	DefaultPlatformPackages = []string{"java.", "javax."}
	DefaultDynamicPackages  = []string{"groovy."}
)

// Universe names.
const (
	UniversePlatform = "platform"
	UniverseDynamic  = "dynamic"
)

const (
	legacyPlatformURL  = "https://docs.oracle.com/javase/%s/docs/api/"
	modernPlatformURL  = "https://docs.oracle.com/en/java/javase/%s/docs/api/"
	dynamicURL         = "http://docs.groovy-lang.org/%s/html/api/"
	modernPlatformFrom = 11
)

// Universe is one externally documented class population.
type Universe struct {
	Name     string
	BaseURL  string
	Sources  []ClassSource
	Packages []string // qualified-name prefixes; empty accepts everything
}

// ExternalOptions configures BuildExternal.
type ExternalOptions struct {
	PlatformVersion  string
	DynamicVersion   string
	PlatformSources  []ClassSource
	DynamicSources   []ClassSource
	PlatformPackages []string
	DynamicPackages  []string
}

// Universes resolves the options into the platform and dynamic universes.
func (o ExternalOptions) Universes() ([]Universe, error) {
	platformURL, err := PlatformBaseURL(o.PlatformVersion)
	if err != nil {
		return nil, err
	}
	dynURL, err := DynamicBaseURL(o.DynamicVersion)
	if err != nil {
		return nil, err
	}
	pp := o.PlatformPackages
	if pp == nil {
		pp = DefaultPlatformPackages
	}
	dp := o.DynamicPackages
	if dp == nil {
		dp = DefaultDynamicPackages
	}
	return []Universe{
		{Name: UniversePlatform, BaseURL: platformURL, Sources: o.PlatformSources, Packages: pp},
		{Name: UniverseDynamic, BaseURL: dynURL, Sources: o.DynamicSources, Packages: dp},
	}, nil
}

// PlatformMajor parses a platform version such as "8", "1.8" or "17.0.2"
// into its major number.
func PlatformMajor(version string) (int, error) {
	v := strings.TrimSpace(version)
	v = strings.TrimPrefix(v, "1.")
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errors.ValidationError("platform version must be numeric").
			WithContext("version", version).
			Build()
	}
	return n, nil
}

// PlatformBaseURL returns the hosted API docs root for a platform version.
func PlatformBaseURL(version string) (string, error) {
	major, err := PlatformMajor(version)
	if err != nil {
		return "", err
	}
	tmpl := legacyPlatformURL
	if major >= modernPlatformFrom {
		tmpl = modernPlatformURL
	}
	return fmt.Sprintf(tmpl, strconv.Itoa(major)), nil
}

// DynamicBaseURL returns the hosted API docs root for a dynamic-language
// runtime version. The version is used verbatim.
func DynamicBaseURL(version string) (string, error) {
	v := strings.TrimSpace(version)
	if v == "" || strings.ContainsAny(v, "/ ?#") {
		return "", errors.ValidationError("invalid dynamic language version").
			WithContext("version", version).
			Build()
	}
	return fmt.Sprintf(dynamicURL, v), nil
}

// BuildExternal enumerates both universes and registers every documented
// class under its qualified name only. The dynamic universe is registered
// after the platform one and wins on the rare shared name.
func BuildExternal(ctx context.Context, opts ExternalOptions, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	universes, err := opts.Universes()
	if err != nil {
		return nil, err
	}
	b := NewBuilder(RegistryExternal, false, logger)
	for _, u := range universes {
		if err := addUniverse(ctx, b, u, logger); err != nil {
			return nil, err
		}
	}
	reg := b.Build()
	logger.Info("Built external class catalog",
		logfields.Catalog(RegistryExternal),
		logfields.Count(reg.Len()))
	return reg, nil
}

func addUniverse(ctx context.Context, b *Builder, u Universe, logger *slog.Logger) error {
	var detected, skipped int
	for _, src := range u.Sources {
		names, err := src.ClassNames(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return errors.WrapError(err, errors.CategoryCatalog, "enumerate class source").
				Fatal().
				WithContext("universe", u.Name).
				WithContext("source", src.Name()).
				Build()
		}
		for _, bin := range names {
			if !matchesPackages(bin, u.Packages) {
				continue
			}
			cn, err := ResolveBinaryName(bin)
			if err != nil {
				if !stderrors.Is(err, errSkip) {
					skipped++
					logger.Warn("Skipping external class",
						logfields.Catalog(u.Name),
						logfields.Class(bin),
						logfields.Error(err))
				}
				continue
			}
			b.AddQualified(cn.Qualified, Entry{Target: u.BaseURL + cn.PagePath, Display: cn.Simple})
			detected++
		}
	}
	logger.Info("Detected external classes",
		logfields.Catalog(u.Name),
		logfields.Count(detected),
		slog.Int("skipped", skipped),
		slog.String("base_url", u.BaseURL))
	return nil
}

func matchesPackages(name string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
