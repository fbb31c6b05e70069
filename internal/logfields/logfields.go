package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPage       = "page"
	KeyPackage    = "package"
	KeyClass      = "class"
	KeyKind       = "kind"
	KeyRegistry   = "registry"
	KeyCatalog    = "catalog"
	KeySource     = "source"
	KeyCount      = "count"
	KeyPath       = "path"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Package(p string) slog.Attr      { return slog.String(KeyPackage, p) }
func Class(c string) slog.Attr        { return slog.String(KeyClass, c) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Registry(r string) slog.Attr     { return slog.String(KeyRegistry, r) }
func Catalog(c string) slog.Attr      { return slog.String(KeyCatalog, c) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
