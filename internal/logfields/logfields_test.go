package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Stage", KeyStage, "link", Stage("link")},
		{"Page", KeyPage, "com/x/Foo.html", Page("com/x/Foo.html")},
		{"Package", KeyPackage, "com.x", Package("com.x")},
		{"Class", KeyClass, "com.x.Foo", Class("com.x.Foo")},
		{"Kind", KeyKind, "Trait", Kind("Trait")},
		{"Registry", KeyRegistry, "project", Registry("project")},
		{"Catalog", KeyCatalog, "platform", Catalog("platform")},
		{"Source", KeySource, "rt.jar", Source("rt.jar")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Errorf("%s: key = %q, want %q", c.name, c.attr.Key, c.attrKey)
		}
		if got := c.attr.Value.String(); got != c.attrVal {
			t.Errorf("%s: value = %q, want %q", c.name, got, c.attrVal)
		}
	}
}

func TestNumericAndErrorHelpers(t *testing.T) {
	if a := Count(3); a.Key != KeyCount || a.Value.Int64() != 3 {
		t.Errorf("Count attr = %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Errorf("DurationMS attr = %v", a)
	}
	if a := Error(nil); a.Value.String() != "" {
		t.Errorf("Error(nil) = %q, want empty", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Errorf("Error(boom) = %q", a.Value.String())
	}
}
