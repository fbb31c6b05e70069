// Package catalog builds the name registries the text linker resolves class
// mentions against: one for the merged tree's own pages and one for the
// externally documented platform and dynamic-language runtime classes.
//
// Registries are built in two passes. A Builder is filled by a full tree walk
// or introspection pass, then frozen with Build into an immutable Registry
// that can be shared by any number of linker workers.
package catalog

import (
	"log/slog"
	"sort"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/logfields"
)

// Registry names.
const (
	RegistryProject  = "project"
	RegistryExternal = "external"
)

// Entry is the resolution of one class name.
type Entry struct {
	// Target is a tree-relative page path for project entries and an
	// absolute URL for external ones.
	Target string
	// Display is the anchor text, always the class's simple name.
	Display string
}

// Registry is an immutable name → Entry snapshot.
type Registry struct {
	name      string
	relative  bool
	qualified map[string]Entry
	simple    map[string]Entry

	collisions int
}

// Name identifies the registry in logs and metrics.
func (r *Registry) Name() string { return r.name }

// Relative reports whether targets are relative to the tree root and need
// the per-page prefix back to the root.
func (r *Registry) Relative() bool { return r.relative }

// LookupQualified resolves a fully qualified class name.
func (r *Registry) LookupQualified(name string) (Entry, bool) {
	e, ok := r.qualified[name]
	return e, ok
}

// LookupSimple resolves a simple class name.
func (r *Registry) LookupSimple(name string) (Entry, bool) {
	e, ok := r.simple[name]
	return e, ok
}

// Len is the number of qualified names.
func (r *Registry) Len() int { return len(r.qualified) }

// SimpleLen is the number of simple names.
func (r *Registry) SimpleLen() int { return len(r.simple) }

// Collisions is the number of simple-name collisions met while building.
func (r *Registry) Collisions() int { return r.collisions }

// Empty reports whether nothing can be resolved.
func (r *Registry) Empty() bool { return len(r.qualified) == 0 && len(r.simple) == 0 }

// QualifiedNames returns the qualified keys in ascending order.
func (r *Registry) QualifiedNames() []string {
	names := make([]string, 0, len(r.qualified))
	for k := range r.qualified {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Collision records a simple name registered by two different classes.
type Collision struct {
	SimpleName string
	Previous   string
	Current    string
}

// Builder accumulates entries for a Registry. Not safe for concurrent use.
type Builder struct {
	name       string
	relative   bool
	logger     *slog.Logger
	qualified  map[string]Entry
	simple     map[string]Entry
	collisions []Collision
}

// NewBuilder starts a registry. relative selects tree-relative targets.
func NewBuilder(name string, relative bool, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		name:      name,
		relative:  relative,
		logger:    logger,
		qualified: make(map[string]Entry),
		simple:    make(map[string]Entry),
	}
}

// AddQualified registers a fully qualified name. Later registrations win.
func (b *Builder) AddQualified(name string, e Entry) {
	b.qualified[name] = e
}

// AddSimple registers a simple name. When another target already owns the
// name the new entry overwrites it and the collision is logged.
func (b *Builder) AddSimple(name string, e Entry) {
	if prev, ok := b.simple[name]; ok && prev.Target != e.Target {
		b.collisions = append(b.collisions, Collision{SimpleName: name, Previous: prev.Target, Current: e.Target})
		b.logger.Warn("Duplicated simple class name; last registration wins",
			logfields.Registry(b.name),
			logfields.Class(name),
			slog.String("previous", prev.Target),
			slog.String("current", e.Target))
	}
	b.simple[name] = e
}

// Collisions returns the simple-name collisions seen so far.
func (b *Builder) Collisions() []Collision {
	return append([]Collision(nil), b.collisions...)
}

// Build freezes the builder into a Registry. The builder may keep being used;
// the registry does not observe later changes.
func (b *Builder) Build() *Registry {
	r := &Registry{
		name:      b.name,
		relative:  b.relative,
		qualified: make(map[string]Entry, len(b.qualified)),
		simple:    make(map[string]Entry, len(b.simple)),

		collisions: len(b.collisions),
	}
	for k, v := range b.qualified {
		r.qualified[k] = v
	}
	for k, v := range b.simple {
		r.simple[k] = v
	}
	return r
}
