package classdoc

import (
	"fmt"
	"strings"
)

// Kind is the closed set of page kinds the merger classifies class pages into.
type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindAnnotationType
	KindTrait
)

type kindInfo struct {
	label   string // heading label, "Class Foo"
	section string // package-frame section title
	caption string // package-summary table caption
}

var kinds = [...]kindInfo{
	KindClass:          {label: "Class", section: "Classes", caption: "Class Summary"},
	KindInterface:      {label: "Interface", section: "Interfaces", caption: "Interface Summary"},
	KindAnnotationType: {label: "Annotation Type", section: "Annotation Types", caption: "Annotation Types Summary"},
	KindTrait:          {label: "Trait", section: "Traits", caption: "Trait Summary"},
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindClass, KindInterface, KindAnnotationType, KindTrait}
}

func (k Kind) valid() bool { return k >= 0 && int(k) < len(kinds) }

// Label is the literal used in the class page heading.
func (k Kind) Label() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].label
}

// SectionTitle is the title attribute of the kind's package-frame section.
func (k Kind) SectionTitle() string {
	if !k.valid() {
		return ""
	}
	return kinds[k].section
}

// SummaryCaption is the caption of the kind's package-summary table.
func (k Kind) SummaryCaption() string {
	if !k.valid() {
		return ""
	}
	return kinds[k].caption
}

func (k Kind) String() string { return k.Label() }

// KindFromLabel resolves an exact heading label ("Annotation Type").
func KindFromLabel(label string) (Kind, bool) {
	for _, k := range Kinds() {
		if kinds[k].label == label {
			return k, true
		}
	}
	return 0, false
}

// KindFromHeading resolves the kind of a class page heading such as
// "Class Foo<T>", "[Groovy] Trait Bar" or "Annotation Type Baz".
// An optional leading "[Lang]" tag is dropped; the heading must then start
// with an exact label followed by a space (or be the bare label).
func KindFromHeading(heading string) (Kind, bool) {
	h := strings.TrimSpace(strings.ReplaceAll(heading, "\u00a0", " "))
	if strings.HasPrefix(h, "[") {
		if end := strings.Index(h, "]"); end >= 0 {
			h = strings.TrimSpace(h[end+1:])
		}
	}
	for _, k := range Kinds() {
		label := kinds[k].label
		if h == label || strings.HasPrefix(h, label+" ") {
			return k, true
		}
	}
	return 0, false
}
