package linker

import (
	"unicode"
	"unicode/utf8"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/catalog"
)

// Resolver looks class names up. *catalog.Registry implements it.
type Resolver interface {
	LookupQualified(name string) (catalog.Entry, bool)
	LookupSimple(name string) (catalog.Entry, bool)
}

// Segment is a run of text, either plain or resolved to a class.
type Segment struct {
	Text    string
	Matched bool
	Entry   catalog.Entry
}

// Identifier runes are letters, digits, '_' and '$'. Spaces, including the
// no-break space javadoc emits for &nbsp;, separate identifiers.
func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// identStartAt reports whether an identifier rune starts at byte offset i.
func identStartAt(text string, i int) bool {
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isIdentStart(r)
}

// chainEnds returns the end offsets of each identifier in the dotted chain
// starting at i, in increasing order.
func chainEnds(text string, i int) []int {
	var ends []int
	for {
		_, size := utf8.DecodeRuneInString(text[i:])
		j := i + size
		for j < len(text) {
			r, n := utf8.DecodeRuneInString(text[j:])
			if !isIdentChar(r) {
				break
			}
			j += n
		}
		ends = append(ends, j)
		if j+1 < len(text) && text[j] == '.' && identStartAt(text, j+1) {
			i = j + 1
			continue
		}
		return ends
	}
}

// continuesChain reports whether the rune before offset i belongs to an
// identifier or a dotted chain.
func continuesChain(text string, i int) bool {
	if i == 0 {
		return false
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:i])
	return prev == '.' || isIdentChar(prev)
}

// Tokenize splits text into plain and matched segments. At every
// identifier-chain start the chain's prefixes are tried longest first, all
// qualified prefixes before any simple one; an unmatched chain is skipped
// whole. Matches therefore never overlap and always end on an identifier
// boundary. Concatenating the segment texts yields text.
func Tokenize(text string, r Resolver) []Segment {
	var segs []Segment
	plain := 0
	for i := 0; i < len(text); {
		c, size := utf8.DecodeRuneInString(text[i:])
		if !isIdentStart(c) || continuesChain(text, i) {
			i += size
			continue
		}
		ends := chainEnds(text, i)
		end, entry, ok := longestMatch(text, i, ends, r)
		if !ok {
			i = ends[len(ends)-1]
			continue
		}
		if plain < i {
			segs = append(segs, Segment{Text: text[plain:i]})
		}
		segs = append(segs, Segment{Text: text[i:end], Matched: true, Entry: entry})
		i, plain = end, end
	}
	if plain < len(text) {
		segs = append(segs, Segment{Text: text[plain:]})
	}
	return segs
}

func longestMatch(text string, start int, ends []int, r Resolver) (int, catalog.Entry, bool) {
	for k := len(ends) - 1; k >= 0; k-- {
		if e, ok := r.LookupQualified(text[start:ends[k]]); ok {
			return ends[k], e, true
		}
	}
	for k := len(ends) - 1; k >= 0; k-- {
		if e, ok := r.LookupSimple(text[start:ends[k]]); ok {
			return ends[k], e, true
		}
	}
	return 0, catalog.Entry{}, false
}

// HasMatch reports whether any segment resolved.
func HasMatch(segs []Segment) bool {
	for _, s := range segs {
		if s.Matched {
			return true
		}
	}
	return false
}
