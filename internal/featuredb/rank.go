package featuredb

import (
	"cmp"
	"sort"
	"strings"

	"github.com/inodb/vibe-featuredb/internal/feature"
)

// Ranking orders features that share one index key.
//
// Shorter chromosome names come first: long names in reference assemblies
// usually denote unplaced or alternate scaffolds (chr1_gl000191_random).
// Among equal name lengths, span decides; a descending ranking puts the
// longest feature first.
type Ranking struct {
	descending   bool
	nonCanonical []string
}

var (
	// Ascending ranks shorter spans first.
	Ascending = Ranking{}

	// Descending ranks longer spans first. Candidate lists use this order.
	Descending = Ranking{descending: true}
)

// WithNonCanonical returns a copy of r that ranks chromosomes containing any
// of patterns (case-insensitive) after all others.
func (r Ranking) WithNonCanonical(patterns []string) Ranking {
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	r.nonCanonical = lowered
	return r
}

// Compare returns a negative number when a ranks before b, positive when
// after, and zero when they are tied.
func (r Ranking) Compare(a, b feature.Feature) int {
	if len(r.nonCanonical) > 0 {
		na, nb := r.isNonCanonical(a.Chr()), r.isNonCanonical(b.Chr())
		if na != nb {
			if na {
				return 1
			}
			return -1
		}
	}

	if c := cmp.Compare(len(a.Chr()), len(b.Chr())); c != 0 {
		return c
	}

	if r.descending {
		return cmp.Compare(feature.Span(b), feature.Span(a))
	}
	return cmp.Compare(feature.Span(a), feature.Span(b))
}

func (r Ranking) isNonCanonical(chr string) bool {
	chr = strings.ToLower(chr)
	for _, p := range r.nonCanonical {
		if strings.Contains(chr, p) {
			return true
		}
	}
	return false
}

// insert places f into the ranked list, after any features it ties with.
func (r Ranking) insert(list []feature.Feature, f feature.Feature) []feature.Feature {
	i := sort.Search(len(list), func(i int) bool {
		return r.Compare(f, list[i]) < 0
	})
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = f
	return list
}
