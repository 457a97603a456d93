// Package feature defines the annotated genomic intervals that the name index stores.
package feature

import (
	"sort"
	"strings"
)

// Strand is the orientation of a feature on the reference.
type Strand int8

const (
	None     Strand = 0
	Positive Strand = 1
	Negative Strand = -1
)

// ParseStrand converts a "+", "-" or "." column value to a Strand.
func ParseStrand(s string) Strand {
	switch strings.TrimSpace(s) {
	case "+":
		return Positive
	case "-":
		return Negative
	default:
		return None
	}
}

// String returns the single-character column form of the strand.
func (s Strand) String() string {
	switch s {
	case Positive:
		return "+"
	case Negative:
		return "-"
	default:
		return "."
	}
}

// Attributes is a multi-map of attribute key to values, in insertion order per key.
type Attributes map[string][]string

// Add appends a value under key. Duplicate values are kept once.
func (a Attributes) Add(key, value string) {
	for _, v := range a[key] {
		if v == value {
			return
		}
	}
	a[key] = append(a[key], value)
}

// Get returns the first value stored under key.
func (a Attributes) Get(key string) string {
	if vs := a[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns every value, ordered by key then insertion order.
func (a Attributes) Values() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var values []string
	for _, k := range keys {
		values = append(values, a[k]...)
	}
	return values
}

// Feature is a named or unnamed annotated genomic interval.
// Coordinates are 0-based, half-open. Methods that do not apply to a
// particular feature return empty values rather than failing.
type Feature interface {
	Chr() string
	Start() int64
	End() int64
	Strand() Strand
	Name() string
	Identifier() string
	Aliases() []string
	Attributes() Attributes
	// Exons returns sub-features ordered by genomic start, or nil for
	// features without exon structure.
	Exons() []*Exon
}

// Span returns End - Start for a feature.
func Span(f Feature) int64 {
	return f.End() - f.Start()
}

// Exon represents a single exon within a gene-like feature.
type Exon struct {
	Chrom       string     // Chromosome
	Start       int64      // Genomic start (0-based)
	End         int64      // Genomic end (exclusive)
	Strand      Strand     // Same as parent
	Number      int        // Exon number in transcription order (1-based)
	CodingStart int64      // Coding portion start, equal to CodingEnd if non-coding
	CodingEnd   int64      // Coding portion end (exclusive)
	Attributes  Attributes // Optional exon-level attributes
}

// IsCoding returns true if the exon contains coding sequence.
func (e *Exon) IsCoding() bool {
	return e.CodingEnd > e.CodingStart
}

// BasicFeature is the concrete Feature produced by the decoders.
type BasicFeature struct {
	chrom      string
	start      int64
	end        int64
	strand     Strand
	name       string
	identifier string
	aliases    []string
	attributes Attributes
	exons      []*Exon
}

// New creates a feature covering [start, end) on chrom.
func New(chrom string, start, end int64, strand Strand) *BasicFeature {
	return &BasicFeature{
		chrom:  chrom,
		start:  start,
		end:    end,
		strand: strand,
	}
}

func (f *BasicFeature) Chr() string        { return f.chrom }
func (f *BasicFeature) Start() int64       { return f.start }
func (f *BasicFeature) End() int64         { return f.end }
func (f *BasicFeature) Strand() Strand     { return f.strand }
func (f *BasicFeature) Name() string       { return f.name }
func (f *BasicFeature) Identifier() string { return f.identifier }
func (f *BasicFeature) Aliases() []string  { return f.aliases }
func (f *BasicFeature) Exons() []*Exon     { return f.exons }

// Attributes returns the attribute multi-map, or nil if none were set.
func (f *BasicFeature) Attributes() Attributes { return f.attributes }

// SetName sets the display name. The BED "." placeholder is stored as empty.
func (f *BasicFeature) SetName(name string) *BasicFeature {
	if name == "." {
		name = ""
	}
	f.name = name
	return f
}

// SetIdentifier sets the stable identifier.
func (f *BasicFeature) SetIdentifier(id string) *BasicFeature {
	f.identifier = id
	return f
}

// AddAlias records an alternative name for the feature.
func (f *BasicFeature) AddAlias(alias string) *BasicFeature {
	if alias == "" {
		return f
	}
	for _, a := range f.aliases {
		if a == alias {
			return f
		}
	}
	f.aliases = append(f.aliases, alias)
	return f
}

// SetAttribute adds a key/value pair to the attribute multi-map.
func (f *BasicFeature) SetAttribute(key, value string) *BasicFeature {
	if f.attributes == nil {
		f.attributes = make(Attributes)
	}
	f.attributes.Add(key, value)
	return f
}

// AddExon inserts an exon keeping the exon list ordered by genomic start.
func (f *BasicFeature) AddExon(e *Exon) *BasicFeature {
	if e.Chrom == "" {
		e.Chrom = f.chrom
	}
	if e.Strand == None {
		e.Strand = f.strand
	}
	i := sort.Search(len(f.exons), func(i int) bool {
		return f.exons[i].Start > e.Start
	})
	f.exons = append(f.exons, nil)
	copy(f.exons[i+1:], f.exons[i:])
	f.exons[i] = e
	return f
}

// NumberExons assigns exon numbers in transcription order.
func (f *BasicFeature) NumberExons() {
	n := len(f.exons)
	for i, e := range f.exons {
		if f.strand == Negative {
			e.Number = n - i
		} else {
			e.Number = i + 1
		}
	}
}
