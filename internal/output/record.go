package output

import (
	"github.com/inodb/vibe-featuredb/internal/feature"
)

// FeatureRecord is the JSON form of a feature, used by the HTTP API in both
// directions.
type FeatureRecord struct {
	Chrom      string              `json:"chrom"`
	Start      int64               `json:"start"`
	End        int64               `json:"end"`
	Strand     string              `json:"strand,omitempty"`
	Name       string              `json:"name,omitempty"`
	Identifier string              `json:"identifier,omitempty"`
	Aliases    []string            `json:"aliases,omitempty"`
	Attributes map[string][]string `json:"attributes,omitempty"`
	Exons      []ExonRecord        `json:"exons,omitempty"`
}

// ExonRecord is the JSON form of an exon.
type ExonRecord struct {
	Start       int64               `json:"start"`
	End         int64               `json:"end"`
	Number      int                 `json:"number,omitempty"`
	CodingStart int64               `json:"coding_start,omitempty"`
	CodingEnd   int64               `json:"coding_end,omitempty"`
	Attributes  map[string][]string `json:"attributes,omitempty"`
}

// MatchRecord groups the features stored under one index key.
type MatchRecord struct {
	Key      string          `json:"key"`
	Features []FeatureRecord `json:"features"`
}

// MutationRecord is one feature matching a mutation query.
type MutationRecord struct {
	Position int64         `json:"position"`
	Feature  FeatureRecord `json:"feature"`
}

// NewFeatureRecord converts a feature to its JSON form.
func NewFeatureRecord(f feature.Feature) FeatureRecord {
	r := FeatureRecord{
		Chrom:      f.Chr(),
		Start:      f.Start(),
		End:        f.End(),
		Name:       f.Name(),
		Identifier: f.Identifier(),
		Aliases:    f.Aliases(),
		Attributes: f.Attributes(),
	}
	if f.Strand() != feature.None {
		r.Strand = f.Strand().String()
	}
	for _, e := range f.Exons() {
		r.Exons = append(r.Exons, ExonRecord{
			Start:       e.Start,
			End:         e.End,
			Number:      e.Number,
			CodingStart: e.CodingStart,
			CodingEnd:   e.CodingEnd,
			Attributes:  e.Attributes,
		})
	}
	return r
}

// NewFeatureRecords converts a slice of features.
func NewFeatureRecords(features []feature.Feature) []FeatureRecord {
	out := make([]FeatureRecord, len(features))
	for i, f := range features {
		out[i] = NewFeatureRecord(f)
	}
	return out
}

// Feature builds a feature from the record. Exons without a number are
// numbered in transcription order.
func (r FeatureRecord) Feature() *feature.BasicFeature {
	f := feature.New(r.Chrom, r.Start, r.End, feature.ParseStrand(r.Strand)).
		SetName(r.Name).
		SetIdentifier(r.Identifier)
	for _, a := range r.Aliases {
		f.AddAlias(a)
	}
	for key, values := range r.Attributes {
		for _, v := range values {
			f.SetAttribute(key, v)
		}
	}

	numbered := true
	for _, er := range r.Exons {
		e := &feature.Exon{
			Start:       er.Start,
			End:         er.End,
			Number:      er.Number,
			CodingStart: er.CodingStart,
			CodingEnd:   er.CodingEnd,
		}
		if len(er.Attributes) > 0 {
			e.Attributes = feature.Attributes(er.Attributes)
		}
		if er.Number == 0 {
			numbered = false
		}
		f.AddExon(e)
	}
	if !numbered {
		f.NumberExons()
	}
	return f
}
