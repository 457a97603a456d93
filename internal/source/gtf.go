package source

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-featuredb/internal/feature"
)

// gtfRecord represents a parsed GTF line.
type gtfRecord struct {
	chrom       string
	featureType string
	start       int64 // 0-based
	end         int64 // exclusive
	strand      feature.Strand
	attributes  []attribute
}

type attribute struct {
	key, value string
}

func (r *gtfRecord) attr(key string) string {
	for _, a := range r.attributes {
		if a.key == key {
			return a.value
		}
	}
	return ""
}

// transcriptBuilder accumulates the lines of one transcript.
type transcriptBuilder struct {
	first      *gtfRecord
	transcript *gtfRecord
	exons      []*gtfRecord
	cdsStart   int64
	cdsEnd     int64
	hasCDS     bool
}

// keys mapped onto Name, Identifier and Aliases rather than attributes.
var gtfIdentityKeys = map[string]bool{
	"gene_name":       true,
	"gene_id":         true,
	"transcript_id":   true,
	"transcript_name": true,
	"exon_number":     true,
	"exon_id":         true,
}

// ParseGTF decodes a GTF file into one feature per transcript. Coordinates
// are converted from 1-based inclusive to 0-based half-open. The name is
// gene_name (gene_id if absent), the identifier is the unversioned
// transcript_id, and gene_id, transcript_name and the versioned
// transcript_id become aliases. Transcripts without a transcript line are
// assembled from their exons.
func ParseGTF(reader io.Reader) ([]*feature.BasicFeature, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	builders := make(map[string]*transcriptBuilder)
	var order []string

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		rec, err := parseGTFLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		transcriptID := rec.attr("transcript_id")
		if transcriptID == "" {
			continue // gene-level lines
		}

		b, ok := builders[transcriptID]
		if !ok {
			b = &transcriptBuilder{first: rec}
			builders[transcriptID] = b
			order = append(order, transcriptID)
		}

		switch rec.featureType {
		case "transcript":
			b.transcript = rec
		case "exon":
			b.exons = append(b.exons, rec)
		// Ensembl CDS lines exclude the stop codon. The coding range here
		// includes it, matching BED thickStart/thickEnd, so a GTF transcript
		// and its BED rendering carry the same coding bounds.
		case "CDS", "start_codon", "stop_codon":
			if !b.hasCDS || rec.start < b.cdsStart {
				b.cdsStart = rec.start
			}
			if !b.hasCDS || rec.end > b.cdsEnd {
				b.cdsEnd = rec.end
			}
			b.hasCDS = true
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	features := make([]*feature.BasicFeature, 0, len(order))
	for _, id := range order {
		if f := builders[id].build(id); f != nil {
			features = append(features, f)
		}
	}
	return features, nil
}

func (b *transcriptBuilder) build(transcriptID string) *feature.BasicFeature {
	head := b.transcript
	start, end := int64(0), int64(0)
	if head != nil {
		start, end = head.start, head.end
	} else {
		if len(b.exons) == 0 {
			return nil
		}
		head = b.first
		start, end = b.exons[0].start, b.exons[0].end
		for _, e := range b.exons[1:] {
			start = min(start, e.start)
			end = max(end, e.end)
		}
	}

	f := feature.New(head.chrom, start, end, head.strand)

	name := head.attr("gene_name")
	if name == "" {
		name = stripVersion(head.attr("gene_id"))
	}
	f.SetName(name)
	f.SetIdentifier(stripVersion(transcriptID))
	f.AddAlias(stripVersion(head.attr("gene_id")))
	f.AddAlias(head.attr("transcript_name"))
	f.AddAlias(transcriptID)

	for _, a := range head.attributes {
		if !gtfIdentityKeys[a.key] {
			f.SetAttribute(a.key, a.value)
		}
	}

	for _, rec := range b.exons {
		e := &feature.Exon{Start: rec.start, End: rec.end}
		if b.hasCDS {
			cs, ce := max(rec.start, b.cdsStart), min(rec.end, b.cdsEnd)
			if ce > cs {
				e.CodingStart, e.CodingEnd = cs, ce
			}
		}
		if exonID := rec.attr("exon_id"); exonID != "" {
			e.Attributes = feature.Attributes{}
			e.Attributes.Add("exon_id", stripVersion(exonID))
		}
		f.AddExon(e)
	}
	f.NumberExons()

	return f
}

// parseGTFLine parses a single GTF line.
func parseGTFLine(line string) (*gtfRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	return &gtfRecord{
		chrom:       fields[0],
		featureType: fields[2],
		start:       start - 1,
		end:         end,
		strand:      feature.ParseStrand(fields[6]),
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses the GTF attribute column, keeping repeated keys.
// Format: key "value"; key "value"; ...
func parseAttributes(attrStr string) []attribute {
	var attrs []attribute

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Find the first space to separate key from value
		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}

		key := part[:idx]
		value := strings.Trim(strings.TrimSpace(part[idx+1:]), "\"")
		attrs = append(attrs, attribute{key: key, value: value})
	}

	return attrs
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENST00000456328.2" -> "ENST00000456328"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}
