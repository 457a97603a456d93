package source

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-featuredb/internal/feature"
)

// ParseBED decodes BED3 through BED12 records. Track, browser and comment
// lines are skipped. A name of "." means the record has no name. Blocks
// become exons whose coding bounds are the thick range clipped to the block.
func ParseBED(reader io.Reader) ([]*feature.BasicFeature, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var features []*feature.BasicFeature
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}

		f, err := parseBEDLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		features = append(features, f)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan BED: %w", err)
	}
	return features, nil
}

func parseBEDLine(line string) (*feature.BasicFeature, error) {
	var fields []string
	if strings.Contains(line, "\t") {
		fields = strings.Split(line, "\t")
	} else {
		fields = strings.Fields(line)
	}
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid BED line: expected at least 3 fields, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}
	if end < start {
		return nil, fmt.Errorf("end %d before start %d", end, start)
	}

	strand := feature.None
	if len(fields) > 5 {
		strand = feature.ParseStrand(fields[5])
	}

	f := feature.New(fields[0], start, end, strand)
	if len(fields) > 3 {
		f.SetName(strings.TrimSpace(fields[3]))
	}

	thickStart, thickEnd := start, end
	hasThick := false
	if len(fields) > 7 {
		ts, err1 := strconv.ParseInt(fields[6], 10, 64)
		te, err2 := strconv.ParseInt(fields[7], 10, 64)
		if err1 == nil && err2 == nil {
			thickStart, thickEnd = ts, te
			hasThick = true
		}
	}

	if len(fields) > 11 {
		blocks, err := parseBlocks(fields[9], fields[10], fields[11])
		if err != nil {
			return nil, err
		}
		for _, b := range blocks {
			exonStart := start + b[0]
			exonEnd := exonStart + b[1]
			f.AddExon(codingExon(exonStart, exonEnd, thickStart, thickEnd))
		}
	} else if hasThick && thickEnd > thickStart {
		f.AddExon(codingExon(start, end, thickStart, thickEnd))
	}
	f.NumberExons()

	return f, nil
}

// parseBlocks returns (offset, size) pairs.
func parseBlocks(countField, sizesField, startsField string) ([][2]int64, error) {
	count, err := strconv.Atoi(strings.TrimSpace(countField))
	if err != nil {
		return nil, fmt.Errorf("parse blockCount: %w", err)
	}
	sizes := splitList(sizesField)
	starts := splitList(startsField)
	if len(sizes) < count || len(starts) < count {
		return nil, fmt.Errorf("blockCount %d exceeds block lists (%d sizes, %d starts)", count, len(sizes), len(starts))
	}

	blocks := make([][2]int64, 0, count)
	for i := 0; i < count; i++ {
		size, err := strconv.ParseInt(sizes[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse blockSizes: %w", err)
		}
		offset, err := strconv.ParseInt(starts[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse blockStarts: %w", err)
		}
		blocks = append(blocks, [2]int64{offset, size})
	}
	return blocks, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(strings.TrimSpace(s), ",") {
		if p != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

func codingExon(start, end, thickStart, thickEnd int64) *feature.Exon {
	e := &feature.Exon{Start: start, End: end}
	cs, ce := max(start, thickStart), min(end, thickEnd)
	if ce > cs {
		e.CodingStart, e.CodingEnd = cs, ce
	}
	return e
}
