// Package output provides formatters for index query results.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-featuredb/internal/feature"
)

var (
	matchColumns = []string{
		"#Key",
		"Chrom",
		"Start",
		"End",
		"Strand",
		"Name",
		"Identifier",
		"Exons",
	}
	mutationColumns = []string{
		"#Query",
		"Genome_position",
		"Chrom",
		"Start",
		"End",
		"Strand",
		"Name",
		"Identifier",
	}
)

// TabWriter writes query results in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a writer for name search results.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w), columns: matchColumns}
}

// NewMutationTabWriter creates a writer for mutation query results.
func NewMutationTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w), columns: mutationColumns}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// WriteMatch writes one feature found under key.
func (tw *TabWriter) WriteMatch(key string, f feature.Feature) error {
	values := []string{
		key,
		f.Chr(),
		strconv.FormatInt(f.Start(), 10),
		strconv.FormatInt(f.End(), 10),
		f.Strand().String(),
		orDash(f.Name()),
		orDash(f.Identifier()),
		strconv.Itoa(len(f.Exons())),
	}
	return tw.writeRow(values)
}

// WriteMutation writes one feature matching a mutation query at genome
// position pos (0-based).
func (tw *TabWriter) WriteMutation(query string, pos int64, f feature.Feature) error {
	values := []string{
		query,
		f.Chr() + ":" + strconv.FormatInt(pos+1, 10),
		f.Chr(),
		strconv.FormatInt(f.Start(), 10),
		strconv.FormatInt(f.End(), 10),
		f.Strand().String(),
		orDash(f.Name()),
		orDash(f.Identifier()),
	}
	return tw.writeRow(values)
}

func (tw *TabWriter) writeRow(values []string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
