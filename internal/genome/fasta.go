package genome

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// LoadFASTA reads a reference FASTA file (optionally gzipped) into memory.
func LoadFASTA(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return ParseFASTA(reader)
}

// ParseFASTA parses FASTA content. The chromosome name is the first
// whitespace-delimited token of each header line.
func ParseFASTA(reader io.Reader) (*Memory, error) {
	m := NewMemory(nil)

	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024) // 10MB max line

	var currentName string
	var currentSeq []byte

	flush := func() {
		if currentName != "" {
			m.AddChromosome(currentName, currentSeq)
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			currentName = parseHeader(line)
			currentSeq = nil
			continue
		}
		currentSeq = append(currentSeq, strings.TrimSpace(line)...)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	return m, nil
}

// parseHeader extracts the sequence name from a FASTA header.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if fields := strings.Fields(header); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
