// Package genome provides reference sequence access for a browsing session.
package genome

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrUnknownChromosome is returned when a sequence is requested for a
	// chromosome the reference does not contain.
	ErrUnknownChromosome = errors.New("unknown chromosome")

	// ErrOutOfRange is returned when a requested range falls outside the chromosome.
	ErrOutOfRange = errors.New("range out of bounds")
)

// Genome is the reference a session is browsing against.
type Genome interface {
	ChromosomeExists(chr string) bool
	// Sequence returns the bases in the 0-based half-open range [start, end).
	Sequence(chr string, start, end int64) ([]byte, error)
}

// Memory is an in-memory reference keyed by chromosome name.
// Lookups accept names with or without the "chr" prefix.
type Memory struct {
	mu        sync.RWMutex
	sequences map[string][]byte
}

// NewMemory creates a reference from chromosome sequences.
func NewMemory(seqs map[string]string) *Memory {
	m := &Memory{sequences: make(map[string][]byte, len(seqs))}
	for chr, seq := range seqs {
		m.sequences[chr] = []byte(seq)
	}
	return m
}

// AddChromosome stores (or replaces) a chromosome sequence.
func (m *Memory) AddChromosome(chr string, seq []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[chr] = seq
}

// ChromosomeExists reports whether chr (or its chr-prefix alias) is present.
func (m *Memory) ChromosomeExists(chr string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.lookup(chr)
	return ok
}

// Sequence returns a copy of the bases in [start, end) on chr.
func (m *Memory) Sequence(chr string, start, end int64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seq, ok := m.lookup(chr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChromosome, chr)
	}
	if start < 0 || end > int64(len(seq)) || start > end {
		return nil, fmt.Errorf("%w: %s:%d-%d (length %d)", ErrOutOfRange, chr, start, end, len(seq))
	}
	out := make([]byte, end-start)
	copy(out, seq[start:end])
	return out, nil
}

// Chromosomes returns a sorted list of chromosome names.
func (m *Memory) Chromosomes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chroms := make([]string, 0, len(m.sequences))
	for chr := range m.sequences {
		chroms = append(chroms, chr)
	}
	sort.Strings(chroms)
	return chroms
}

// Length returns the chromosome length, or -1 if unknown.
func (m *Memory) Length(chr string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seq, ok := m.lookup(chr)
	if !ok {
		return -1
	}
	return int64(len(seq))
}

// lookup resolves chr directly, then via its "chr" prefix alias.
// Callers must hold m.mu.
func (m *Memory) lookup(chr string) ([]byte, bool) {
	if seq, ok := m.sequences[chr]; ok {
		return seq, true
	}
	seq, ok := m.sequences[Alias(chr)]
	return seq, ok
}

// Alias toggles the "chr" prefix: "chr1" -> "1", "1" -> "chr1".
func Alias(chr string) string {
	if strings.HasPrefix(chr, "chr") {
		return chr[3:]
	}
	return "chr" + chr
}
