package featuredb

import (
	"sync"
	"unicode/utf8"

	"github.com/google/btree"

	"github.com/inodb/vibe-featuredb/internal/feature"
)

// btreeDegree is the fan-out of the ordered key space.
const btreeDegree = 32

// candidates is one index key and its ranked features.
type candidates struct {
	key      string
	features []feature.Feature
}

func lessKey(a, b *candidates) bool {
	return a.key < b.key
}

// Match is one key returned by a prefix query, with a copy of its ranked features.
type Match struct {
	Key      string
	Features []feature.Feature
}

// partition is the index state of one session: an ordered map from
// normalized key to a bounded, ranked candidate list. The mutex guards both
// single-key access and range scans, so iteration never observes a
// concurrent insertion.
type partition struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[*candidates]
}

func newPartition() *partition {
	return &partition{
		tree: btree.NewG[*candidates](btreeDegree, lessKey),
	}
}

// put inserts f under key in rank order. It returns false once the list
// already holds maxDuplicates features.
func (p *partition) put(key string, f feature.Feature, rank Ranking, maxDuplicates int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.tree.Get(&candidates{key: key})
	if !ok {
		if maxDuplicates < 1 {
			return false
		}
		p.tree.ReplaceOrInsert(&candidates{
			key:      key,
			features: []feature.Feature{f},
		})
		return true
	}

	// Don't let list grow without bounds
	if len(c.features) >= maxDuplicates {
		return false
	}
	c.features = rank.insert(c.features, f)
	return true
}

// first returns the top-ranked feature for key.
func (p *partition) first(key string) (feature.Feature, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.tree.Get(&candidates{key: key})
	if !ok || len(c.features) == 0 {
		return nil, false
	}
	return c.features[0], true
}

// list returns a copy of the candidate list for key.
func (p *partition) list(key string) []feature.Feature {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.tree.Get(&candidates{key: key})
	if !ok {
		return nil
	}
	return append([]feature.Feature(nil), c.features...)
}

// scanPrefix calls fn for every key starting with prefix, in lexicographic
// order, while holding the read lock. fn must not retain features and
// returns false to stop the scan.
func (p *partition) scanPrefix(prefix string, fn func(key string, features []feature.Feature) bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	lo := &candidates{key: prefix}
	hi := &candidates{key: successor(prefix)}
	p.tree.AscendRange(lo, hi, func(c *candidates) bool {
		return fn(c.key, c.features)
	})
}

func (p *partition) len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tree.Len()
}

// successor returns the exclusive upper bound of the keys starting with k:
// k followed by the largest encodable rune.
func successor(k string) string {
	return k + string(utf8.MaxRune)
}
