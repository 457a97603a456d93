// Package featuredb maps feature names, identifiers, aliases and short
// attribute values to the genomic features that carry them. The index is
// partitioned per session; each partition keeps an ordered key space so
// that both exact and prefix lookups are cheap.
package featuredb

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-featuredb/internal/feature"
)

// Validator checks that a chromosome belongs to the session's current genome.
type Validator interface {
	ChromosomeExists(chr string) bool
}

// DB owns the per-session index partitions.
//
// Thread Safety:
//
//	DB is safe for concurrent use. mu guards the session map; it is held in
//	read mode for the whole of every partition operation so that Clear and
//	Destroy never race with an insertion or a range scan. Each partition
//	serializes its own insertions against its scans.
type DB struct {
	mu       sync.RWMutex
	sessions map[SessionID]*partition

	policy  Policy
	rank    Ranking
	logger  *zap.Logger
	metrics *Metrics
}

// New creates an empty index.
func New(opts ...Option) *DB {
	o := options{
		policy: DefaultPolicy(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	return &DB{
		sessions: make(map[SessionID]*partition),
		policy:   o.policy,
		rank:     Descending.WithNonCanonical(o.policy.NonCanonical),
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// Policy returns the indexing policy in effect.
func (db *DB) Policy() Policy {
	return db.policy
}

// Normalize converts a raw name to its index key.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// withPartition runs fn on the session's partition while holding db.mu.
// When create is set a missing partition is created first. Returns false
// if the session has no partition and none was created.
func (db *DB) withPartition(id SessionID, create bool, fn func(p *partition)) bool {
	db.mu.RLock()
	if p, ok := db.sessions[id]; ok {
		defer db.mu.RUnlock()
		fn(p)
		return true
	}
	db.mu.RUnlock()

	if !create {
		return false
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.sessions[id]
	if !ok {
		p = newPartition()
		db.sessions[id] = p
		db.metrics.sessions(len(db.sessions))
	}
	fn(p)
	return true
}

// Create starts a new, empty session and returns its id.
func (db *DB) Create() SessionID {
	id := NewSessionID()
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sessions[id] = newPartition()
	db.metrics.sessions(len(db.sessions))
	return id
}

// Put registers f under name in the session's partition, creating the
// partition if needed. It returns false without error when the name is
// empty or ".", when v reports the feature's chromosome as unknown, or when
// the candidate list for the name is already full. A nil validator, or a
// headless policy, skips the chromosome check.
func (db *DB) Put(id SessionID, name string, f feature.Feature, v Validator) bool {
	key := Normalize(name)
	if !db.admit(key, f, v) {
		return false
	}

	var added bool
	db.withPartition(id, true, func(p *partition) {
		added = db.insert(p, key, f)
	})
	return added
}

// admit applies the name and chromosome checks to a normalized key.
func (db *DB) admit(key string, f feature.Feature, v Validator) bool {
	if key == "" || key == "." {
		db.metrics.insert(outcomeBadName)
		return false
	}
	if !db.policy.Headless && v != nil && !v.ChromosomeExists(f.Chr()) {
		db.metrics.insert(outcomeChromosome)
		return false
	}
	return true
}

func (db *DB) insert(p *partition, key string, f feature.Feature) bool {
	added := p.put(key, f, db.rank, db.policy.MaxDuplicates)
	if added {
		db.metrics.insert(outcomeAccepted)
	} else {
		db.metrics.insert(outcomeFull)
	}
	return added
}

// Get returns the highest-ranked feature registered under exactly name.
func (db *DB) Get(id SessionID, name string) (feature.Feature, bool) {
	db.metrics.query("get")
	key := Normalize(name)
	if key == "" {
		return nil, false
	}

	var (
		f  feature.Feature
		ok bool
	)
	db.withPartition(id, false, func(p *partition) {
		f, ok = p.first(key)
	})
	return f, ok
}

// Candidates returns a copy of the full ranked list registered under exactly name.
func (db *DB) Candidates(id SessionID, name string) []feature.Feature {
	key := Normalize(name)
	if key == "" {
		return nil
	}

	var list []feature.Feature
	db.withPartition(id, false, func(p *partition) {
		list = p.list(key)
	})
	return list
}

// PrefixQuery returns every key that starts with the normalized name, in
// lexicographic key order, each with a copy of its ranked candidates.
// An empty name matches nothing.
func (db *DB) PrefixQuery(id SessionID, name string) []Match {
	db.metrics.query("prefix")
	var matches []Match
	db.scan(id, name, func(key string, features []feature.Feature) bool {
		matches = append(matches, Match{
			Key:      key,
			Features: append([]feature.Feature(nil), features...),
		})
		return true
	})
	return matches
}

// ListCandidates walks the keys starting with name in lexicographic order,
// taking at most limit keys. For each key it appends the top-ranked feature
// when longestOnly is set, or every feature otherwise.
func (db *DB) ListCandidates(id SessionID, name string, limit int, longestOnly bool) []feature.Feature {
	db.metrics.query("list")
	var (
		result []feature.Feature
		taken  int
	)
	if limit <= 0 {
		return nil
	}
	db.scan(id, name, func(_ string, features []feature.Feature) bool {
		if longestOnly {
			result = append(result, features[0])
		} else {
			result = append(result, features...)
		}
		taken++
		return taken < limit
	})
	return result
}

// Search is ListCandidates with longestOnly set, as used by interactive search.
func (db *DB) Search(id SessionID, name string, limit int) []feature.Feature {
	return db.ListCandidates(id, name, limit, true)
}

// scan runs fn over the prefix range for name while the session map and
// partition locks are held.
func (db *DB) scan(id SessionID, name string, fn func(key string, features []feature.Feature) bool) {
	prefix := Normalize(name)
	if prefix == "" {
		return
	}
	db.withPartition(id, false, func(p *partition) {
		p.scanPrefix(prefix, fn)
	})
}

// Clear discards every key indexed for the session. The session stays live.
func (db *DB) Clear(id SessionID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.sessions[id]; ok {
		db.sessions[id] = newPartition()
	}
}

// Destroy removes the session's partition entirely.
func (db *DB) Destroy(id SessionID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.sessions, id)
	db.metrics.sessions(len(db.sessions))
}

// Exists reports whether the session has a partition.
func (db *DB) Exists(id SessionID) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.sessions[id]
	return ok
}

// Size returns the number of distinct keys in the session's partition.
func (db *DB) Size(id SessionID) int {
	n := 0
	db.withPartition(id, false, func(p *partition) {
		n = p.len()
	})
	return n
}

// Sessions returns the ids of all live sessions, sorted by string form.
func (db *DB) Sessions() []SessionID {
	db.mu.RLock()
	ids := make([]SessionID, 0, len(db.sessions))
	for id := range db.sessions {
		ids = append(ids, id)
	}
	db.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// AddFeature registers f under its name, identifier, aliases, and every
// attribute value (its own and its exons') shorter than the policy's
// MaxAttributeLength. Returns the number of keys that accepted f.
func (db *DB) AddFeature(id SessionID, f feature.Feature, v Validator) int {
	added := 0
	db.eachKey(f, func(key string) {
		if db.Put(id, key, f, v) {
			added++
		}
	})
	return added
}

// eachKey calls fn once for every distinct normalized key of f.
func (db *DB) eachKey(f feature.Feature, fn func(key string)) {
	seen := make(map[string]struct{})
	put := func(name string) {
		key := Normalize(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		fn(key)
	}

	put(f.Name())
	put(f.Identifier())
	for _, alias := range f.Aliases() {
		put(alias)
	}
	db.addAttributes(f.Attributes(), put)
	for _, e := range f.Exons() {
		db.addAttributes(e.Attributes, put)
	}
}

func (db *DB) addAttributes(attrs feature.Attributes, put func(string)) {
	for _, value := range attrs.Values() {
		if len(value) < db.policy.MaxAttributeLength {
			put(value)
		}
	}
}

// AddFeatures registers a batch of features and returns the total number of
// accepted keys.
func (db *DB) AddFeatures(id SessionID, features []feature.Feature, v Validator) int {
	added := 0
	for _, f := range features {
		added += db.AddFeature(id, f, v)
	}
	return added
}

// AddFeaturesIfExists is AddFeatures for a session that must already exist.
// The whole batch is indexed under one hold of the session map, so a
// concurrent Destroy either happens before (ok is false, nothing is added)
// or after the batch; it never brings the session back.
func (db *DB) AddFeaturesIfExists(id SessionID, features []feature.Feature, v Validator) (added int, ok bool) {
	ok = db.withPartition(id, false, func(p *partition) {
		for _, f := range features {
			db.eachKey(f, func(key string) {
				if db.admit(key, f, v) && db.insert(p, key, f) {
					added++
				}
			})
		}
	})
	return added, ok
}
