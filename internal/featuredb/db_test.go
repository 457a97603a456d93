package featuredb

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-featuredb/internal/feature"
)

// chromSet is a Validator accepting a fixed set of chromosomes.
type chromSet map[string]bool

func (c chromSet) ChromosomeExists(chr string) bool { return c[chr] }

func named(name, chrom string, start, end int64) *feature.BasicFeature {
	return feature.New(chrom, start, end, feature.Positive).SetName(name)
}

func TestPutGet_CaseInsensitive(t *testing.T) {
	db := New()
	s := db.Create()
	f := named("ABC1", "chr1", 100, 200)

	require.True(t, db.Put(s, "ABC1", f, nil))

	got, ok := db.Get(s, "abc1")
	require.True(t, ok)
	assert.Same(t, f, got)

	got, ok = db.Get(s, "  Abc1 ")
	require.True(t, ok)
	assert.Same(t, f, got)
}

func TestPut_RejectsPlaceholderNames(t *testing.T) {
	db := New()
	s := db.Create()
	f := named("", "chr1", 0, 10)

	assert.False(t, db.Put(s, "", f, nil))
	assert.False(t, db.Put(s, "   ", f, nil))
	assert.False(t, db.Put(s, ".", f, nil))
	assert.Equal(t, 0, db.Size(s))
}

func TestPut_UnknownChromosome(t *testing.T) {
	valid := chromSet{"chr1": true}

	db := New()
	s := db.Create()
	assert.False(t, db.Put(s, "GENE", named("GENE", "chrZ", 0, 10), valid))
	assert.True(t, db.Put(s, "GENE", named("GENE", "chr1", 0, 10), valid))
	assert.Equal(t, 1, len(db.Candidates(s, "GENE")))

	headless := New(WithHeadless(true))
	h := headless.Create()
	assert.True(t, headless.Put(h, "GENE", named("GENE", "chrZ", 0, 10), valid))
}

func TestPut_CreatesPartitionLazily(t *testing.T) {
	db := New()
	s := NewSessionID()
	assert.False(t, db.Exists(s))

	require.True(t, db.Put(s, "TP53", named("TP53", "chr17", 0, 10), nil))
	assert.True(t, db.Exists(s))
	assert.Equal(t, 1, db.Size(s))
}

func TestPut_BoundedGrowth(t *testing.T) {
	db := New()
	s := db.Create()

	accepted := 0
	for i := 0; i < 25; i++ {
		if db.Put(s, "LOC1", named("LOC1", "chr1", int64(i), int64(i+100)), nil) {
			accepted++
		}
	}
	assert.Equal(t, DefaultMaxDuplicates, accepted)
	assert.Len(t, db.Candidates(s, "LOC1"), DefaultMaxDuplicates)

	all := db.ListCandidates(s, "LOC1", 10, false)
	assert.Len(t, all, 20)
}

func TestPut_ConfigurableBound(t *testing.T) {
	db := New(WithMaxDuplicates(3))
	s := db.Create()
	for i := 0; i < 5; i++ {
		db.Put(s, "X", named("X", "chr1", 0, int64(i+1)), nil)
	}
	assert.Len(t, db.Candidates(s, "X"), 3)
}

func TestRanking_ShorterChromosomeWins(t *testing.T) {
	db := New()
	s := db.Create()
	canonical := named("BRCA1", "chr17", 0, 80000)
	random := named("BRCA1", "chr17_random", 0, 90000)

	// Insertion order must not matter.
	db.Put(s, "BRCA1", random, nil)
	db.Put(s, "BRCA1", canonical, nil)

	got, ok := db.Get(s, "BRCA1")
	require.True(t, ok)
	assert.Same(t, canonical, got)
}

func TestRanking_LongerSpanWins(t *testing.T) {
	db := New()
	s := db.Create()
	short := named("EGFR", "chr7", 0, 100)
	long := named("EGFR", "chr7", 0, 1000)
	mid := named("EGFR", "chr7", 0, 500)

	db.Put(s, "EGFR", short, nil)
	db.Put(s, "EGFR", long, nil)
	db.Put(s, "EGFR", mid, nil)

	assert.Equal(t, []feature.Feature{long, mid, short}, db.Candidates(s, "EGFR"))
}

func TestRanking_OrderInvariant(t *testing.T) {
	db := New()
	s := db.Create()
	chroms := []string{"chr1", "chr10", "chrUn_gl000220", "chr2", "chr1_random"}
	for i := 0; i < 20; i++ {
		chr := chroms[(i*7)%len(chroms)]
		db.Put(s, "DUP", named("DUP", chr, 0, int64((i*37)%101+1)), nil)
	}

	list := db.Candidates(s, "DUP")
	require.Len(t, list, 20)
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, Descending.Compare(list[i-1], list[i]), 0,
			"candidate %d (%s) ranks after candidate %d (%s)", i-1, list[i-1].Chr(), i, list[i].Chr())
	}
}

func TestRanking_NonCanonicalPatterns(t *testing.T) {
	db := New(WithNonCanonical("_hap"))
	s := db.Create()
	hap := named("HLA-A", "chr6_hap", 0, 5000)
	alt := named("HLA-A", "chr6_cox_alt", 0, 100)

	db.Put(s, "HLA-A", hap, nil)
	db.Put(s, "HLA-A", alt, nil)

	// chr6_hap is shorter but matches a non-canonical pattern.
	got, _ := db.Get(s, "HLA-A")
	assert.Same(t, alt, got)
}

func TestRanking_Ascending(t *testing.T) {
	a := named("A", "chr1", 0, 10)
	b := named("B", "chr1", 0, 20)
	assert.Negative(t, Ascending.Compare(a, b))
	assert.Positive(t, Descending.Compare(a, b))
	assert.Zero(t, Descending.Compare(a, a))

	// Chromosome name length dominates in both directions.
	c := named("C", "chr10", 0, 1000)
	assert.Negative(t, Ascending.Compare(a, c))
	assert.Negative(t, Descending.Compare(a, c))
}

func TestPrefixQuery_Completeness(t *testing.T) {
	db := New()
	s := db.Create()
	keys := []string{"BRCA1", "BRCA2", "BRCA", "BRC", "BRD4", "ABRCA", "brca1-as1"}
	for _, k := range keys {
		db.Put(s, k, named(k, "chr1", 0, 10), nil)
	}

	for _, prefix := range []string{"B", "BR", "BRC", "brca", "BRCA1", "A", "Z"} {
		t.Run(prefix, func(t *testing.T) {
			p := Normalize(prefix)
			var want []string
			for _, k := range keys {
				if strings.HasPrefix(Normalize(k), p) {
					want = append(want, Normalize(k))
				}
			}

			var got []string
			for _, m := range db.PrefixQuery(s, prefix) {
				got = append(got, m.Key)
			}
			assert.ElementsMatch(t, want, got)
			assert.IsNonDecreasing(t, got)
		})
	}
}

func TestPrefixQuery_EmptyInput(t *testing.T) {
	db := New()
	s := db.Create()
	db.Put(s, "KRAS", named("KRAS", "chr12", 0, 10), nil)

	assert.Empty(t, db.PrefixQuery(s, ""))
	assert.Empty(t, db.PrefixQuery(s, "   "))
	assert.Empty(t, db.ListCandidates(s, "", 10, true))
	_, ok := db.Get(s, "")
	assert.False(t, ok)
}

func TestListCandidates(t *testing.T) {
	db := New()
	s := db.Create()
	for i, k := range []string{"KRAS", "KRT1", "KRT10", "KRT14", "KIT"} {
		db.Put(s, k, named(k, "chr1", 0, int64(10+i)), nil)
		db.Put(s, k, named(k, "chr1", 0, int64(1000+i)), nil)
	}

	top := db.ListCandidates(s, "KR", 3, true)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"KRAS", "KRT1", "KRT10"}, []string{top[0].Name(), top[1].Name(), top[2].Name()})
	for _, f := range top {
		assert.GreaterOrEqual(t, feature.Span(f), int64(1000), "longestOnly must return the top-ranked candidate")
	}

	all := db.ListCandidates(s, "KR", 2, false)
	assert.Len(t, all, 4)

	assert.Equal(t, top, db.Search(s, "kr", 3))
	assert.Empty(t, db.ListCandidates(s, "KR", 0, true))
}

func TestSessionIsolation(t *testing.T) {
	db := New()
	a := db.Create()
	b := db.Create()

	db.Put(a, "MYC", named("MYC", "chr8", 0, 10), nil)

	_, ok := db.Get(b, "MYC")
	assert.False(t, ok)
	assert.Empty(t, db.PrefixQuery(b, "M"))
	assert.Equal(t, 0, db.Size(b))
	assert.Equal(t, 1, db.Size(a))
}

func TestUnknownSession(t *testing.T) {
	db := New()
	s := NewSessionID()

	_, ok := db.Get(s, "ANY")
	assert.False(t, ok)
	assert.Empty(t, db.PrefixQuery(s, "A"))
	assert.Empty(t, db.ListCandidates(s, "A", 10, false))
	assert.Equal(t, 0, db.Size(s))
	assert.False(t, db.Exists(s), "queries must not create partitions")
}

func TestClear_Idempotent(t *testing.T) {
	db := New()
	s := db.Create()
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("GENE%d", i)
		db.Put(s, name, named(name, "chr1", 0, 10), nil)
	}
	require.Equal(t, 10, db.Size(s))

	db.Clear(s)
	db.Clear(s)
	assert.Equal(t, 0, db.Size(s))
	assert.Empty(t, db.PrefixQuery(s, "GENE"))
	_, ok := db.Get(s, "GENE1")
	assert.False(t, ok)
	assert.True(t, db.Exists(s))

	db.Destroy(s)
	assert.False(t, db.Exists(s))
	assert.Equal(t, 0, db.Size(s))
}

func TestSessions(t *testing.T) {
	db := New()
	a := db.Create()
	b := db.Create()
	assert.ElementsMatch(t, []SessionID{a, b}, db.Sessions())

	db.Destroy(a)
	assert.Equal(t, []SessionID{b}, db.Sessions())
}

func TestAddFeature_IndexesAllNames(t *testing.T) {
	db := New()
	s := db.Create()

	f := feature.New("chr17", 43044294, 43125482, feature.Negative).
		SetName("BRCA1").
		SetIdentifier("ENST00000357654").
		AddAlias("RNF53").
		SetAttribute("gene_id", "ENSG00000012048").
		SetAttribute("description", "BRCA1 DNA repair associated, breast cancer 1")
	f.AddExon(&feature.Exon{
		Start: 43044294, End: 43045802,
		Attributes: feature.Attributes{"exon_id": {"ENSE00001814242"}},
	})

	added := db.AddFeature(s, f, nil)
	assert.Equal(t, 5, added)

	for _, name := range []string{"brca1", "enst00000357654", "RNF53", "ENSG00000012048", "ENSE00001814242"} {
		got, ok := db.Get(s, name)
		require.True(t, ok, name)
		assert.Same(t, f, got)
	}

	// Long attribute values are not indexed.
	_, ok := db.Get(s, "BRCA1 DNA repair associated, breast cancer 1")
	assert.False(t, ok)
}

func TestAddFeature_NameEqualsIdentifier(t *testing.T) {
	db := New()
	s := db.Create()
	f := named("peak1", "chr1", 0, 10).SetIdentifier("peak1")

	assert.Equal(t, 1, db.AddFeature(s, f, nil))
	assert.Len(t, db.Candidates(s, "PEAK1"), 1)
}

func TestAddFeatures(t *testing.T) {
	db := New()
	s := db.Create()
	valid := chromSet{"chr1": true}

	added := db.AddFeatures(s, []feature.Feature{
		named("A1", "chr1", 0, 10),
		named("A2", "chr1", 0, 10),
		named("A3", "chrZ", 0, 10),
		named(".", "chr1", 0, 10),
	}, valid)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, db.Size(s))
}

func TestAddFeaturesIfExists(t *testing.T) {
	db := New()
	s := db.Create()
	batch := []feature.Feature{
		named("A1", "chr1", 0, 10),
		named("A2", "chrZ", 0, 10),
	}

	added, ok := db.AddFeaturesIfExists(s, batch, chromSet{"chr1": true})
	require.True(t, ok)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, db.Size(s))

	db.Destroy(s)
	added, ok = db.AddFeaturesIfExists(s, batch, nil)
	assert.False(t, ok)
	assert.Zero(t, added)
	assert.False(t, db.Exists(s), "a destroyed session stays destroyed")
}

func TestAddFeaturesIfExists_RacingDestroy(t *testing.T) {
	for i := 0; i < 50; i++ {
		db := New()
		s := db.Create()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			db.AddFeaturesIfExists(s, []feature.Feature{named("A", "chr1", 0, 10)}, nil)
		}()
		go func() {
			defer wg.Done()
			db.Destroy(s)
		}()
		wg.Wait()

		assert.False(t, db.Exists(s))
	}
}

func TestConcurrentPutAndScan(t *testing.T) {
	db := New()
	sessions := []SessionID{db.Create(), db.Create()}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			s := sessions[w%2]
			for i := 0; i < 200; i++ {
				name := fmt.Sprintf("G%d_%d", w, i)
				db.Put(s, name, named(name, "chr1", 0, int64(i+1)), nil)
				db.ListCandidates(s, "G", 50, true)
				db.Get(s, name)
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			db.Clear(sessions[0])
			db.PrefixQuery(sessions[1], "G1")
		}
	}()
	wg.Wait()

	// Session 1 was never cleared: 4 workers x 200 names.
	assert.Equal(t, 800, db.Size(sessions[1]))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	db := New(WithMetrics(m))
	s := db.Create()

	db.Put(s, "A", named("A", "chr1", 0, 1), nil)
	db.Put(s, ".", named(".", "chr1", 0, 1), nil)
	db.Get(s, "A")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Inserts.WithLabelValues(outcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Inserts.WithLabelValues(outcomeBadName)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions))
}

func TestSuccessor(t *testing.T) {
	assert.True(t, "ABC" < successor("ABC"))
	assert.True(t, "ABCZZZ" < successor("ABC"))
	assert.True(t, "ABD" > successor("ABC"))
}
