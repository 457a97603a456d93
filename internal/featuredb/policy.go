package featuredb

import (
	"go.uber.org/zap"
)

// Default policy values.
const (
	// DefaultMaxDuplicates bounds the number of features kept under one key.
	DefaultMaxDuplicates = 20

	// DefaultMaxAttributeLength is the exclusive upper bound on the length of
	// attribute values that are indexed as names.
	DefaultMaxAttributeLength = 20
)

// Policy holds the tunable indexing heuristics.
type Policy struct {
	// MaxDuplicates is the maximum length of a candidate list.
	MaxDuplicates int

	// MaxAttributeLength limits which attribute values are indexed by AddFeature.
	MaxAttributeLength int

	// NonCanonical lists chromosome name fragments (e.g. "_random", "chrUn",
	// "_hap") that rank below every other chromosome. Empty means ranking by
	// chromosome name length alone.
	NonCanonical []string

	// Headless disables chromosome validation on insertion.
	Headless bool
}

// DefaultPolicy returns the default policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxDuplicates:      DefaultMaxDuplicates,
		MaxAttributeLength: DefaultMaxAttributeLength,
	}
}

type options struct {
	policy  Policy
	logger  *zap.Logger
	metrics *Metrics
}

// Option configures a DB.
type Option func(*options)

// WithPolicy replaces the whole policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithMaxDuplicates sets the candidate list bound.
func WithMaxDuplicates(n int) Option {
	return func(o *options) {
		o.policy.MaxDuplicates = n
	}
}

// WithMaxAttributeLength sets the attribute value length bound.
func WithMaxAttributeLength(n int) Option {
	return func(o *options) {
		o.policy.MaxAttributeLength = n
	}
}

// WithNonCanonical sets the non-canonical chromosome name fragments.
func WithNonCanonical(patterns ...string) Option {
	return func(o *options) {
		o.policy.NonCanonical = patterns
	}
}

// WithHeadless disables chromosome validation.
func WithHeadless(headless bool) Option {
	return func(o *options) {
		o.policy.Headless = headless
	}
}

// WithLogger sets the logger for warnings about failed candidates.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
