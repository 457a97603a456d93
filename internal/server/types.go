package server

import (
	"github.com/inodb/vibe-featuredb/internal/output"
)

// ErrorResponse is returned for every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	Session string `json:"session"`
}

// AddFeaturesRequest carries features to index into a session.
type AddFeaturesRequest struct {
	Features []output.FeatureRecord `json:"features" binding:"required"`
}

// AddFeaturesResponse reports how many index entries accepted the features.
type AddFeaturesResponse struct {
	Features int `json:"features"`
	Entries  int `json:"entries"`
	Keys     int `json:"keys"`
}

// SearchRequest holds the search query parameters.
type SearchRequest struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit"`
	All   bool   `form:"all"`
}

// SearchResponse lists features whose keys start with the query.
type SearchResponse struct {
	Query    string                 `json:"query"`
	Features []output.FeatureRecord `json:"features"`
}

// AminoAcidMutationRequest holds the protein-level mutation query parameters.
type AminoAcidMutationRequest struct {
	Name     string `form:"name" binding:"required"`
	Position int    `form:"pos" binding:"required,min=1"`
	Ref      string `form:"ref" binding:"required"`
	Alt      string `form:"alt" binding:"required"`
}

// NucleotideMutationRequest holds the nucleotide-level mutation query parameters.
type NucleotideMutationRequest struct {
	Name     string `form:"name" binding:"required"`
	Position int    `form:"pos" binding:"required,min=1"`
	Ref      string `form:"ref" binding:"required"`
}

// MutationResponse lists the features matching a mutation query, ordered by
// genome position. Warnings carry per-feature lookup failures that did not
// prevent the other features from being evaluated.
type MutationResponse struct {
	Mutations []output.MutationRecord `json:"mutations"`
	Warnings  []string                `json:"warnings,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Sessions int    `json:"sessions"`
	Genome   bool   `json:"genome"`
}
