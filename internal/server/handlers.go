package server

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inodb/vibe-featuredb/internal/feature"
	"github.com/inodb/vibe-featuredb/internal/featuredb"
	"github.com/inodb/vibe-featuredb/internal/genome"
	"github.com/inodb/vibe-featuredb/internal/output"
)

// DefaultSearchLimit is the number of keys a search visits when the request
// sets no limit.
const DefaultSearchLimit = 50

// Version is reported by the health endpoint.
var Version = "dev"

// Handlers serves the feature index over HTTP.
type Handlers struct {
	db     *featuredb.DB
	genome genome.Genome
	logger *zap.Logger
}

// NewHandlers creates handlers backed by db. g may be nil, in which case
// chromosome validation is skipped and mutation queries are unavailable.
func NewHandlers(db *featuredb.DB, g genome.Genome) *Handlers {
	return &Handlers{db: db, genome: g, logger: zap.NewNop()}
}

// SetLogger sets the logger for request-level events.
func (h *Handlers) SetLogger(l *zap.Logger) {
	h.logger = l
}

func (h *Handlers) validator() featuredb.Validator {
	if h.genome == nil {
		return nil
	}
	return h.genome
}

// session resolves the :id path parameter. When the session is missing it
// writes the error response and returns false.
func (h *Handlers) session(c *gin.Context) (featuredb.SessionID, bool) {
	id, err := featuredb.ParseSessionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session id", Code: "INVALID_SESSION"})
		return id, false
	}
	if !h.db.Exists(id) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found", Code: "SESSION_NOT_FOUND"})
		return id, false
	}
	return id, true
}

// HandleCreateSession handles POST /v1/sessions.
func (h *Handlers) HandleCreateSession(c *gin.Context) {
	id := h.db.Create()
	h.logger.Info("session created", zap.String("session", id.String()))
	c.JSON(http.StatusCreated, SessionResponse{Session: id.String()})
}

// HandleDestroySession handles DELETE /v1/sessions/:id.
func (h *Handlers) HandleDestroySession(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	h.db.Destroy(id)
	h.logger.Info("session destroyed", zap.String("session", id.String()))
	c.Status(http.StatusNoContent)
}

// HandleClearSession handles POST /v1/sessions/:id/clear.
func (h *Handlers) HandleClearSession(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	h.db.Clear(id)
	c.Status(http.StatusNoContent)
}

// HandleAddFeatures handles POST /v1/sessions/:id/features.
func (h *Handlers) HandleAddFeatures(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}

	var req AddFeaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}

	features := make([]feature.Feature, len(req.Features))
	for i, r := range req.Features {
		if r.Chrom == "" || r.End < r.Start {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "feature needs a chromosome and start <= end", Code: "INVALID_FEATURE"})
			return
		}
		features[i] = r.Feature()
	}

	entries, ok := h.db.AddFeaturesIfExists(id, features, h.validator())
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found", Code: "SESSION_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, AddFeaturesResponse{
		Features: len(features),
		Entries:  entries,
		Keys:     h.db.Size(id),
	})
}

// HandleGetFeature handles GET /v1/sessions/:id/features/:name. It returns
// the ranked candidates registered under exactly name.
func (h *Handlers) HandleGetFeature(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}

	name := c.Param("name")
	candidates := h.db.Candidates(id, name)
	if len(candidates) == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no feature named " + name, Code: "FEATURE_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, output.MatchRecord{
		Key:      featuredb.Normalize(name),
		Features: output.NewFeatureRecords(candidates),
	})
}

// HandleSearch handles GET /v1/sessions/:id/search.
func (h *Handlers) HandleSearch(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	if req.Limit <= 0 {
		req.Limit = DefaultSearchLimit
	}

	found := h.db.ListCandidates(id, req.Query, req.Limit, !req.All)
	c.JSON(http.StatusOK, SearchResponse{
		Query:    req.Query,
		Features: output.NewFeatureRecords(found),
	})
}

// HandleAminoAcidMutation handles GET /v1/sessions/:id/mutations/aa.
func (h *Handlers) HandleAminoAcidMutation(c *gin.Context) {
	id, ok := h.session(c)
	if !ok || !h.requireGenome(c) {
		return
	}

	var req AminoAcidMutationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}

	found, err := h.db.MutationByAminoAcid(id, req.Name, req.Position, req.Ref, req.Alt, h.genome)
	if errors.Is(err, featuredb.ErrUnknownAminoAcid) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "UNKNOWN_AMINO_ACID"})
		return
	}
	c.JSON(http.StatusOK, h.mutationResponse(found, err))
}

// HandleNucleotideMutation handles GET /v1/sessions/:id/mutations/nt.
func (h *Handlers) HandleNucleotideMutation(c *gin.Context) {
	id, ok := h.session(c)
	if !ok || !h.requireGenome(c) {
		return
	}

	var req NucleotideMutationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}

	found, err := h.db.MutationByNucleotide(id, req.Name, req.Position, req.Ref, h.genome)
	c.JSON(http.StatusOK, h.mutationResponse(found, err))
}

func (h *Handlers) requireGenome(c *gin.Context) bool {
	if h.genome == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "no reference genome loaded", Code: "NO_GENOME"})
		return false
	}
	return true
}

func (h *Handlers) mutationResponse(found map[int64]feature.Feature, err error) MutationResponse {
	positions := make([]int64, 0, len(found))
	for pos := range found {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	resp := MutationResponse{Mutations: make([]output.MutationRecord, 0, len(positions))}
	for _, pos := range positions {
		resp.Mutations = append(resp.Mutations, output.MutationRecord{
			Position: pos,
			Feature:  output.NewFeatureRecord(found[pos]),
		})
	}
	if err != nil {
		h.logger.Warn("mutation query partially failed", zap.Error(err))
		resp.Warnings = strings.Split(err.Error(), "\n")
	}
	return resp
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Version:  Version,
		Sessions: len(h.db.Sessions()),
		Genome:   h.genome != nil,
	})
}
