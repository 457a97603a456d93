package server

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the index endpoints with the given router group.
//
// Endpoints:
//
//	POST   /v1/sessions                      - Create a session
//	DELETE /v1/sessions/:id                  - Destroy a session
//	POST   /v1/sessions/:id/clear            - Drop every key of a session
//	POST   /v1/sessions/:id/features         - Index features
//	GET    /v1/sessions/:id/features/:name   - Exact lookup
//	GET    /v1/sessions/:id/search           - Prefix search (q, limit, all)
//	GET    /v1/sessions/:id/mutations/aa     - Protein mutation (name, pos, ref, alt)
//	GET    /v1/sessions/:id/mutations/nt     - Nucleotide mutation (name, pos, ref)
//	GET    /v1/health                        - Health check
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/health", h.HandleHealth)

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.HandleCreateSession)
		sessions.DELETE("/:id", h.HandleDestroySession)
		sessions.POST("/:id/clear", h.HandleClearSession)
		sessions.POST("/:id/features", h.HandleAddFeatures)
		sessions.GET("/:id/features/:name", h.HandleGetFeature)
		sessions.GET("/:id/search", h.HandleSearch)
		sessions.GET("/:id/mutations/aa", h.HandleAminoAcidMutation)
		sessions.GET("/:id/mutations/nt", h.HandleNucleotideMutation)
	}
}
