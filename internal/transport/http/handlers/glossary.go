package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexaid/moderation-service/internal/usecase"
)

// GlossaryHandler serves the public legal glossary and the admin upsert endpoint.
type GlossaryHandler struct {
	glossary *usecase.GlossaryService
}

// NewGlossaryHandler constructs a GlossaryHandler.
func NewGlossaryHandler(glossary *usecase.GlossaryService) *GlossaryHandler {
	return &GlossaryHandler{glossary: glossary}
}

// RegisterPublicRoutes attaches the unauthenticated read endpoints.
func (h *GlossaryHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListTerms)
	rg.GET("/:slug", h.GetTerm)
}

// RegisterAdminRoutes attaches the authenticated write endpoints.
func (h *GlossaryHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PUT("/:slug", h.UpsertTerm)
}

// ListTerms returns glossary entries, optionally filtered by category.
func (h *GlossaryHandler) ListTerms(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 0)
	offset := parseQueryInt(c, "offset", 0)

	terms, err := h.glossary.ListTerms(c.Request.Context(), c.Query("category"), limit, offset)
	if err != nil {
		RespondWithMappedError(c, err, glossaryErrorCases(), http.StatusInternalServerError, "failed to list glossary terms")
		return
	}

	out := make([]GlossaryTermResponse, 0, len(terms))
	for _, term := range terms {
		out = append(out, newGlossaryTermResponse(term))
	}

	c.JSON(http.StatusOK, GlossaryListResponse{Terms: out})
}

// GetTerm returns a single glossary entry by slug.
func (h *GlossaryHandler) GetTerm(c *gin.Context) {
	term, err := h.glossary.GetTerm(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondWithMappedError(c, err, glossaryErrorCases(), http.StatusInternalServerError, "failed to load glossary term")
		return
	}

	c.JSON(http.StatusOK, newGlossaryTermResponse(*term))
}

// UpsertTerm creates or replaces a glossary entry.
func (h *GlossaryHandler) UpsertTerm(c *gin.Context) {
	var req UpsertGlossaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	term, err := h.glossary.UpsertTerm(c.Request.Context(), usecase.UpsertTermInput{
		Slug:       c.Param("slug"),
		Term:       req.Term,
		Definition: req.Definition,
		Category:   req.Category,
	})
	if err != nil {
		RespondWithMappedError(c, err, glossaryErrorCases(), http.StatusInternalServerError, "failed to upsert glossary term")
		return
	}

	c.JSON(http.StatusOK, newGlossaryTermResponse(*term))
}
