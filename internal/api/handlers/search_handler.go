package handlers

import (
	"context"
	"net/http"

	"github.com/Longevitate/carefinder/internal/application/services"
	"github.com/Longevitate/carefinder/internal/domain/entities"
	apperrors "github.com/Longevitate/carefinder/pkg/errors"
)

// CareSearcher runs facility and provider searches.
type CareSearcher interface {
	TriageAndRank(ctx context.Context, req entities.SearchRequest) (*entities.RankedResult, error)
	RankProviders(ctx context.Context, req entities.ProviderSearchRequest) (*entities.RankedProviderResult, error)
}

// SearchHandler handles care location and provider search requests
type SearchHandler struct {
	searcher  CareSearcher
	assembler *services.ResultAssembler
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher CareSearcher, assembler *services.ResultAssembler) *SearchHandler {
	return &SearchHandler{
		searcher:  searcher,
		assembler: assembler,
	}
}

// SearchCareLocations handles POST /api/care-locations/search
func (h *SearchHandler) SearchCareLocations(w http.ResponseWriter, r *http.Request) {
	var req entities.SearchRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if req.Limit < 0 {
		respondWithAppError(w, r, apperrors.NewValidationError("limit must not be negative"))
		return
	}

	result, err := h.searcher.TriageAndRank(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if wantsMarkdown(r) {
		respondWithMarkdown(w, h.assembler.FacilitiesText(result))
		return
	}
	respondWithJSON(w, http.StatusOK, h.assembler.Facilities(result))
}

// SearchProviders handles POST /api/providers/search
func (h *SearchHandler) SearchProviders(w http.ResponseWriter, r *http.Request) {
	var req entities.ProviderSearchRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if req.Limit < 0 {
		respondWithAppError(w, r, apperrors.NewValidationError("limit must not be negative"))
		return
	}

	result, err := h.searcher.RankProviders(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if wantsMarkdown(r) {
		respondWithMarkdown(w, h.assembler.ProvidersText(result))
		return
	}
	respondWithJSON(w, http.StatusOK, h.assembler.Providers(result))
}
