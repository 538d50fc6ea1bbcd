package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pkordes/case-gallery/internal/domain"
)

// listCases handles GET /api/cases. Query parameters map onto QueryArgs;
// meta_query and tax_query take JSON arrays and cache=false bypasses the
// result cache.
func (s *Server) listCases(w http.ResponseWriter, r *http.Request) {
	params, err := bindListCasesParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	args, err := params.QueryArgs()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.gallery.Query(r.Context(), args))
}

// featuredCases handles GET /api/cases/featured?limit=.
func (s *Server) featuredCases(w http.ResponseWriter, r *http.Request) {
	params, err := bindLimitParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, itemsResponse{Items: s.gallery.Featured(r.Context(), deref(params.Limit))})
}

// getCase handles GET /api/cases/{idOrSlug}?related=1&meta=1&images=1.
func (s *Server) getCase(w http.ResponseWriter, r *http.Request) {
	var idOrSlug string
	if err := bindPathParam(r, "idOrSlug", &idOrSlug); err != nil {
		s.writeError(w, r, err)
		return
	}
	params, err := bindGetCaseParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.gallery.GetOne(r.Context(), idOrSlug, params.FormatOptions())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, rec)
}

// relatedCases handles GET /api/cases/{id}/related?limit=.
func (s *Server) relatedCases(w http.ResponseWriter, r *http.Request) {
	var id int64
	if err := bindPathParam(r, "idOrSlug", &id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if id <= 0 {
		s.writeError(w, r, fmt.Errorf("%w: case id must be a positive integer", domain.ErrValidation))
		return
	}
	params, err := bindLimitParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, itemsResponse{Items: s.gallery.Related(r.Context(), id, deref(params.Limit))})
}

// caseFragment handles GET /api/cases/{idOrSlug}/fragment. It renders the
// case card partial to a string for clients that insert server markup.
func (s *Server) caseFragment(w http.ResponseWriter, r *http.Request) {
	var idOrSlug string
	if err := bindPathParam(r, "idOrSlug", &idOrSlug); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.gallery.GetOne(r.Context(), idOrSlug, domain.FormatOptions{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	html, err := s.views.RenderPartial("partials/case-card.html", rec)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("handler.caseFragment: %w", err))
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"html": html})
}

// getStats handles GET /api/stats.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.gallery.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, st)
}

// generateURL handles GET /api/url?id=&kind=&mode=. An empty mode means the
// active one.
func (s *Server) generateURL(w http.ResponseWriter, r *http.Request) {
	params, err := bindGenerateURLParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if params.Id <= 0 {
		s.writeError(w, r, fmt.Errorf("%w: id must be a positive integer", domain.ErrValidation))
		return
	}
	kind, err := domain.ParseKind(params.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var mode domain.Mode
	if m := deref(params.Mode); m != "" {
		if mode, err = domain.ParseMode(m); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	u, err := s.router.GenerateURL(r.Context(), params.Id, kind, mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"url": u})
}

// clearCacheRequest is the optional body of POST /api/cache/clear.
type clearCacheRequest struct {
	Key string `json:"key"`
}

// clearCache handles POST /api/cache/clear. The key comes from ?key= or a
// JSON body; no key clears every entry.
func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	params, err := bindClearCacheParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key := deref(params.Key)
	if key == "" && r.Body != nil {
		var req clearCacheRequest
		err = json.NewDecoder(r.Body).Decode(&req)
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		case err != nil && !errors.Is(err, io.EOF):
			s.writeError(w, r, fmt.Errorf("%w: malformed body: %v", domain.ErrValidation, err))
			return
		}
		key = req.Key
	}
	if err := s.gallery.ClearCache(r.Context(), key); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type itemsResponse struct {
	Items []domain.CaseRecord `json:"items"`
}
