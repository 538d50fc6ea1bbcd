package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/internal/view"
)

// page serves every gallery address of the active mode: resolve the request
// target to a view, pick its template, load its data and render.
func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	desc, ok := s.router.Resolve(ctx, r.URL.RequestURI())
	if !ok || !desc.Resolved {
		s.renderNotFound(w, r)
		return
	}

	vars, err := s.pageVars(ctx, desc)
	if errors.Is(err, domain.ErrNotFound) {
		s.renderNotFound(w, r)
		return
	}
	if err != nil {
		s.log.ErrorContext(ctx, "load page", "path", r.URL.Path, "view", desc.Type, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mode := s.router.Mode()
	loc, ok := s.views.SelectForContent(desc, mode)
	if !ok {
		s.log.ErrorContext(ctx, "no template for view", "view", desc.Type, "mode", mode)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	out, err := s.views.Render(loc, vars)
	if err != nil {
		s.log.ErrorContext(ctx, "render page", "template", loc.Path(), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, out)
}

// pageVars builds the template variables for desc. ErrNotFound means the
// view resolved but has nothing to show, such as a page past the last one.
func (s *Server) pageVars(ctx context.Context, desc domain.ViewDescriptor) (map[string]any, error) {
	mode := s.router.Mode()
	vars := map[string]any{
		"Mode":        mode.CurrentModeName(),
		"View":        desc,
		"Title":       desc.Title,
		"Base":        s.router.Base(),
		"SearchTerm":  desc.SearchTerm,
		"IndexURL":    s.router.IndexURL(1),
		"Breadcrumbs": s.router.Breadcrumbs(ctx, desc),
		"BodyClasses": view.BodyClasses(desc, mode, nil),
	}

	switch desc.Type {
	case domain.ViewFavorites:
		// Favorites are held by the client; the page is a shell.
		return vars, nil

	case domain.ViewSingle:
		rec, err := s.gallery.GetOne(ctx, strconv.FormatInt(desc.CaseID, 10), domain.FormatOptions{
			WithMeta:    true,
			WithImages:  true,
			WithRelated: true,
		})
		if err != nil {
			return nil, err
		}
		vars["Case"] = rec
		return vars, nil
	}

	args := domain.QueryArgs{Page: desc.Page}
	switch desc.Type {
	case domain.ViewSearch:
		args.Search = desc.SearchTerm
	case domain.ViewTaxonomy:
		id := strconv.FormatInt(desc.TermID, 10)
		if desc.Taxonomy == domain.TaxonomyProcedure {
			args.Procedure = id
		} else {
			args.Category = id
		}
		if term, err := s.gallery.GetTerm(ctx, desc.TermID); err == nil {
			vars["Term"] = term
		} else {
			s.log.WarnContext(ctx, "load term", "term_id", desc.TermID, "error", err)
		}
	}

	res := s.gallery.Query(ctx, args)
	if desc.Page > 1 && len(res.Items) == 0 {
		return nil, domain.ErrNotFound
	}
	vars["Items"] = res.Items
	vars["Pagination"] = res.Pagination
	if res.Pagination.HasPrevious {
		vars["PrevURL"] = s.router.ViewURL(ctx, desc, desc.Page-1)
	}
	if res.Pagination.HasNext {
		vars["NextURL"] = s.router.ViewURL(ctx, desc, desc.Page+1)
	}
	return vars, nil
}

// notFound is the fallback for unrouted paths: JSON under /api, the 404
// page everywhere else.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		s.writeError(w, r, domain.ErrNotFound)
		return
	}
	s.renderNotFound(w, r)
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request) {
	loc, ok := s.views.Locate(view.NotFound)
	if !ok {
		http.NotFound(w, r)
		return
	}
	out, err := s.views.Render(loc, map[string]any{
		"Title":    "Not found",
		"IndexURL": s.router.IndexURL(1),
	})
	if err != nil {
		s.log.ErrorContext(r.Context(), "render not found page", "error", err)
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, out)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
