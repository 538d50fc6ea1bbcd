package view

import (
	"github.com/pkordes/case-gallery/internal/domain"
)

// Fallback templates used when no candidate for a view exists.
const (
	// NativeFallback is the host default page.
	NativeFallback = "page.html"
	// VirtualFallback is the generic gallery shell.
	VirtualFallback = "virtual/gallery.html"
	// NotFound is rendered for unresolved gallery requests.
	NotFound = "404.html"
)

// Candidates returns the template names tried for desc in mode, most
// specific first, including the mode fallback.
func Candidates(desc domain.ViewDescriptor, mode domain.ModeContext) []string {
	var names []string
	switch desc.Type {
	case domain.ViewSingle:
		if desc.CaseSlug != "" {
			names = append(names, "single-case-"+desc.CaseSlug+".html")
		}
		names = append(names, "single-case.html")
	case domain.ViewIndex:
		names = append(names, "archive-case.html", "archive.html")
	case domain.ViewTaxonomy:
		kind := string(domain.KindOf(desc.Taxonomy))
		if desc.TermSlug != "" {
			names = append(names, "taxonomy-"+kind+"-"+desc.TermSlug+".html")
		}
		names = append(names, "taxonomy-"+kind+".html", "archive.html")
	case domain.ViewSearch:
		names = append(names, "search-case.html", "archive.html")
	case domain.ViewFavorites:
		names = append(names, "favorites.html")
	}

	dir, fallback := "virtual/", VirtualFallback
	if mode.IsNative() {
		dir, fallback = "native/", NativeFallback
	}
	for i, n := range names {
		names[i] = dir + n
	}
	return append(names, fallback)
}

// SelectForContent locates the template for desc in mode.
func (r *Resolver) SelectForContent(desc domain.ViewDescriptor, mode domain.ModeContext) (Location, bool) {
	return r.Locate(Candidates(desc, mode)...)
}

// BodyClasses extends base with a mode class and a view class when desc is a
// gallery request. Other requests get base back unchanged.
func BodyClasses(desc domain.ViewDescriptor, mode domain.ModeContext, base []string) []string {
	if !desc.IsGallery() {
		return base
	}
	out := make([]string, 0, len(base)+2)
	out = append(out, base...)
	return append(out,
		"case-gallery-"+mode.CurrentModeName(),
		"case-gallery-"+viewClass(desc),
	)
}

func viewClass(desc domain.ViewDescriptor) string {
	switch desc.Type {
	case domain.ViewSingle:
		return "single"
	case domain.ViewIndex:
		return "archive"
	case domain.ViewTaxonomy:
		return string(domain.KindOf(desc.Taxonomy))
	}
	return string(desc.Type)
}
