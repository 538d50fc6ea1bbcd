package domain

// ViewType is the kind of gallery page a request resolves to.
type ViewType string

const (
	ViewIndex     ViewType = "index"
	ViewTaxonomy  ViewType = "taxonomy"
	ViewSingle    ViewType = "single"
	ViewSearch    ViewType = "search"
	ViewFavorites ViewType = "favorites"
)

// ViewDescriptor is the request-scoped result of matching an inbound path.
// It is rebuilt for every request and never persisted.
//
// Resolved is false when the path had the right shape but the slug it names
// does not exist; callers treat that as a not-found outcome.
type ViewDescriptor struct {
	Type     ViewType
	Segments []string
	Page     int

	SearchTerm string

	CaseID   int64
	CaseSlug string

	TermID   int64
	TermSlug string
	Taxonomy Taxonomy

	// Title is the display name of the resolved case or term.
	Title string

	Resolved bool
	// Native is true when the descriptor came from native permalink resolution.
	Native bool
}

// IsGallery reports whether the descriptor describes a gallery page at all.
func (d ViewDescriptor) IsGallery() bool {
	return d.Type != ""
}

// Breadcrumb is one step in a navigation trail.
type Breadcrumb struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	IsCurrent bool   `json:"is_current"`
}
