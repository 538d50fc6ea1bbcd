package domain

import "time"

// FormatOptions selects the optional parts of a CaseRecord.
type FormatOptions struct {
	WithMeta    bool
	WithImages  bool
	WithRelated bool
}

// CaseRecord is the transport-ready form of a Case.
type CaseRecord struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Excerpt  string    `json:"excerpt"`
	Content  string    `json:"content"`
	Date     time.Time `json:"date"`
	Modified time.Time `json:"modified"`
	Status   Status    `json:"status"`
	URL      string    `json:"url"`
	Featured bool      `json:"featured"`

	FeaturedImage *ImageRecord `json:"featured_image,omitempty"`

	Categories []TermRecord `json:"categories"`
	Procedures []TermRecord `json:"procedures"`

	Meta *CaseMeta `json:"meta,omitempty"`

	BeforeImages []ImageRecord `json:"before_images,omitempty"`
	AfterImages  []ImageRecord `json:"after_images,omitempty"`

	Related []CaseRecord `json:"related,omitempty"`
}

// TermRecord is the transport-ready form of a Term.
type TermRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Count       int    `json:"count"`
	URL         string `json:"url"`
}

// ImageRecord is a before/after or featured image.
type ImageRecord struct {
	ID     string `json:"id,omitempty"`
	URL    string `json:"url"`
	Alt    string `json:"alt,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// CaseMeta carries the decoded metadata blobs. A nil field means the blob was
// empty or failed to decode; siblings are unaffected.
type CaseMeta struct {
	PatientInfo      map[string]any `json:"patient_info,omitempty"`
	ProcedureDetails map[string]any `json:"procedure_details,omitempty"`
	SEO              *SEO           `json:"seo,omitempty"`
}

// SEO is the search-engine block stored with a case.
type SEO struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	NoIndex     bool   `json:"noindex,omitempty"`
}
