// Package domain contains the core data types for the case gallery.
// This package has no dependencies on other internal packages and is imported
// by every other internal package (repo, service, router, view, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the publication state of a case.
type Status string

const (
	StatusPublish Status = "publish"
	StatusDraft   Status = "draft"
	// StatusAny disables the status filter in queries.
	StatusAny Status = "any"
)

// ParseStatus maps a query-string value onto a Status, defaulting to publish.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusDraft, StatusAny:
		return Status(s)
	}
	return StatusPublish
}

// Case is a single before/after case record.
// Slug is unique among cases and stable once assigned; it is the native
// addressing key. Cases are written by the sync collaborator (or the seed
// importer) and are read-only to the gallery core.
type Case struct {
	ID        int64
	Title     string
	Slug      string
	Body      string
	Excerpt   string
	Status    Status
	MenuOrder int
	Featured  bool

	// Structured patient attributes used for filtering.
	PatientAge    *int
	PatientGender string

	// Opaque JSON blobs. Each is decoded independently when formatting.
	PatientInfo      string
	ProcedureDetails string
	SEOData          string

	// LegacyImages holds the inline {"before": [...], "after": [...]} array
	// used before images were stored as attachments.
	LegacyImages string

	FeaturedImageID *uuid.UUID
	ExternalCaseID  string

	CreatedAt  time.Time
	ModifiedAt time.Time
}

// ImageKind distinguishes before and after photos.
type ImageKind string

const (
	ImageBefore ImageKind = "before"
	ImageAfter  ImageKind = "after"
)

// Attachment is a stored media file referenced by cases.
type Attachment struct {
	ID     uuid.UUID
	URL    string
	Alt    string
	Width  int
	Height int
}

// CaseImage links an attachment to a case as a before or after photo.
type CaseImage struct {
	Kind     ImageKind
	Position int
	Attachment
}
