package domain

import "fmt"

// Taxonomy names one of the two classification schemes.
type Taxonomy string

const (
	// TaxonomyCategory is hierarchical: terms may have a parent.
	TaxonomyCategory Taxonomy = "case_category"
	// TaxonomyProcedure is flat.
	TaxonomyProcedure Taxonomy = "procedure"
)

// Term is a node in a taxonomy. Slug is unique within its taxonomy.
type Term struct {
	ID          int64
	Taxonomy    Taxonomy
	Name        string
	Slug        string
	Description string
	ParentID    *int64
	Count       int
}

// Kind selects what an address points at.
type Kind string

const (
	KindCase      Kind = "case"
	KindCategory  Kind = "category"
	KindProcedure Kind = "procedure"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCase, KindCategory, KindProcedure:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Taxonomy returns the taxonomy behind a term kind. ok is false for KindCase.
func (k Kind) Taxonomy() (tax Taxonomy, ok bool) {
	switch k {
	case KindCategory:
		return TaxonomyCategory, true
	case KindProcedure:
		return TaxonomyProcedure, true
	}
	return "", false
}

// KindOf is the inverse of Kind.Taxonomy.
func KindOf(tax Taxonomy) Kind {
	if tax == TaxonomyProcedure {
		return KindProcedure
	}
	return KindCategory
}
