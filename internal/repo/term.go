package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/case-gallery/internal/domain"
)

// TermReader defines the read operations on taxonomy terms.
type TermReader interface {
	// GetByID retrieves a term by primary key.
	// Returns domain.ErrNotFound if no term with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Term, error)

	// GetBySlug retrieves a term by slug within one taxonomy.
	// Returns domain.ErrNotFound if the slug is unknown in that taxonomy.
	GetBySlug(ctx context.Context, tax domain.Taxonomy, slug string) (domain.Term, error)

	// ListByCase returns the terms linked to a case in both taxonomies,
	// ordered by taxonomy then link position.
	ListByCase(ctx context.Context, caseID int64) ([]domain.Term, error)

	// Count returns the number of terms in a taxonomy.
	Count(ctx context.Context, tax domain.Taxonomy) (int64, error)

	// MostPopulous returns the term with the highest usage count in a taxonomy.
	// Returns domain.ErrNotFound when the taxonomy is empty.
	MostPopulous(ctx context.Context, tax domain.Taxonomy) (domain.Term, error)
}

// TermWriter defines the write operations used by the seed importer.
type TermWriter interface {
	// Upsert inserts a term by (taxonomy, slug), or updates the name,
	// description and parent of the existing row.
	Upsert(ctx context.Context, t domain.Term) (domain.Term, error)

	// RefreshCounts recomputes every term's count from published cases.
	RefreshCounts(ctx context.Context) error
}

// TermRepo is the full set of term persistence operations.
type TermRepo interface {
	TermReader
	TermWriter
}

// pgTermRepo is the Postgres implementation of TermRepo.
type pgTermRepo struct {
	db db
}

// NewTermRepo constructs a TermRepo backed by the provided db connection.
func NewTermRepo(db db) TermRepo {
	return &pgTermRepo{db: db}
}

const termColumns = `t.id, t.taxonomy, t.name, t.slug, t.description, t.parent_id, t.count`

// GetByID retrieves a term by primary key.
func (r *pgTermRepo) GetByID(ctx context.Context, id int64) (domain.Term, error) {
	q := `SELECT ` + termColumns + ` FROM terms t WHERE t.id = @id`

	result, err := scanTerm(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Term{}, fmt.Errorf("repo.TermRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetBySlug retrieves a term by its slug within a taxonomy.
func (r *pgTermRepo) GetBySlug(ctx context.Context, tax domain.Taxonomy, slug string) (domain.Term, error) {
	q := `SELECT ` + termColumns + ` FROM terms t WHERE t.taxonomy = @taxonomy AND t.slug = @slug`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"taxonomy": string(tax), "slug": slug})
	result, err := scanTerm(row)
	if err != nil {
		return domain.Term{}, fmt.Errorf("repo.TermRepo.GetBySlug: %w", err)
	}
	return result, nil
}

// ListByCase returns all terms linked to a case.
func (r *pgTermRepo) ListByCase(ctx context.Context, caseID int64) ([]domain.Term, error) {
	q := `SELECT ` + termColumns + `
		FROM terms t
		JOIN case_terms ct ON ct.term_id = t.id
		WHERE ct.case_id = @case_id
		ORDER BY t.taxonomy, ct.position, t.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"case_id": caseID})
	if err != nil {
		return nil, fmt.Errorf("repo.TermRepo.ListByCase: %w", err)
	}
	terms, err := collect(rows, scanTerm)
	if err != nil {
		return nil, fmt.Errorf("repo.TermRepo.ListByCase: scan: %w", err)
	}
	return terms, nil
}

// Count returns the number of terms in a taxonomy.
func (r *pgTermRepo) Count(ctx context.Context, tax domain.Taxonomy) (int64, error) {
	const q = `SELECT count(*) FROM terms WHERE taxonomy = @taxonomy`

	var n int64
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"taxonomy": string(tax)}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.TermRepo.Count: %w", err)
	}
	return n, nil
}

// MostPopulous returns the highest-count term. Ties go to whichever row
// Postgres returns first.
func (r *pgTermRepo) MostPopulous(ctx context.Context, tax domain.Taxonomy) (domain.Term, error) {
	q := `SELECT ` + termColumns + ` FROM terms t
		WHERE t.taxonomy = @taxonomy
		ORDER BY t.count DESC
		LIMIT 1`

	result, err := scanTerm(r.db.QueryRow(ctx, q, pgx.NamedArgs{"taxonomy": string(tax)}))
	if err != nil {
		return domain.Term{}, fmt.Errorf("repo.TermRepo.MostPopulous: %w", err)
	}
	return result, nil
}

// Upsert inserts a term or updates the existing (taxonomy, slug) row.
func (r *pgTermRepo) Upsert(ctx context.Context, t domain.Term) (domain.Term, error) {
	q := `
		INSERT INTO terms AS t (taxonomy, name, slug, description, parent_id)
		VALUES (@taxonomy, @name, @slug, @description, @parent_id)
		ON CONFLICT (taxonomy, slug) DO UPDATE SET
			name        = EXCLUDED.name,
			description = EXCLUDED.description,
			parent_id   = EXCLUDED.parent_id
		RETURNING ` + termColumns

	args := pgx.NamedArgs{
		"taxonomy":    string(t.Taxonomy),
		"name":        t.Name,
		"slug":        t.Slug,
		"description": t.Description,
		"parent_id":   t.ParentID, // nil becomes NULL
	}

	result, err := scanTerm(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Term{}, fmt.Errorf("repo.TermRepo.Upsert: %w", err)
	}
	return result, nil
}

// RefreshCounts recomputes term usage counts over published cases.
func (r *pgTermRepo) RefreshCounts(ctx context.Context) error {
	const q = `
		UPDATE terms t
		SET count = (
			SELECT count(*)
			FROM case_terms ct
			JOIN cases c ON c.id = ct.case_id
			WHERE ct.term_id = t.id AND c.status = 'publish'
		)`

	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("repo.TermRepo.RefreshCounts: %w", err)
	}
	return nil
}

// scanTerm maps a single database row into a domain.Term.
func scanTerm(s scanner) (domain.Term, error) {
	var (
		t      domain.Term
		tax    string
		parent pgtype.Int8
	)
	err := s.Scan(&t.ID, &tax, &t.Name, &t.Slug, &t.Description, &parent, &t.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Term{}, domain.ErrNotFound
		}
		return domain.Term{}, err
	}
	t.Taxonomy = domain.Taxonomy(tax)
	if parent.Valid {
		p := parent.Int64
		t.ParentID = &p
	}
	return t, nil
}
