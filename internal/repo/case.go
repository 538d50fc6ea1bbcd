package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/case-gallery/internal/domain"
)

// CaseReader defines the read operations the gallery core performs on cases.
// The query engine and router depend on this interface, not the Postgres
// implementation, which allows them to be unit-tested with a mock.
type CaseReader interface {
	// GetByID retrieves a case by primary key regardless of status.
	// Returns domain.ErrNotFound if no case with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Case, error)

	// GetBySlug retrieves a case by slug. Pass domain.StatusAny to skip the
	// status check. Returns domain.ErrNotFound if nothing matches.
	GetBySlug(ctx context.Context, slug string, status domain.Status) (domain.Case, error)

	// Search returns the cases matching f in f's order, limited by f.Limit/f.Offset.
	Search(ctx context.Context, f domain.CaseFilter) ([]domain.Case, error)

	// Count returns how many cases match f, ignoring Limit, Offset and order.
	Count(ctx context.Context, f domain.CaseFilter) (int64, error)

	// ListImages returns the before/after images of a case ordered by kind then position.
	ListImages(ctx context.Context, caseID int64) ([]domain.CaseImage, error)

	// GetAttachment retrieves a single attachment.
	// Returns domain.ErrNotFound if it does not exist.
	GetAttachment(ctx context.Context, id uuid.UUID) (domain.Attachment, error)
}

// CaseWriter defines the write operations used by the seed importer.
type CaseWriter interface {
	// Upsert inserts a case or overwrites the existing case with the same slug.
	Upsert(ctx context.Context, c domain.Case) (domain.Case, error)

	// SetTerms replaces the case's term links. Order is preserved as position.
	SetTerms(ctx context.Context, caseID int64, termIDs []int64) error

	// SetMeta replaces the case's free-form meta rows.
	SetMeta(ctx context.Context, caseID int64, meta map[string]string) error

	// ReplaceImages drops the case's image links and stores images as new
	// attachments, returning them with generated ids.
	ReplaceImages(ctx context.Context, caseID int64, images []domain.CaseImage) ([]domain.CaseImage, error)
}

// CaseRepo is the full set of case persistence operations.
type CaseRepo interface {
	CaseReader
	CaseWriter
}

// pgCaseRepo is the Postgres implementation of CaseRepo.
type pgCaseRepo struct {
	db db
}

// NewCaseRepo constructs a CaseRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests and the importer pass a pgx.Tx.
func NewCaseRepo(db db) CaseRepo {
	return &pgCaseRepo{db: db}
}

const caseColumns = `c.id, c.title, c.slug, c.body, c.excerpt, c.status, c.menu_order, c.featured,
	c.patient_age, c.patient_gender, c.patient_info, c.procedure_details, c.seo_data,
	c.legacy_images, c.featured_image_id, c.external_case_id, c.created_at, c.modified_at`

// GetByID retrieves a case by primary key.
func (r *pgCaseRepo) GetByID(ctx context.Context, id int64) (domain.Case, error) {
	q := `SELECT ` + caseColumns + ` FROM cases c WHERE c.id = @id`

	result, err := scanCase(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Case{}, fmt.Errorf("repo.CaseRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetBySlug retrieves a case by slug, optionally constrained to a status.
func (r *pgCaseRepo) GetBySlug(ctx context.Context, slug string, status domain.Status) (domain.Case, error) {
	q := `SELECT ` + caseColumns + ` FROM cases c
		WHERE c.slug = @slug
		  AND (@status = 'any' OR c.status = @status)`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug, "status": string(status)})
	result, err := scanCase(row)
	if err != nil {
		return domain.Case{}, fmt.Errorf("repo.CaseRepo.GetBySlug: %w", err)
	}
	return result, nil
}

// Search runs the filtered, ordered, paginated case query.
func (r *pgCaseRepo) Search(ctx context.Context, f domain.CaseFilter) ([]domain.Case, error) {
	where, args := buildCaseWhere(f)
	q := `SELECT ` + caseColumns + ` FROM cases c
		` + where + `
		` + orderClause(f.OrderBy, f.Order)
	if f.Limit > 0 {
		q += `
		LIMIT @limit OFFSET @offset`
		args["limit"] = f.Limit
		args["offset"] = f.Offset
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.CaseRepo.Search: %w", err)
	}
	cases, err := collect(rows, scanCase)
	if err != nil {
		return nil, fmt.Errorf("repo.CaseRepo.Search: scan: %w", err)
	}
	return cases, nil
}

// Count returns the number of cases matching f.
func (r *pgCaseRepo) Count(ctx context.Context, f domain.CaseFilter) (int64, error) {
	where, args := buildCaseWhere(f)
	q := `SELECT count(*) FROM cases c ` + where

	var n int64
	if err := r.db.QueryRow(ctx, q, args).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.CaseRepo.Count: %w", err)
	}
	return n, nil
}

// ListImages returns the attachments linked to a case as before/after photos.
func (r *pgCaseRepo) ListImages(ctx context.Context, caseID int64) ([]domain.CaseImage, error) {
	const q = `
		SELECT ci.kind, ci.position, a.id, a.url, a.alt, a.width, a.height
		FROM case_images ci
		JOIN attachments a ON a.id = ci.attachment_id
		WHERE ci.case_id = @case_id
		ORDER BY ci.kind DESC, ci.position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"case_id": caseID})
	if err != nil {
		return nil, fmt.Errorf("repo.CaseRepo.ListImages: %w", err)
	}
	images, err := collect(rows, scanCaseImage)
	if err != nil {
		return nil, fmt.Errorf("repo.CaseRepo.ListImages: scan: %w", err)
	}
	return images, nil
}

// GetAttachment retrieves a single attachment by id.
func (r *pgCaseRepo) GetAttachment(ctx context.Context, id uuid.UUID) (domain.Attachment, error) {
	const q = `SELECT id, url, alt, width, height FROM attachments WHERE id = @id`

	var (
		a   domain.Attachment
		aid pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&aid, &a.URL, &a.Alt, &a.Width, &a.Height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Attachment{}, fmt.Errorf("repo.CaseRepo.GetAttachment: %w", domain.ErrNotFound)
		}
		return domain.Attachment{}, fmt.Errorf("repo.CaseRepo.GetAttachment: %w", err)
	}
	a.ID = uuid.UUID(aid.Bytes)
	return a, nil
}

// Upsert inserts a case keyed by slug. On conflict every mutable column is
// overwritten and modified_at is bumped; created_at is kept.
func (r *pgCaseRepo) Upsert(ctx context.Context, c domain.Case) (domain.Case, error) {
	q := `
		INSERT INTO cases AS c (title, slug, body, excerpt, status, menu_order, featured,
			patient_age, patient_gender, patient_info, procedure_details, seo_data,
			legacy_images, featured_image_id, external_case_id, created_at, modified_at)
		VALUES (@title, @slug, @body, @excerpt, @status, @menu_order, @featured,
			@patient_age, @patient_gender, @patient_info, @procedure_details, @seo_data,
			@legacy_images, @featured_image_id, @external_case_id,
			COALESCE(@created_at, now()), now())
		ON CONFLICT (slug) DO UPDATE SET
			title             = EXCLUDED.title,
			body              = EXCLUDED.body,
			excerpt           = EXCLUDED.excerpt,
			status            = EXCLUDED.status,
			menu_order        = EXCLUDED.menu_order,
			featured          = EXCLUDED.featured,
			patient_age       = EXCLUDED.patient_age,
			patient_gender    = EXCLUDED.patient_gender,
			patient_info      = EXCLUDED.patient_info,
			procedure_details = EXCLUDED.procedure_details,
			seo_data          = EXCLUDED.seo_data,
			legacy_images     = EXCLUDED.legacy_images,
			featured_image_id = EXCLUDED.featured_image_id,
			external_case_id  = EXCLUDED.external_case_id,
			modified_at       = now()
		RETURNING ` + caseColumns

	var createdAt *time.Time
	if !c.CreatedAt.IsZero() {
		createdAt = &c.CreatedAt
	}
	status := c.Status
	if status == "" {
		status = domain.StatusPublish
	}

	args := pgx.NamedArgs{
		"title":             c.Title,
		"slug":              c.Slug,
		"body":              c.Body,
		"excerpt":           c.Excerpt,
		"status":            string(status),
		"menu_order":        c.MenuOrder,
		"featured":          c.Featured,
		"patient_age":       c.PatientAge, // nil becomes NULL
		"patient_gender":    c.PatientGender,
		"patient_info":      c.PatientInfo,
		"procedure_details": c.ProcedureDetails,
		"seo_data":          c.SEOData,
		"legacy_images":     c.LegacyImages,
		"featured_image_id": c.FeaturedImageID,
		"external_case_id":  c.ExternalCaseID,
		"created_at":        createdAt,
	}

	result, err := scanCase(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Case{}, fmt.Errorf("repo.CaseRepo.Upsert: %w", err)
	}
	return result, nil
}

// SetTerms replaces every term link of a case.
func (r *pgCaseRepo) SetTerms(ctx context.Context, caseID int64, termIDs []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM case_terms WHERE case_id = @case_id`,
		pgx.NamedArgs{"case_id": caseID}); err != nil {
		return fmt.Errorf("repo.CaseRepo.SetTerms: clear: %w", err)
	}

	const q = `
		INSERT INTO case_terms (case_id, term_id, position)
		VALUES (@case_id, @term_id, @position)
		ON CONFLICT (case_id, term_id) DO NOTHING`

	for i, id := range termIDs {
		args := pgx.NamedArgs{"case_id": caseID, "term_id": id, "position": i}
		if _, err := r.db.Exec(ctx, q, args); err != nil {
			return fmt.Errorf("repo.CaseRepo.SetTerms: %w", err)
		}
	}
	return nil
}

// SetMeta replaces every meta row of a case.
func (r *pgCaseRepo) SetMeta(ctx context.Context, caseID int64, meta map[string]string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM case_meta WHERE case_id = @case_id`,
		pgx.NamedArgs{"case_id": caseID}); err != nil {
		return fmt.Errorf("repo.CaseRepo.SetMeta: clear: %w", err)
	}

	const q = `
		INSERT INTO case_meta (case_id, meta_key, meta_value)
		VALUES (@case_id, @key, @value)`

	for k, v := range meta {
		if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"case_id": caseID, "key": k, "value": v}); err != nil {
			return fmt.Errorf("repo.CaseRepo.SetMeta: %w", err)
		}
	}
	return nil
}

// ReplaceImages stores each image as a fresh attachment linked to the case.
func (r *pgCaseRepo) ReplaceImages(ctx context.Context, caseID int64, images []domain.CaseImage) ([]domain.CaseImage, error) {
	const clear = `
		DELETE FROM attachments
		WHERE id IN (SELECT attachment_id FROM case_images WHERE case_id = @case_id)`
	if _, err := r.db.Exec(ctx, clear, pgx.NamedArgs{"case_id": caseID}); err != nil {
		return nil, fmt.Errorf("repo.CaseRepo.ReplaceImages: clear: %w", err)
	}

	const insertAttachment = `
		INSERT INTO attachments (url, alt, width, height)
		VALUES (@url, @alt, @width, @height)
		RETURNING id`
	const link = `
		INSERT INTO case_images (case_id, attachment_id, kind, position)
		VALUES (@case_id, @attachment_id, @kind, @position)`

	out := make([]domain.CaseImage, 0, len(images))
	for _, img := range images {
		var id pgtype.UUID
		args := pgx.NamedArgs{"url": img.URL, "alt": img.Alt, "width": img.Width, "height": img.Height}
		if err := r.db.QueryRow(ctx, insertAttachment, args).Scan(&id); err != nil {
			return nil, fmt.Errorf("repo.CaseRepo.ReplaceImages: attachment: %w", err)
		}
		img.ID = uuid.UUID(id.Bytes)

		linkArgs := pgx.NamedArgs{
			"case_id":       caseID,
			"attachment_id": img.ID,
			"kind":          string(img.Kind),
			"position":      img.Position,
		}
		if _, err := r.db.Exec(ctx, link, linkArgs); err != nil {
			return nil, fmt.Errorf("repo.CaseRepo.ReplaceImages: link: %w", err)
		}
		out = append(out, img)
	}
	return out, nil
}

// scanCase maps a single database row into a domain.Case.
// It handles the nullable patient_age and featured_image_id columns.
func scanCase(s scanner) (domain.Case, error) {
	var (
		c        domain.Case
		status   string
		age      pgtype.Int4
		featured pgtype.UUID
	)

	err := s.Scan(&c.ID, &c.Title, &c.Slug, &c.Body, &c.Excerpt, &status, &c.MenuOrder, &c.Featured,
		&age, &c.PatientGender, &c.PatientInfo, &c.ProcedureDetails, &c.SEOData,
		&c.LegacyImages, &featured, &c.ExternalCaseID, &c.CreatedAt, &c.ModifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Case{}, domain.ErrNotFound
		}
		return domain.Case{}, err
	}

	c.Status = domain.Status(status)
	if age.Valid {
		v := int(age.Int32)
		c.PatientAge = &v
	}
	if featured.Valid {
		id := uuid.UUID(featured.Bytes)
		c.FeaturedImageID = &id
	}
	return c, nil
}

func scanCaseImage(s scanner) (domain.CaseImage, error) {
	var (
		img  domain.CaseImage
		kind string
		id   pgtype.UUID
	)
	if err := s.Scan(&kind, &img.Position, &id, &img.URL, &img.Alt, &img.Width, &img.Height); err != nil {
		return domain.CaseImage{}, err
	}
	img.Kind = domain.ImageKind(kind)
	img.ID = uuid.UUID(id.Bytes)
	return img, nil
}
