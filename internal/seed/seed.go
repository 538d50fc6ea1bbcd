package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/internal/repo"
	"github.com/pkordes/case-gallery/internal/router"
)

// Result summarises an import.
type Result struct {
	Cases int `json:"cases"`
	Terms int `json:"terms"`
}

// TxBeginner opens a transaction. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Load parses every *.md file under fsys in lexical order.
func Load(fsys fs.FS) ([]Document, error) {
	var docs []Document
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(name), ".md") {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		doc, err := Parse(name, data)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed.Load: %w", err)
	}
	return docs, nil
}

// Apply writes docs through the case and term writers. Terms are upserted by
// name path, so a category "Body/Tummy" creates Body and its child Tummy.
// Term counts are recomputed once at the end.
func Apply(ctx context.Context, cases repo.CaseWriter, terms repo.TermWriter, docs []Document, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := applier{cases: cases, terms: terms, termIDs: map[string]int64{}}

	slugs := make(map[string]string, len(docs))
	for _, doc := range docs {
		if prev, dup := slugs[doc.Meta.Slug]; dup {
			return Result{}, fmt.Errorf("seed.Apply: %s: %w: slug %q already used by %s",
				doc.Name, domain.ErrValidation, doc.Meta.Slug, prev)
		}
		slugs[doc.Meta.Slug] = doc.Name

		if err := a.apply(ctx, doc); err != nil {
			return Result{}, fmt.Errorf("seed.Apply: %s: %w", doc.Name, err)
		}
		logger.DebugContext(ctx, "case imported", "file", doc.Name, "slug", doc.Meta.Slug)
	}

	if err := terms.RefreshCounts(ctx); err != nil {
		return Result{}, fmt.Errorf("seed.Apply: %w", err)
	}
	return Result{Cases: len(docs), Terms: len(a.termIDs)}, nil
}

// ImportDir loads fsys and applies it in a single transaction.
func ImportDir(ctx context.Context, db TxBeginner, fsys fs.FS, logger *slog.Logger) (Result, error) {
	docs, err := Load(fsys)
	if err != nil {
		return Result{}, err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("seed.ImportDir: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := Apply(ctx, repo.NewCaseRepo(tx), repo.NewTermRepo(tx), docs, logger)
	if err != nil {
		return Result{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("seed.ImportDir: commit: %w", err)
	}
	return res, nil
}

type applier struct {
	cases repo.CaseWriter
	terms repo.TermWriter

	// termIDs maps taxonomy + name path to the stored term id.
	termIDs map[string]int64
}

func (a *applier) apply(ctx context.Context, doc Document) error {
	var ids []int64
	for _, p := range doc.Meta.Categories {
		id, err := a.termPath(ctx, domain.TaxonomyCategory, p)
		if err != nil {
			return err
		}
		if id != 0 {
			ids = append(ids, id)
		}
	}
	for _, name := range doc.Meta.Procedures {
		// Procedures are flat; a "/" is part of the name.
		id, err := a.term(ctx, domain.TaxonomyProcedure, name, nil, string(domain.TaxonomyProcedure)+":"+name)
		if err != nil {
			return err
		}
		if id != 0 {
			ids = append(ids, id)
		}
	}

	c, err := toCase(doc)
	if err != nil {
		return err
	}
	saved, err := a.cases.Upsert(ctx, c)
	if err != nil {
		return err
	}
	if err := a.cases.SetTerms(ctx, saved.ID, ids); err != nil {
		return err
	}
	if err := a.cases.SetMeta(ctx, saved.ID, doc.Meta.Meta); err != nil {
		return err
	}

	images, err := a.cases.ReplaceImages(ctx, saved.ID, caseImages(doc.Meta))
	if err != nil {
		return err
	}
	// The featured image is the first after photo, else the first before.
	if id, ok := featuredImage(images); ok {
		c.FeaturedImageID = &id
		if _, err := a.cases.Upsert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// termPath upserts every level of a "/"-separated category path and returns
// the id of the last one.
func (a *applier) termPath(ctx context.Context, tax domain.Taxonomy, p string) (int64, error) {
	var (
		parent *int64
		id     int64
		key    = string(tax)
	)
	for _, name := range strings.Split(p, "/") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key += ":" + name
		var err error
		if id, err = a.term(ctx, tax, name, parent, key); err != nil {
			return 0, err
		}
		if id != 0 {
			pid := id
			parent = &pid
		}
	}
	return id, nil
}

func (a *applier) term(ctx context.Context, tax domain.Taxonomy, name string, parent *int64, key string) (int64, error) {
	name = strings.TrimSpace(name)
	slug := TermSlug(name)
	if slug == "" {
		return 0, nil
	}
	if id, ok := a.termIDs[key]; ok {
		return id, nil
	}
	t, err := a.terms.Upsert(ctx, domain.Term{Taxonomy: tax, Name: name, Slug: slug, ParentID: parent})
	if err != nil {
		return 0, err
	}
	a.termIDs[key] = t.ID
	return t.ID, nil
}

// TermSlug slugifies a term name. Slugs that collide with the gallery's
// reserved path segments get a "-2" suffix so the term stays addressable.
func TermSlug(name string) string {
	slug := Slugify(name)
	if router.IsReserved(slug) {
		slug += "-2"
	}
	return slug
}

func toCase(doc Document) (domain.Case, error) {
	fm := doc.Meta
	c := domain.Case{
		Title:          fm.Title,
		Slug:           fm.Slug,
		Body:           doc.Body,
		Excerpt:        fm.Excerpt,
		Status:         domain.ParseStatus(fm.Status),
		MenuOrder:      fm.MenuOrder,
		Featured:       fm.Featured,
		PatientAge:     fm.Patient.Age,
		PatientGender:  fm.Patient.Gender,
		ExternalCaseID: fm.ExternalID,
		CreatedAt:      fm.Date,
	}
	// "any" is a query value, not a stored status.
	if c.Status == domain.StatusAny {
		c.Status = domain.StatusPublish
	}

	var err error
	if c.PatientInfo, err = blob(fm.PatientInfo); err != nil {
		return domain.Case{}, fmt.Errorf("patient_info: %w", err)
	}
	if c.ProcedureDetails, err = blob(fm.ProcedureDetails); err != nil {
		return domain.Case{}, fmt.Errorf("procedure_details: %w", err)
	}
	if fm.SEO != nil {
		if c.SEOData, err = blob(fm.SEO); err != nil {
			return domain.Case{}, fmt.Errorf("seo: %w", err)
		}
	}
	return c, nil
}

// blob JSON-encodes v for the opaque metadata columns. Empty maps store as "".
func blob(v any) (string, error) {
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func caseImages(fm FrontMatter) []domain.CaseImage {
	out := make([]domain.CaseImage, 0, len(fm.Before)+len(fm.After))
	add := func(kind domain.ImageKind, imgs []Image) {
		for i, img := range imgs {
			if img.URL == "" {
				continue
			}
			out = append(out, domain.CaseImage{
				Attachment: domain.Attachment{URL: img.URL, Alt: img.Alt, Width: img.Width, Height: img.Height},
				Kind:       kind,
				Position:   i,
			})
		}
	}
	add(domain.ImageBefore, fm.Before)
	add(domain.ImageAfter, fm.After)
	return out
}

func featuredImage(images []domain.CaseImage) (uuid.UUID, bool) {
	for _, kind := range []domain.ImageKind{domain.ImageAfter, domain.ImageBefore} {
		for _, img := range images {
			if img.Kind == kind {
				return img.ID, true
			}
		}
	}
	return uuid.UUID{}, false
}
