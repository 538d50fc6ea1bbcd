package service

import (
	"context"
	"encoding/json"
	"html"
	"strings"

	"github.com/pkordes/case-gallery/internal/domain"
)

// excerptWords is the length of an excerpt derived from the body.
const excerptWords = 55

// Format assembles the transport record for c. Lookups that fail are logged
// and leave their part of the record empty.
func (e *QueryEngine) Format(ctx context.Context, c domain.Case, opts domain.FormatOptions) domain.CaseRecord {
	terms, err := e.terms.ListByCase(ctx, c.ID)
	if err != nil {
		e.log.WarnContext(ctx, "format: terms lookup failed", "case_id", c.ID, "error", err)
	}

	rec := domain.CaseRecord{
		ID:         c.ID,
		Title:      c.Title,
		Slug:       c.Slug,
		Excerpt:    excerpt(c),
		Content:    renderBody(c.Body),
		Date:       c.CreatedAt,
		Modified:   c.ModifiedAt,
		Status:     c.Status,
		URL:        e.urls.CaseURL(c, terms),
		Featured:   c.Featured,
		Categories: []domain.TermRecord{},
		Procedures: []domain.TermRecord{},
	}
	for _, t := range terms {
		switch t.Taxonomy {
		case domain.TaxonomyCategory:
			rec.Categories = append(rec.Categories, e.termRecord(t))
		case domain.TaxonomyProcedure:
			rec.Procedures = append(rec.Procedures, e.termRecord(t))
		}
	}

	if c.FeaturedImageID != nil {
		a, err := e.cases.GetAttachment(ctx, *c.FeaturedImageID)
		if err != nil {
			e.log.WarnContext(ctx, "format: featured image lookup failed", "case_id", c.ID, "error", err)
		} else {
			img := imageRecord(a)
			rec.FeaturedImage = &img
		}
	}

	if opts.WithMeta {
		rec.Meta = e.decodeMeta(ctx, c)
	}
	if opts.WithImages {
		rec.BeforeImages, rec.AfterImages = e.images(ctx, c)
	}
	return rec
}

func (e *QueryEngine) termRecord(t domain.Term) domain.TermRecord {
	return domain.TermRecord{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		Count:       t.Count,
		URL:         e.urls.TermURL(t),
	}
}

func imageRecord(a domain.Attachment) domain.ImageRecord {
	return domain.ImageRecord{ID: a.ID.String(), URL: a.URL, Alt: a.Alt, Width: a.Width, Height: a.Height}
}

// decodeMeta decodes each metadata blob on its own. A blob that is empty or
// fails to decode leaves only its own field nil.
func (e *QueryEngine) decodeMeta(ctx context.Context, c domain.Case) *domain.CaseMeta {
	m := &domain.CaseMeta{}
	if v, ok := decodeBlob[map[string]any](c.PatientInfo); ok {
		m.PatientInfo = v
	} else if c.PatientInfo != "" {
		e.log.DebugContext(ctx, "format: dropping undecodable patient_info", "case_id", c.ID)
	}
	if v, ok := decodeBlob[map[string]any](c.ProcedureDetails); ok {
		m.ProcedureDetails = v
	} else if c.ProcedureDetails != "" {
		e.log.DebugContext(ctx, "format: dropping undecodable procedure_details", "case_id", c.ID)
	}
	if v, ok := decodeBlob[domain.SEO](c.SEOData); ok {
		m.SEO = &v
	} else if c.SEOData != "" {
		e.log.DebugContext(ctx, "format: dropping undecodable seo", "case_id", c.ID)
	}
	return m
}

// decodeBlob decodes a JSON blob into a T. ok is false for an empty blob or a
// decode failure.
func decodeBlob[T any](blob string) (T, bool) {
	var v T
	if strings.TrimSpace(blob) == "" {
		return v, false
	}
	if err := json.Unmarshal([]byte(blob), &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// images returns the before and after images. Attachments win; cases stored
// before attachments existed fall back to the inline legacy blob.
func (e *QueryEngine) images(ctx context.Context, c domain.Case) (before, after []domain.ImageRecord) {
	stored, err := e.cases.ListImages(ctx, c.ID)
	if err != nil {
		e.log.WarnContext(ctx, "format: image lookup failed", "case_id", c.ID, "error", err)
	}
	if len(stored) == 0 {
		return legacyImages(c.LegacyImages)
	}
	for _, img := range stored {
		switch img.Kind {
		case domain.ImageBefore:
			before = append(before, imageRecord(img.Attachment))
		case domain.ImageAfter:
			after = append(after, imageRecord(img.Attachment))
		}
	}
	return before, after
}

// legacyImage accepts either a bare URL string or an image object.
type legacyImage domain.ImageRecord

func (l *legacyImage) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = legacyImage{URL: s}
		return nil
	}
	var r domain.ImageRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*l = legacyImage(r)
	return nil
}

func legacyImages(blob string) (before, after []domain.ImageRecord) {
	v, ok := decodeBlob[struct {
		Before []legacyImage `json:"before"`
		After  []legacyImage `json:"after"`
	}](blob)
	if !ok {
		return nil, nil
	}
	for _, img := range v.Before {
		if img.URL != "" {
			before = append(before, domain.ImageRecord(img))
		}
	}
	for _, img := range v.After {
		if img.URL != "" {
			after = append(after, domain.ImageRecord(img))
		}
	}
	return before, after
}

// excerpt returns the stored excerpt or the opening words of the body.
func excerpt(c domain.Case) string {
	if c.Excerpt != "" {
		return c.Excerpt
	}
	words := strings.Fields(stripTags(c.Body))
	if len(words) <= excerptWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:excerptWords], " ") + "…"
}

// renderBody returns HTML bodies untouched and wraps plain-text paragraphs
// in <p> tags.
func renderBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" || strings.Contains(body, "<") {
		return body
	}
	var b strings.Builder
	for _, para := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(b.String())
}
