package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/case-gallery/internal/domain"
)

func TestBuildCaseWhere_Empty(t *testing.T) {
	where, args := buildCaseWhere(domain.CaseFilter{})

	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildCaseWhere_StatusAnySkipsFilter(t *testing.T) {
	where, _ := buildCaseWhere(domain.CaseFilter{Status: domain.StatusAny})

	assert.NotContains(t, where, "c.status")
}

func TestBuildCaseWhere_SearchEscapesWildcards(t *testing.T) {
	where, args := buildCaseWhere(domain.CaseFilter{Search: "50%_off"})

	assert.Contains(t, where, "ILIKE")
	assert.Contains(t, args, "search_1")
	assert.Equal(t, `%50\%\_off%`, args["search_1"])
}

func TestBuildCaseWhere_ClausesAreANDed(t *testing.T) {
	featured := true
	minAge, maxAge := 30, 40
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	where, args := buildCaseWhere(domain.CaseFilter{
		Status:      domain.StatusPublish,
		Featured:    &featured,
		AgeMin:      &minAge,
		AgeMax:      &maxAge,
		Gender:      "Female",
		CreatedFrom: &from,
		ExcludeIDs:  []int64{7},
	})

	assert.Contains(t, where, "c.status = @status_1")
	assert.Contains(t, where, "c.featured = ")
	assert.Contains(t, where, "c.patient_age >= ")
	assert.Contains(t, where, "c.patient_age <= ")
	assert.Contains(t, where, "lower(c.patient_gender) = lower(")
	assert.Contains(t, where, "c.created_at >= ")
	assert.Contains(t, where, "c.id <> ALL(")
	assert.Len(t, args, 7)
}

func TestBuildCaseWhere_TermAnyIsSingleORGroup(t *testing.T) {
	where, args := buildCaseWhere(domain.CaseFilter{TermAny: []int64{1, 2, 3}})

	assert.Contains(t, where, "ct.term_id = ANY(@term_any_1)")
	assert.Equal(t, []int64{1, 2, 3}, args["term_any_1"])
}

func TestTaxPredicate_Operators(t *testing.T) {
	tests := []struct {
		name   string
		clause domain.TaxClause
		want   string
	}{
		{"in by slug", domain.TaxClause{Taxonomy: domain.TaxonomyCategory, Terms: []string{"face"}}, "EXISTS ("},
		{"not in", domain.TaxClause{Taxonomy: domain.TaxonomyCategory, Terms: []string{"face"}, Operator: "not in"}, "NOT EXISTS ("},
		{"and", domain.TaxClause{Taxonomy: domain.TaxonomyProcedure, Terms: []string{"a", "b"}, Operator: "AND"}, "count(DISTINCT t.id)"},
		{"by id", domain.TaxClause{Taxonomy: domain.TaxonomyProcedure, Field: "id", Terms: []string{"4"}}, "t.id = ANY("},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := taxPredicate(newWhereBuilder(), tt.clause)
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestTaxPredicate_EmptyTerms(t *testing.T) {
	in := taxPredicate(newWhereBuilder(), domain.TaxClause{Taxonomy: domain.TaxonomyCategory, Field: "id", Terms: []string{"abc"}})
	notIn := taxPredicate(newWhereBuilder(), domain.TaxClause{Taxonomy: domain.TaxonomyCategory, Operator: domain.TaxNotIn})

	assert.Equal(t, "FALSE", in, "an IN over no valid terms matches nothing")
	assert.Empty(t, notIn, "a NOT IN over no terms excludes nothing")
}

func TestTaxPredicate_AndCountsDistinctTerms(t *testing.T) {
	w := newWhereBuilder()
	_ = taxPredicate(w, domain.TaxClause{Taxonomy: domain.TaxonomyCategory, Terms: []string{"a", "a", "b"}, Operator: domain.TaxAnd})

	var n any
	for k, v := range w.args {
		if len(k) > 5 && k[:5] == "tax_n" {
			n = v
		}
	}
	require.NotNil(t, n)
	assert.Equal(t, 2, n)
}

func TestMetaPredicate(t *testing.T) {
	tests := []struct {
		compare string
		want    string
	}{
		{"", "m.meta_value = "},
		{"=", "m.meta_value = "},
		{"!=", "NOT EXISTS ("},
		{"like", "ILIKE"},
		{"EXISTS", "EXISTS ("},
		{"NOT EXISTS", "NOT EXISTS ("},
	}
	for _, tt := range tests {
		t.Run(tt.compare, func(t *testing.T) {
			got := metaPredicate(newWhereBuilder(), domain.MetaClause{Key: "source", Value: "api", Compare: tt.compare})
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestMetaPredicate_EmptyKeyIgnored(t *testing.T) {
	assert.Empty(t, metaPredicate(newWhereBuilder(), domain.MetaClause{Value: "x"}))
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		orderBy, order, want string
	}{
		{"date", "DESC", "ORDER BY c.created_at DESC, c.id DESC"},
		{"title", "asc", "ORDER BY c.title ASC, c.id ASC"},
		{"menu_order", "ASC", "ORDER BY c.menu_order ASC, c.id ASC"},
		{"id", "ASC", "ORDER BY c.id ASC"},
		{"random", "ASC", "ORDER BY random()"},
		{"; DROP TABLE cases", "ASC", "ORDER BY c.created_at ASC, c.id ASC"},
		{"modified", "sideways", "ORDER BY c.modified_at DESC, c.id DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.orderBy, func(t *testing.T) {
			assert.Equal(t, tt.want, orderClause(tt.orderBy, tt.order))
		})
	}
}
