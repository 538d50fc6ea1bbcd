package repo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/case-gallery/internal/domain"
)

// orderColumns maps the allow-listed sort keys onto SQL expressions.
// Keys outside this map are never interpolated into SQL.
var orderColumns = map[string]string{
	domain.OrderDate:      "c.created_at",
	domain.OrderModified:  "c.modified_at",
	domain.OrderTitle:     "c.title",
	domain.OrderMenuOrder: "c.menu_order",
	domain.OrderRandom:    "random()",
	domain.OrderID:        "c.id",
}

// whereBuilder accumulates AND-ed predicates and their named arguments.
type whereBuilder struct {
	preds []string
	args  pgx.NamedArgs
	n     int
}

func newWhereBuilder() *whereBuilder {
	return &whereBuilder{args: pgx.NamedArgs{}}
}

// arg registers value under a unique name derived from prefix and returns the
// placeholder to splice into SQL.
func (w *whereBuilder) arg(prefix string, value any) string {
	w.n++
	name := prefix + "_" + strconv.Itoa(w.n)
	w.args[name] = value
	return "@" + name
}

func (w *whereBuilder) add(pred string) {
	w.preds = append(w.preds, pred)
}

func (w *whereBuilder) sql() string {
	if len(w.preds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.preds, "\n  AND ")
}

// buildCaseWhere turns a CaseFilter into a WHERE clause over the cases table
// aliased as c. Every clause is ANDed; TermAny is the only OR group.
func buildCaseWhere(f domain.CaseFilter) (string, pgx.NamedArgs) {
	w := newWhereBuilder()

	if f.Status != "" && f.Status != domain.StatusAny {
		w.add("c.status = " + w.arg("status", string(f.Status)))
	}
	if f.Search != "" {
		p := w.arg("search", "%"+escapeLike(f.Search)+"%")
		w.add(fmt.Sprintf("(c.title ILIKE %[1]s OR c.excerpt ILIKE %[1]s OR c.body ILIKE %[1]s)", p))
	}
	if len(f.IncludeIDs) > 0 {
		w.add("c.id = ANY(" + w.arg("include", f.IncludeIDs) + ")")
	}
	if len(f.ExcludeIDs) > 0 {
		w.add("c.id <> ALL(" + w.arg("exclude", f.ExcludeIDs) + ")")
	}
	if f.Featured != nil {
		w.add("c.featured = " + w.arg("featured", *f.Featured))
	}
	if f.AgeMin != nil {
		w.add("c.patient_age >= " + w.arg("age_min", *f.AgeMin))
	}
	if f.AgeMax != nil {
		w.add("c.patient_age <= " + w.arg("age_max", *f.AgeMax))
	}
	if f.Gender != "" {
		w.add("lower(c.patient_gender) = lower(" + w.arg("gender", f.Gender) + ")")
	}
	if f.CreatedFrom != nil {
		w.add("c.created_at >= " + w.arg("created_from", *f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		w.add("c.created_at <= " + w.arg("created_to", *f.CreatedTo))
	}
	if len(f.TermAny) > 0 {
		w.add(`EXISTS (
		SELECT 1 FROM case_terms ct
		WHERE ct.case_id = c.id AND ct.term_id = ANY(` + w.arg("term_any", f.TermAny) + `))`)
	}
	for _, tc := range f.TaxClauses {
		if pred := taxPredicate(w, tc); pred != "" {
			w.add(pred)
		}
	}
	for _, mc := range f.MetaClauses {
		if pred := metaPredicate(w, mc); pred != "" {
			w.add(pred)
		}
	}

	return w.sql(), w.args
}

// taxPredicate renders one TaxClause. Clauses with no usable terms render
// nothing, except IN which renders FALSE so an empty IN matches no rows.
func taxPredicate(w *whereBuilder, tc domain.TaxClause) string {
	var (
		ids   []int64
		slugs []string
		n     int
	)
	if tc.Field == "id" {
		for _, t := range tc.Terms {
			if id, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
		ids = uniqueInt64(ids)
		n = len(ids)
	} else {
		slugs = uniqueStrings(tc.Terms)
		n = len(slugs)
	}

	operator := strings.ToUpper(tc.Operator)
	if n == 0 {
		if operator == domain.TaxNotIn {
			return ""
		}
		return "FALSE"
	}

	var match string
	if tc.Field == "id" {
		match = "t.id = ANY(" + w.arg("tax_ids", ids) + ")"
	} else {
		match = "t.slug = ANY(" + w.arg("tax_slugs", slugs) + ")"
	}

	sub := `SELECT 1 FROM case_terms ct
		JOIN terms t ON t.id = ct.term_id
		WHERE ct.case_id = c.id
		  AND t.taxonomy = ` + w.arg("tax", string(tc.Taxonomy)) + `
		  AND ` + match

	switch operator {
	case domain.TaxNotIn:
		return "NOT EXISTS (" + sub + ")"
	case domain.TaxAnd:
		countSub := strings.Replace(sub, "SELECT 1", "SELECT count(DISTINCT t.id)", 1)
		return "(" + countSub + ") = " + w.arg("tax_n", n)
	default:
		return "EXISTS (" + sub + ")"
	}
}

// metaPredicate renders one MetaClause against case_meta.
func metaPredicate(w *whereBuilder, mc domain.MetaClause) string {
	if mc.Key == "" {
		return ""
	}
	key := w.arg("meta_key", mc.Key)
	base := "SELECT 1 FROM case_meta m WHERE m.case_id = c.id AND m.meta_key = " + key

	switch strings.ToUpper(mc.Compare) {
	case domain.CompareExists:
		return "EXISTS (" + base + ")"
	case domain.CompareNotExists:
		return "NOT EXISTS (" + base + ")"
	case domain.CompareNotEqual:
		return "NOT EXISTS (" + base + " AND m.meta_value = " + w.arg("meta_value", mc.Value) + ")"
	case domain.CompareLike:
		return "EXISTS (" + base + " AND m.meta_value ILIKE " + w.arg("meta_value", "%"+escapeLike(mc.Value)+"%") + ")"
	default:
		return "EXISTS (" + base + " AND m.meta_value = " + w.arg("meta_value", mc.Value) + ")"
	}
}

// orderClause renders ORDER BY for an allow-listed key and direction.
// Unknown keys sort by date; unknown directions sort descending. The id
// tie-breaker keeps pagination stable for non-random orders.
func orderClause(orderBy, order string) string {
	col, ok := orderColumns[orderBy]
	if !ok {
		col = orderColumns[domain.OrderDate]
	}
	if orderBy == domain.OrderRandom {
		return "ORDER BY " + col
	}
	dir := domain.SortDesc
	if strings.EqualFold(order, domain.SortAsc) {
		dir = domain.SortAsc
	}
	if orderBy == domain.OrderID {
		return "ORDER BY c.id " + dir
	}
	return "ORDER BY " + col + " " + dir + ", c.id " + dir
}

// escapeLike escapes LIKE wildcards so user search text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func uniqueInt64(in []int64) []int64 {
	seen := make(map[int64]bool, len(in))
	out := make([]int64, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
