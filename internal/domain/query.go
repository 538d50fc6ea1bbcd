package domain

import "time"

// Sort keys accepted by QueryArgs.OrderBy. Anything else falls back to OrderDate.
const (
	OrderDate      = "date"
	OrderModified  = "modified"
	OrderTitle     = "title"
	OrderMenuOrder = "menu_order"
	OrderRandom    = "random"
	OrderID        = "id"
)

// Sort directions.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Meta comparison operators accepted in MetaClause.Compare.
const (
	CompareEqual     = "="
	CompareNotEqual  = "!="
	CompareLike      = "LIKE"
	CompareExists    = "EXISTS"
	CompareNotExists = "NOT EXISTS"
)

// Taxonomy operators accepted in TaxClause.Operator.
const (
	TaxIn    = "IN"
	TaxNotIn = "NOT IN"
	TaxAnd   = "AND"
)

// MetaClause filters cases on a single case_meta key.
type MetaClause struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Compare string `json:"compare,omitempty"`
}

// TaxClause filters cases on terms of one taxonomy.
// Field is "id" or "slug"; Terms holds the values in that field's form.
type TaxClause struct {
	Taxonomy Taxonomy `json:"taxonomy"`
	Field    string   `json:"field,omitempty"`
	Terms    []string `json:"terms"`
	Operator string   `json:"operator,omitempty"`
}

// QueryArgs is the declarative gallery query accepted by the query engine.
// Every field is optional; Normalize fills defaults and clamps ranges.
type QueryArgs struct {
	PageSize *int   `json:"page_size,omitempty"`
	Page     int    `json:"page,omitempty"`
	Status   Status `json:"status,omitempty"`
	OrderBy  string `json:"orderby,omitempty"`
	Order    string `json:"order,omitempty"`
	Search   string `json:"search,omitempty"`

	// Category and Procedure accept a term id or slug.
	Category  string `json:"category,omitempty"`
	Procedure string `json:"procedure,omitempty"`

	// Age is "N" or an inclusive range "N-M". Gender matches case-insensitively.
	Age    string `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`

	MetaQuery []MetaClause `json:"meta_query,omitempty"`
	TaxQuery  []TaxClause  `json:"tax_query,omitempty"`

	WithMeta   bool `json:"with_meta,omitempty"`
	WithImages bool `json:"with_images,omitempty"`

	// NoCache bypasses the result cache for this call.
	NoCache bool `json:"-"`
}

// CaseFilter is the normalised, storage-facing form of a query.
// All slices are ANDed together except TermAny, whose ids are ORed.
type CaseFilter struct {
	Status  Status
	Search  string
	OrderBy string
	Order   string
	Limit   int
	Offset  int

	TaxClauses  []TaxClause
	MetaClauses []MetaClause

	// TermAny matches cases linked to at least one of these term ids.
	TermAny    []int64
	IncludeIDs []int64
	ExcludeIDs []int64

	Featured *bool

	AgeMin *int
	AgeMax *int
	Gender string

	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// QueryResult is one cached page of formatted cases.
type QueryResult struct {
	Items      []CaseRecord `json:"items"`
	Pagination Pagination   `json:"pagination"`
}

// EmptyResult is what a failed query degrades to.
func EmptyResult() QueryResult {
	return QueryResult{Items: []CaseRecord{}}
}

// Stats is an informational snapshot of the gallery.
type Stats struct {
	Published      int64       `json:"published"`
	Draft          int64       `json:"draft"`
	CategoryTerms  int64       `json:"category_terms"`
	ProcedureTerms int64       `json:"procedure_terms"`
	RecentWeek     int64       `json:"recent_week"`
	Featured       int64       `json:"featured"`
	TopCategory    *TermRecord `json:"top_category,omitempty"`
	TopProcedure   *TermRecord `json:"top_procedure,omitempty"`
	GeneratedAt    time.Time   `json:"generated_at"`
}
