// Package db provides list filter building for directory queries.
package db

import "strings"

// Filter represents a single query filter condition.
type Filter interface {
	// SQL returns the SQL fragment for this filter
	SQL() string

	// Args returns the arguments for this filter
	Args() []interface{}

	// Valid checks if the filter is valid
	Valid() bool
}

// RegionFilter filters notaries by exact region.
type RegionFilter struct {
	Region string
}

func (f *RegionFilter) Valid() bool {
	return strings.TrimSpace(f.Region) != ""
}

func (f *RegionFilter) SQL() string {
	return "region = ?"
}

func (f *RegionFilter) Args() []interface{} {
	return []interface{}{f.Region}
}

// SpecializationFilter filters notaries by exact specialization.
type SpecializationFilter struct {
	Specialization string
}

func (f *SpecializationFilter) Valid() bool {
	return strings.TrimSpace(f.Specialization) != ""
}

func (f *SpecializationFilter) SQL() string {
	return "specialization = ?"
}

func (f *SpecializationFilter) Args() []interface{} {
	return []interface{}{f.Specialization}
}

// NameFilter matches a substring of the notary's full name.
type NameFilter struct {
	Query string
}

func (f *NameFilter) Valid() bool {
	return strings.TrimSpace(f.Query) != ""
}

func (f *NameFilter) SQL() string {
	return "fio LIKE ?"
}

func (f *NameFilter) Args() []interface{} {
	return []interface{}{"%" + strings.TrimSpace(f.Query) + "%"}
}

// SortDirection is the order of a sorted list query.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// sortable notary columns; anything else falls back to fio.
var notarySortColumns = map[string]bool{
	"fio":        true,
	"region":     true,
	"created_at": true,
	"updated_at": true,
}

// NotaryFilter accumulates AND-composed conditions and a sort order
// for notary list queries.
type NotaryFilter struct {
	filters   []Filter
	sortField string
	sortDir   SortDirection
}

// NewNotaryFilter creates an empty filter sorted by name ascending.
func NewNotaryFilter() *NotaryFilter {
	return &NotaryFilter{
		sortField: "fio",
		sortDir:   SortAsc,
	}
}

// Region adds an exact-region condition.
func (nf *NotaryFilter) Region(region string) *NotaryFilter {
	return nf.add(&RegionFilter{Region: region})
}

// Specialization adds an exact-specialization condition.
func (nf *NotaryFilter) Specialization(spec string) *NotaryFilter {
	return nf.add(&SpecializationFilter{Specialization: spec})
}

// Name adds a substring match on the full name.
func (nf *NotaryFilter) Name(query string) *NotaryFilter {
	return nf.add(&NameFilter{Query: query})
}

// SortBy sets the sort column and direction. Unknown columns keep the
// default sort.
func (nf *NotaryFilter) SortBy(field string, dir SortDirection) *NotaryFilter {
	if notarySortColumns[field] {
		nf.sortField = field
	}
	if dir == SortAsc || dir == SortDesc {
		nf.sortDir = dir
	}
	return nf
}

func (nf *NotaryFilter) add(f Filter) *NotaryFilter {
	if f.Valid() {
		nf.filters = append(nf.filters, f)
	}
	return nf
}

// HasFilters returns true if any conditions have been added.
func (nf *NotaryFilter) HasFilters() bool {
	return len(nf.filters) > 0
}

// Build returns the WHERE fragment (without the keyword) and its
// arguments. Empty string means no conditions.
func (nf *NotaryFilter) Build() (string, []interface{}) {
	if !nf.HasFilters() {
		return "", nil
	}

	var sqlParts []string
	var args []interface{}
	for _, f := range nf.filters {
		sqlParts = append(sqlParts, f.SQL())
		args = append(args, f.Args()...)
	}
	return strings.Join(sqlParts, " AND "), args
}

// OrderBy returns the ORDER BY fragment (without the keyword).
func (nf *NotaryFilter) OrderBy() string {
	return nf.sortField + " " + string(nf.sortDir)
}
