package domain

import "time"

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageRequest holds the requested page and page size of a listing.
type PageRequest struct {
	Page     int
	PageSize int
	Sort     string
}

// PaginationResult is the offset/limit window derived from a PageRequest
// and the number of rows matching the listing filter.
type PaginationResult struct {
	Skip       int
	Limit      int
	Page       int
	TotalPages int
}

// PaginatedResponse is the envelope returned by every listing endpoint.
type PaginatedResponse[T any] struct {
	Content     []T   `json:"content"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
}

// PredicateKind enumerates the supported listing predicates.
type PredicateKind int

const (
	// PredicateContains is a case-insensitive substring match on a text column.
	PredicateContains PredicateKind = iota + 1
	// PredicateEquals is an exact match on a column.
	PredicateEquals
	// PredicateBoolEquals is an equality match on a boolean column.
	PredicateBoolEquals
)

// String returns the kind name.
func (k PredicateKind) String() string {
	switch k {
	case PredicateContains:
		return "contains"
	case PredicateEquals:
		return "equals"
	case PredicateBoolEquals:
		return "bool_equals"
	default:
		return "unknown"
	}
}

// Predicate is a single match condition on a column.
// Exactly one of Text, Value, or Bool is meaningful, selected by Kind.
type Predicate struct {
	Kind  PredicateKind
	Field string
	Text  string
	Value any
	Bool  bool
}

// Contains builds a substring predicate.
func Contains(field, text string) Predicate {
	return Predicate{Kind: PredicateContains, Field: field, Text: text}
}

// Equals builds an exact-match predicate.
func Equals(field string, value any) Predicate {
	return Predicate{Kind: PredicateEquals, Field: field, Value: value}
}

// BoolEquals builds a boolean equality predicate.
func BoolEquals(field string, v bool) Predicate {
	return Predicate{Kind: PredicateBoolEquals, Field: field, Bool: v}
}

// FilterSpec is the AND-combination of predicates applied to a listing.
// The zero value matches everything.
type FilterSpec struct {
	predicates []Predicate
}

// NewFilterSpec returns a FilterSpec holding the given predicates.
// Contains predicates with empty text impose no constraint and are dropped.
func NewFilterSpec(preds ...Predicate) FilterSpec {
	var f FilterSpec
	for _, p := range preds {
		f = f.With(p)
	}
	return f
}

// With returns a copy of f with p appended.
func (f FilterSpec) With(p Predicate) FilterSpec {
	if p.Kind == PredicateContains && p.Text == "" {
		return f
	}
	preds := make([]Predicate, 0, len(f.predicates)+1)
	preds = append(preds, f.predicates...)
	preds = append(preds, p)
	return FilterSpec{predicates: preds}
}

// Predicates returns the predicates in insertion order.
func (f FilterSpec) Predicates() []Predicate {
	out := make([]Predicate, len(f.predicates))
	copy(out, f.predicates)
	return out
}

// Empty reports whether f imposes no constraint.
func (f FilterSpec) Empty() bool {
	return len(f.predicates) == 0
}
