package models

// Operator is a comparison supported by every document store backend.
type Operator string

const (
	OpEq      Operator = "=="
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpMissing Operator = "missing"
)

// Predicate constrains one field. Predicates in a Query are conjunctive.
type Predicate struct {
	Field string
	Op    Operator
	Value interface{}
}

// Order is one sort key.
type Order struct {
	Field string
	Desc  bool
}

// Query is the collection-level query understood by the stores.
//
// StartAfter resumes after the given document in OrderBy order (keyset
// cursor); stores append the identifier as a final ascending tie-breaker so
// the order is total. Limit <= 0 means no limit.
type Query struct {
	Predicates []Predicate
	OrderBy    []Order
	StartAfter *Document
	Limit      int
}

// Eq is shorthand for an equality predicate.
func Eq(field string, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: value}
}

// Range returns the inclusive [from, to] predicate pair on a field.
func Range(field string, from, to interface{}) []Predicate {
	return []Predicate{
		{Field: field, Op: OpGte, Value: from},
		{Field: field, Op: OpLte, Value: to},
	}
}
