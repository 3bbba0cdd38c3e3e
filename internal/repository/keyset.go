package repository

import "github.com/noah-isme/abs-dashboard-api/internal/models"

// totalOrder appends the identifier as the final ascending key unless the
// ordering already ends with it.
func totalOrder(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders)+1)
	for _, o := range orders {
		out = append(out, o)
		if o.Field == models.FieldID {
			return out
		}
	}
	return append(out, models.Order{Field: models.FieldID})
}

// keysetClauses expands "strictly after cursor in orders" into disjunctive
// normal form: for each key k, equality on the keys before k and a strict
// comparison on k.
func keysetClauses(orders []models.Order, cursor models.Document) [][]models.Predicate {
	orders = totalOrder(orders)
	clauses := make([][]models.Predicate, 0, len(orders))
	for k, o := range orders {
		clause := make([]models.Predicate, 0, k+1)
		for _, prev := range orders[:k] {
			v, _ := cursor.Value(prev.Field)
			clause = append(clause, models.Eq(prev.Field, v))
		}
		v, _ := cursor.Value(o.Field)
		op := models.OpGt
		if o.Desc {
			op = models.OpLt
		}
		clause = append(clause, models.Predicate{Field: o.Field, Op: op, Value: v})
		clauses = append(clauses, clause)
	}
	return clauses
}
