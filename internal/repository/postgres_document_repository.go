package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
)

// PostgresDocumentRepository keeps every collection in the shared documents
// table, one JSONB payload per row. createdAt lives in its own column so the
// students listing can use an index.
type PostgresDocumentRepository struct {
	db *sqlx.DB
}

type documentRow struct {
	ID        string       `db:"id"`
	Data      []byte       `db:"data"`
	CreatedAt sql.NullTime `db:"created_at"`
}

// NewPostgresDocumentRepository constructs the repository.
func NewPostgresDocumentRepository(db *sqlx.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{db: db}
}

// Find returns the documents matching query.
func (r *PostgresDocumentRepository) Find(ctx context.Context, collection string, query models.Query) ([]models.Document, error) {
	args := []interface{}{collection}
	conditions := []string{"collection = $1"}

	where, args, err := sqlPredicates(query.Predicates, args)
	if err != nil {
		return nil, &StoreError{Op: "find", Collection: collection, Code: "INVALID_ARGUMENT", Err: err}
	}
	conditions = append(conditions, where...)

	if query.StartAfter != nil {
		clauses := keysetClauses(query.OrderBy, *query.StartAfter)
		ors := make([]string, 0, len(clauses))
		for _, clause := range clauses {
			var parts []string
			parts, args, err = sqlPredicates(clause, args)
			if err != nil {
				return nil, &StoreError{Op: "find", Collection: collection, Code: "INVALID_ARGUMENT", Err: err}
			}
			ors = append(ors, "("+strings.Join(parts, " AND ")+")")
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}

	stmt := fmt.Sprintf("SELECT id, data, created_at FROM documents WHERE %s", strings.Join(conditions, " AND "))
	if len(query.OrderBy) > 0 || query.StartAfter != nil {
		stmt += " ORDER BY " + sqlOrderBy(totalOrder(query.OrderBy))
	} else {
		stmt += " ORDER BY id"
	}
	if query.Limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", query.Limit)
	}

	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, postgresStoreError("find", collection, err)
	}

	docs := make([]models.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, &StoreError{Op: "find", Collection: collection, Code: "DATA_LOSS", Err: err}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Count returns the number of documents matching predicates.
func (r *PostgresDocumentRepository) Count(ctx context.Context, collection string, predicates []models.Predicate) (int64, error) {
	args := []interface{}{collection}
	conditions := []string{"collection = $1"}
	where, args, err := sqlPredicates(predicates, args)
	if err != nil {
		return 0, &StoreError{Op: "count", Collection: collection, Code: "INVALID_ARGUMENT", Err: err}
	}
	conditions = append(conditions, where...)

	var total int64
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM documents WHERE %s", strings.Join(conditions, " AND "))
	if err := r.db.GetContext(ctx, &total, stmt, args...); err != nil {
		return 0, postgresStoreError("count", collection, err)
	}
	return total, nil
}

// Get fetches a document by identifier.
func (r *PostgresDocumentRepository) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	const stmt = `SELECT id, data, created_at FROM documents WHERE collection = $1 AND id = $2`
	var row documentRow
	if err := r.db.GetContext(ctx, &row, stmt, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, postgresStoreError("get", collection, err)
	}
	doc, err := row.document()
	if err != nil {
		return nil, &StoreError{Op: "get", Collection: collection, Code: "DATA_LOSS", Err: err}
	}
	return &doc, nil
}

// Create stores a new document under a generated identifier.
func (r *PostgresDocumentRepository) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	id := uuid.NewString()
	data, createdAt, err := splitCreatedAt(fields)
	if err != nil {
		return "", &StoreError{Op: "create", Collection: collection, Code: "INVALID_ARGUMENT", Err: err}
	}
	const stmt = `INSERT INTO documents (collection, id, data, created_at) VALUES ($1, $2, $3::jsonb, $4)`
	if _, err := r.db.ExecContext(ctx, stmt, collection, id, data, createdAt); err != nil {
		return "", postgresStoreError("create", collection, err)
	}
	return id, nil
}

// Merge sets the given fields, creating the document when it is missing.
func (r *PostgresDocumentRepository) Merge(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	data, createdAt, err := splitCreatedAt(fields)
	if err != nil {
		return &StoreError{Op: "merge", Collection: collection, Code: "INVALID_ARGUMENT", Err: err}
	}
	const stmt = `INSERT INTO documents (collection, id, data, created_at) VALUES ($1, $2, $3::jsonb, $4)
        ON CONFLICT (collection, id) DO UPDATE
        SET data = documents.data || EXCLUDED.data,
            created_at = COALESCE(EXCLUDED.created_at, documents.created_at)`
	if _, err := r.db.ExecContext(ctx, stmt, collection, id, data, createdAt); err != nil {
		return postgresStoreError("merge", collection, err)
	}
	return nil
}

// Delete removes a document; deleting a missing document is not an error.
func (r *PostgresDocumentRepository) Delete(ctx context.Context, collection, id string) error {
	const stmt = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, stmt, collection, id); err != nil {
		return postgresStoreError("delete", collection, err)
	}
	return nil
}

func (row documentRow) document() (models.Document, error) {
	fields := map[string]interface{}{}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &fields); err != nil {
			return models.Document{}, fmt.Errorf("decode document %s: %w", row.ID, err)
		}
	}
	if row.CreatedAt.Valid {
		fields[models.FieldCreatedAt] = row.CreatedAt.Time.UTC()
	}
	return models.Document{ID: row.ID, Fields: fields}, nil
}

// splitCreatedAt separates the createdAt column from the JSONB payload.
func splitCreatedAt(fields map[string]interface{}) ([]byte, interface{}, error) {
	payload := models.CloneFields(fields)
	var createdAt interface{}
	if raw, ok := payload[models.FieldCreatedAt]; ok {
		delete(payload, models.FieldCreatedAt)
		ts, err := asTime(raw)
		if err != nil {
			return nil, nil, err
		}
		if ts != nil {
			createdAt = *ts
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode document: %w", err)
	}
	return data, createdAt, nil
}

func asTime(v interface{}) (*time.Time, error) {
	switch typed := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		t := typed.UTC()
		return &t, nil
	case *time.Time:
		return typed, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, typed)
		if err != nil {
			return nil, fmt.Errorf("createdAt must be an RFC3339 timestamp: %w", err)
		}
		t = t.UTC()
		return &t, nil
	default:
		return nil, fmt.Errorf("createdAt has unsupported type %T", v)
	}
}

// sqlPredicates renders predicates against the documents table, appending
// their bind values to args.
func sqlPredicates(predicates []models.Predicate, args []interface{}) ([]string, []interface{}, error) {
	out := make([]string, 0, len(predicates))
	for _, p := range predicates {
		column, native := sqlColumn(p.Field)
		if p.Op == models.OpMissing {
			if native {
				out = append(out, column+" IS NULL")
			} else {
				out = append(out, fmt.Sprintf("(%s IS NULL OR %s = 'null'::jsonb)", column, column))
			}
			continue
		}
		op, err := sqlOperator(p.Op)
		if err != nil {
			return nil, nil, err
		}
		placeholder := fmt.Sprintf("$%d", len(args)+1)
		if text, ok := p.Value.(string); ok && !native && p.Op != models.OpEq {
			args = append(args, text)
			out = append(out, sqlStringRange(p.Field, op, placeholder))
			continue
		}
		if native {
			value := p.Value
			if p.Field == models.FieldCreatedAt {
				ts, err := asTime(p.Value)
				if err != nil {
					return nil, nil, err
				}
				value = ts
			}
			args = append(args, value)
		} else {
			encoded, err := json.Marshal(p.Value)
			if err != nil {
				return nil, nil, fmt.Errorf("encode %s: %w", p.Field, err)
			}
			args = append(args, string(encoded))
			placeholder += "::jsonb"
		}
		out = append(out, fmt.Sprintf("%s %s %s", column, op, placeholder))
	}
	return out, args, nil
}

// sqlOrderBy orders JSONB members by their JSONB type bracket first and then
// orders strings bytewise, matching sqlStringRange.
func sqlOrderBy(orders []models.Order) string {
	parts := make([]string, 0, len(orders)*2)
	for _, o := range orders {
		dir := " ASC NULLS FIRST"
		if o.Desc {
			dir = " DESC NULLS LAST"
		}
		column, native := sqlColumn(o.Field)
		if native {
			parts = append(parts, column+dir)
			continue
		}
		parts = append(parts,
			fmt.Sprintf(`CASE WHEN jsonb_typeof(%s) = 'string' THEN '""'::jsonb ELSE %s END`, column, column)+dir,
			fmt.Sprintf(`(CASE WHEN jsonb_typeof(%s) = 'string' THEN %s END) COLLATE "C"`, column, sqlText(o.Field))+dir,
		)
	}
	return strings.Join(parts, ", ")
}

// sqlStringRange compares a JSONB member against a string bound. Strings are
// compared under the "C" collation so prefix bounds hold whatever the database
// default is; members of other JSONB types keep their bracket position
// relative to strings.
func sqlStringRange(field, op, placeholder string) string {
	column, _ := sqlColumn(field)
	return fmt.Sprintf(`(jsonb_typeof(%[1]s) = 'string' AND %[2]s COLLATE "C" %[3]s %[4]s OR jsonb_typeof(%[1]s) <> 'string' AND %[1]s %[3]s '""'::jsonb)`,
		column, sqlText(field), op, placeholder)
}

func sqlText(field string) string {
	return "(data->>" + pq.QuoteLiteral(field) + ")"
}

// sqlColumn maps a document field to its SQL expression. native reports
// whether the field is a real column rather than a JSONB member.
func sqlColumn(field string) (string, bool) {
	switch field {
	case models.FieldID:
		return "id", true
	case models.FieldCreatedAt:
		return "created_at", true
	default:
		return "data->" + pq.QuoteLiteral(field), false
	}
}

func sqlOperator(op models.Operator) (string, error) {
	switch op {
	case models.OpEq:
		return "=", nil
	case models.OpLt, models.OpLte, models.OpGt, models.OpGte:
		return string(op), nil
	default:
		return "", fmt.Errorf("unsupported operator %q", op)
	}
}

func postgresStoreError(op, collection string, err error) error {
	storeErr := &StoreError{Op: op, Collection: collection, Err: err}
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pqErr):
		storeErr.Code = string(pqErr.Code)
	case errors.Is(err, context.DeadlineExceeded):
		storeErr.Code = "DEADLINE_EXCEEDED"
	case errors.Is(err, context.Canceled):
		storeErr.Code = "CANCELLED"
	}
	return storeErr
}
