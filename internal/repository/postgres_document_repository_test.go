package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
)

func newDocumentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPostgresDocumentRepositoryFindCompilesPredicates(t *testing.T) {
	db, mock, cleanup := newDocumentMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db)

	created := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "data", "created_at"}).
		AddRow("l1", []byte(`{"date":"2024-06-10","course":"MBA"}`), created).
		AddRow("l2", []byte(`{"date":"2024-06-12","course":"MBA"}`), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data, created_at FROM documents WHERE collection = $1 AND data->'course' = $2::jsonb AND " +
		`(jsonb_typeof(data->'date') = 'string' AND (data->>'date') COLLATE "C" >= $3 OR jsonb_typeof(data->'date') <> 'string' AND data->'date' >= '""'::jsonb)` +
		" ORDER BY id LIMIT 11")).
		WithArgs(models.CollectionLectures, `"MBA"`, "2024-06-10").
		WillReturnRows(rows)

	docs, err := repo.Find(context.Background(), models.CollectionLectures, models.Query{
		Predicates: []models.Predicate{models.Eq("course", "MBA"), {Field: "date", Op: models.OpGte, Value: "2024-06-10"}},
		Limit:      11,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "l1", docs[0].ID)
	assert.Equal(t, created, docs[0].Fields[models.FieldCreatedAt])
	assert.NotContains(t, docs[1].Fields, models.FieldCreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositoryFindKeyset(t *testing.T) {
	db, mock, cleanup := newDocumentMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db)

	cursorTime := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	cursor := models.NewDocument("s9", map[string]interface{}{"createdAt": cursorTime, "name": "Bala"})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data, created_at FROM documents WHERE collection = $1 AND ((created_at < $2) OR " +
		`(created_at = $3 AND (jsonb_typeof(data->'name') = 'string' AND (data->>'name') COLLATE "C" > $4 OR jsonb_typeof(data->'name') <> 'string' AND data->'name' > '""'::jsonb)) OR ` +
		"(created_at = $5 AND data->'name' = $6::jsonb AND id > $7)) ORDER BY created_at DESC NULLS LAST, " +
		`CASE WHEN jsonb_typeof(data->'name') = 'string' THEN '""'::jsonb ELSE data->'name' END ASC NULLS FIRST, ` +
		`(CASE WHEN jsonb_typeof(data->'name') = 'string' THEN (data->>'name') END) COLLATE "C" ASC NULLS FIRST, ` +
		"id ASC NULLS FIRST LIMIT 2")).
		WithArgs(models.CollectionStudents, sqlmock.AnyArg(), sqlmock.AnyArg(), "Bala", sqlmock.AnyArg(), `"Bala"`, "s9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data", "created_at"}))

	docs, err := repo.Find(context.Background(), models.CollectionStudents, models.Query{
		OrderBy:    []models.Order{{Field: models.FieldCreatedAt, Desc: true}, {Field: "name"}},
		StartAfter: &cursor,
		Limit:      2,
	})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositoryPrefixRangeComparesBytewise(t *testing.T) {
	db, mock, cleanup := newDocumentMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db)

	upper := "ab" + string(rune(0x10FFFF))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data, created_at FROM documents WHERE collection = $1 AND " +
		`(jsonb_typeof(data->'nameLower') = 'string' AND (data->>'nameLower') COLLATE "C" >= $2 OR jsonb_typeof(data->'nameLower') <> 'string' AND data->'nameLower' >= '""'::jsonb) AND ` +
		`(jsonb_typeof(data->'nameLower') = 'string' AND (data->>'nameLower') COLLATE "C" < $3 OR jsonb_typeof(data->'nameLower') <> 'string' AND data->'nameLower' < '""'::jsonb)` +
		" ORDER BY id")).
		WithArgs(models.CollectionResults, "ab", upper).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data", "created_at"}).
			AddRow("r1", []byte(`{"nameLower":"abdul"}`), nil))

	docs, err := repo.Find(context.Background(), models.CollectionResults, models.Query{
		Predicates: []models.Predicate{
			{Field: "nameLower", Op: models.OpGte, Value: "ab"},
			{Field: "nameLower", Op: models.OpLt, Value: upper},
		},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "abdul", docs[0].String("nameLower"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositoryGetNotFound(t *testing.T) {
	db, mock, cleanup := newDocumentMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db)

	mock.ExpectQuery("SELECT id, data, created_at FROM documents WHERE collection = \\$1 AND id = \\$2").
		WithArgs(models.CollectionStudents, "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), models.CollectionStudents, "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositoryCreateSplitsCreatedAt(t *testing.T) {
	db, mock, cleanup := newDocumentMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db)

	created := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO documents").
		WithArgs(models.CollectionStudents, sqlmock.AnyArg(), []byte(`{"name":"Asha"}`), created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Create(context.Background(), models.CollectionStudents, map[string]interface{}{
		"name":      "Asha",
		"createdAt": created,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositoryMergeUpserts(t *testing.T) {
	db, mock, cleanup := newDocumentMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db)

	mock.ExpectExec("INSERT INTO documents .* ON CONFLICT \\(collection, id\\) DO UPDATE").
		WithArgs(models.CollectionBanners, "b1", []byte(`{"order":2}`), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Merge(context.Background(), models.CollectionBanners, "b1", map[string]interface{}{"order": 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentRepositoryPropagatesDriverCode(t *testing.T) {
	db, mock, cleanup := newDocumentMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(models.CollectionLectures).
		WillReturnError(&pq.Error{Code: "57014", Message: "canceling statement due to statement timeout"})

	_, err := repo.Count(context.Background(), models.CollectionLectures, nil)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "57014", storeErr.StoreCode())
	assert.Equal(t, "count", storeErr.Op)
}

func TestPostgresDocumentRepositoryRejectsBadCreatedAt(t *testing.T) {
	db, _, cleanup := newDocumentMock(t)
	defer cleanup()
	repo := NewPostgresDocumentRepository(db)

	_, err := repo.Create(context.Background(), models.CollectionStudents, map[string]interface{}{"createdAt": "yesterday"})
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "INVALID_ARGUMENT", storeErr.Code)
}
