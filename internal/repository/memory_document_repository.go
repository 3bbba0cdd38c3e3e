package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
)

// MemoryDocumentRepository keeps collections in process memory. It backs the
// demo mode and tests; Find returns documents in insertion order unless an
// ordering is requested.
type MemoryDocumentRepository struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	docs  map[string]models.Document
	order []string
}

// NewMemoryDocumentRepository constructs an empty in-memory store.
func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{collections: make(map[string]*memoryCollection)}
}

// Seed loads `<collection>.json` fixtures from dir. A fixture is either an
// array of documents or an object holding the array under the collection
// name (the shape the legacy list endpoints returned).
func (r *MemoryDocumentRepository) Seed(dir string, collections []string) (int, error) {
	loaded := 0
	for _, name := range collections {
		raw, err := os.ReadFile(filepath.Join(dir, name+".json"))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return loaded, fmt.Errorf("read %s fixture: %w", name, err)
		}
		docs, err := decodeFixture(raw, name)
		if err != nil {
			return loaded, fmt.Errorf("decode %s fixture: %w", name, err)
		}
		r.mu.Lock()
		col := r.collection(name)
		for _, doc := range docs {
			if doc.ID == "" {
				doc.ID = uuid.NewString()
			}
			col.put(doc)
			loaded++
		}
		r.mu.Unlock()
	}
	return loaded, nil
}

func decodeFixture(raw []byte, name string) ([]models.Document, error) {
	var docs []models.Document
	if err := json.Unmarshal(raw, &docs); err == nil {
		return docs, nil
	}
	var wrapped map[string][]models.Document
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped[name], nil
}

// Find returns the documents matching query.
func (r *MemoryDocumentRepository) Find(ctx context.Context, collection string, query models.Query) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StoreError{Op: "find", Collection: collection, Code: "CANCELLED", Err: err}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	col, ok := r.collections[collection]
	if !ok {
		return []models.Document{}, nil
	}

	matched := make([]models.Document, 0, len(col.order))
	for _, id := range col.order {
		doc := col.docs[id]
		if matchesAll(doc, query.Predicates) {
			matched = append(matched, doc)
		}
	}

	if len(query.OrderBy) > 0 || query.StartAfter != nil {
		orders := totalOrder(query.OrderBy)
		sort.SliceStable(matched, func(i, j int) bool {
			return compareByOrder(matched[i], matched[j], orders) < 0
		})
		if query.StartAfter != nil {
			cursor := *query.StartAfter
			idx := sort.Search(len(matched), func(i int) bool {
				return compareByOrder(matched[i], cursor, orders) > 0
			})
			matched = matched[idx:]
		}
	}

	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	out := make([]models.Document, len(matched))
	for i, doc := range matched {
		out[i] = models.NewDocument(doc.ID, doc.Fields)
	}
	return out, nil
}

// Count returns the number of documents matching predicates.
func (r *MemoryDocumentRepository) Count(ctx context.Context, collection string, predicates []models.Predicate) (int64, error) {
	docs, err := r.Find(ctx, collection, models.Query{Predicates: predicates})
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Get fetches a document by identifier.
func (r *MemoryDocumentRepository) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	col, ok := r.collections[collection]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	doc, ok := col.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	clone := models.NewDocument(doc.ID, doc.Fields)
	return &clone, nil
}

// Create stores a new document under a generated identifier.
func (r *MemoryDocumentRepository) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collection(collection).put(models.NewDocument(id, fields))
	return id, nil
}

// Merge sets the given fields, creating the document when it is missing.
func (r *MemoryDocumentRepository) Merge(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	col := r.collection(collection)
	doc, ok := col.docs[id]
	if !ok {
		col.put(models.NewDocument(id, fields))
		return nil
	}
	merged := models.NewDocument(id, doc.Fields)
	for k, v := range models.CloneFields(fields) {
		merged.Fields[k] = v
	}
	col.docs[id] = merged
	return nil
}

// Delete removes a document; deleting a missing document is not an error.
func (r *MemoryDocumentRepository) Delete(ctx context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	col, ok := r.collections[collection]
	if !ok {
		return nil
	}
	if _, ok := col.docs[id]; !ok {
		return nil
	}
	delete(col.docs, id)
	for i, existing := range col.order {
		if existing == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryDocumentRepository) collection(name string) *memoryCollection {
	col, ok := r.collections[name]
	if !ok {
		col = &memoryCollection{docs: make(map[string]models.Document)}
		r.collections[name] = col
	}
	return col
}

func (c *memoryCollection) put(doc models.Document) {
	if _, exists := c.docs[doc.ID]; !exists {
		c.order = append(c.order, doc.ID)
	}
	c.docs[doc.ID] = doc
}

func matchesAll(doc models.Document, predicates []models.Predicate) bool {
	for _, p := range predicates {
		if !matches(doc, p) {
			return false
		}
	}
	return true
}

func matches(doc models.Document, p models.Predicate) bool {
	v, ok := doc.Value(p.Field)
	if p.Op == models.OpMissing {
		return !ok || v == nil
	}
	if !ok {
		return false
	}
	cmp, comparable := compareValues(v, p.Value)
	if !comparable {
		return false
	}
	switch p.Op {
	case models.OpEq:
		return cmp == 0
	case models.OpLt:
		return cmp < 0
	case models.OpLte:
		return cmp <= 0
	case models.OpGt:
		return cmp > 0
	case models.OpGte:
		return cmp >= 0
	default:
		return false
	}
}

func compareByOrder(a, b models.Document, orders []models.Order) int {
	for _, o := range orders {
		av, _ := a.Value(o.Field)
		bv, _ := b.Value(o.Field)
		cmp := sortCompare(av, bv)
		if o.Desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp
		}
	}
	return 0
}

// sortCompare orders mixed types the way document stores do: missing, then
// numbers, strings, booleans, timestamps.
func sortCompare(a, b interface{}) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	cmp, _ := compareValues(a, b)
	return cmp
}

func typeRank(v interface{}) int {
	switch normalizeScalar(v).(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	case bool:
		return 3
	case time.Time:
		return 4
	default:
		return 5
	}
}

// compareValues compares two scalars of the same kind. The second result is
// false when the kinds differ.
func compareValues(a, b interface{}) (int, bool) {
	a, b = normalizeScalar(a), normalizeScalar(b)
	switch av := a.(type) {
	case nil:
		return 0, b == nil
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	default:
		return 0, false
	}
}

func normalizeScalar(v interface{}) interface{} {
	switch typed := v.(type) {
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float32:
		return float64(typed)
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return typed.String()
		}
		return f
	case *time.Time:
		if typed == nil {
			return nil
		}
		return *typed
	default:
		return v
	}
}
