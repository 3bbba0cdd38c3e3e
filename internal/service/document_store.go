package service

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/repository"
)

// DocumentStore is the queryable collection abstraction every backend
// implements.
type DocumentStore interface {
	Find(ctx context.Context, collection string, query models.Query) ([]models.Document, error)
	Count(ctx context.Context, collection string, predicates []models.Predicate) (int64, error)
	Get(ctx context.Context, collection, id string) (*models.Document, error)
	Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
	Merge(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
}

// InstrumentedStore records the latency and failures of every store call.
type InstrumentedStore struct {
	next    DocumentStore
	metrics *MetricsService
}

// NewInstrumentedStore wraps next with metrics.
func NewInstrumentedStore(next DocumentStore, metrics *MetricsService) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: metrics}
}

func (s *InstrumentedStore) Find(ctx context.Context, collection string, query models.Query) ([]models.Document, error) {
	start := time.Now()
	docs, err := s.next.Find(ctx, collection, query)
	s.metrics.ObserveStoreQuery(collection, "find", time.Since(start), err)
	return docs, err
}

func (s *InstrumentedStore) Count(ctx context.Context, collection string, predicates []models.Predicate) (int64, error) {
	start := time.Now()
	n, err := s.next.Count(ctx, collection, predicates)
	s.metrics.ObserveStoreQuery(collection, "count", time.Since(start), err)
	return n, err
}

func (s *InstrumentedStore) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	start := time.Now()
	doc, err := s.next.Get(ctx, collection, id)
	observed := err
	if errors.Is(err, repository.ErrDocumentNotFound) {
		observed = nil
	}
	s.metrics.ObserveStoreQuery(collection, "get", time.Since(start), observed)
	return doc, err
}

func (s *InstrumentedStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	start := time.Now()
	id, err := s.next.Create(ctx, collection, fields)
	s.metrics.ObserveStoreQuery(collection, "create", time.Since(start), err)
	return id, err
}

func (s *InstrumentedStore) Merge(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	start := time.Now()
	err := s.next.Merge(ctx, collection, id, fields)
	s.metrics.ObserveStoreQuery(collection, "merge", time.Since(start), err)
	return err
}

func (s *InstrumentedStore) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, collection, id)
	s.metrics.ObserveStoreQuery(collection, "delete", time.Since(start), err)
	return err
}
