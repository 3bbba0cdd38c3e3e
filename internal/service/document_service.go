package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/abs-dashboard-api/internal/listing"
	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/abs-dashboard-api/pkg/errors"
)

const (
	cacheKeyAnnouncements = "list:" + models.CollectionAnnouncements
	cacheKeyBanners       = "list:" + models.CollectionBanners
)

// collectionRules captures the per-collection write rules.
type collectionRules struct {
	entity string
	// cacheKey is invalidated on every write when set.
	cacheKey      string
	prepareCreate func(s *DocumentService, fields map[string]interface{}, now time.Time) error
	prepareMerge  func(s *DocumentService, fields map[string]interface{}) error
}

var rulesByCollection = map[string]collectionRules{
	models.CollectionStudents: {
		entity: "Student",
	},
	models.CollectionLectures: {
		entity:        "Lecture",
		prepareCreate: func(s *DocumentService, f map[string]interface{}, _ time.Time) error { return s.prepareLecture(f, true) },
		prepareMerge:  func(s *DocumentService, f map[string]interface{}) error { return s.prepareLecture(f, false) },
	},
	models.CollectionAnnouncements: {
		entity:   "Announcement",
		cacheKey: cacheKeyAnnouncements,
	},
	models.CollectionBanners: {
		entity:   "Banner",
		cacheKey: cacheKeyBanners,
		prepareCreate: func(_ *DocumentService, f map[string]interface{}, now time.Time) error {
			if _, ok := f["importedAt"]; !ok {
				f["importedAt"] = now
			}
			if _, ok := f["importedBy"]; !ok {
				f["importedBy"] = "dashboard"
			}
			return nil
		},
	},
	models.CollectionResults: {
		entity:        "Result",
		prepareCreate: func(s *DocumentService, f map[string]interface{}, _ time.Time) error { return s.prepareResult(f, true) },
		prepareMerge:  func(s *DocumentService, f map[string]interface{}) error { return s.prepareResult(f, false) },
	},
}

// StudentListing is the students cursor page payload.
type StudentListing struct {
	Students      []models.Document `json:"students"`
	LastVisible   *string           `json:"lastVisible"`
	HasMore       bool              `json:"hasMore"`
	TotalStudents *int64            `json:"totalStudents,omitempty"`
}

// BackfillReport summarises a createdAt back-fill run.
type BackfillReport struct {
	Collection string `json:"collection"`
	Updated    int    `json:"updated"`
	Total      int    `json:"total"`
}

// DocumentService implements the plain CRUD surface shared by every
// dashboard collection plus the students cursor listing and the cached
// announcement and banner lists.
type DocumentService struct {
	store       DocumentStore
	cache       *CacheService
	validate    *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
	defaultSize int
	maxSize     int
}

// DocumentServiceConfig tunes the students cursor page size.
type DocumentServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// NewDocumentService constructs the service.
func NewDocumentService(store DocumentStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 30
	}
	return &DocumentService{
		store:       store,
		cache:       cache,
		validate:    validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		defaultSize: cfg.DefaultPageSize,
		maxSize:     cfg.MaxPageSize,
	}
}

// Create stores a new document stamped with the server createdAt.
func (s *DocumentService) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	rules, err := s.rules(collection)
	if err != nil {
		return "", err
	}
	payload := models.CloneFields(fields)
	now := s.now()
	payload[models.FieldCreatedAt] = now
	if rules.prepareCreate != nil {
		if err := rules.prepareCreate(s, payload, now); err != nil {
			return "", err
		}
	}

	id, err := s.store.Create(ctx, collection, payload)
	if err != nil {
		s.logger.Error("create document failed", zap.String("collection", collection), zap.Error(err))
		return "", appErrors.FromStore(err, fmt.Sprintf("Failed to create %s", strings.ToLower(rules.entity)))
	}
	s.invalidate(ctx, rules)
	return id, nil
}

// Update merges fields into the document, creating it when missing.
func (s *DocumentService) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	rules, err := s.rules(collection)
	if err != nil {
		return err
	}
	payload := models.CloneFields(fields)
	if rules.prepareMerge != nil {
		if err := rules.prepareMerge(s, payload); err != nil {
			return err
		}
	}
	if err := s.store.Merge(ctx, collection, id, payload); err != nil {
		s.logger.Error("merge document failed", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return appErrors.FromStore(err, fmt.Sprintf("Failed to update %s", strings.ToLower(rules.entity)))
	}
	s.invalidate(ctx, rules)
	return nil
}

// Delete removes a document. Missing documents are not reported.
func (s *DocumentService) Delete(ctx context.Context, collection, id string) error {
	rules, err := s.rules(collection)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, collection, id); err != nil {
		s.logger.Error("delete document failed", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return appErrors.FromStore(err, fmt.Sprintf("Failed to delete %s", strings.ToLower(rules.entity)))
	}
	s.invalidate(ctx, rules)
	return nil
}

// Get fetches a single document.
func (s *DocumentService) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	rules, err := s.rules(collection)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, rules.entity+" not found")
		}
		return nil, appErrors.FromStore(err, fmt.Sprintf("Failed to fetch %s", strings.ToLower(rules.entity)))
	}
	return doc, nil
}

// ListStudents returns a keyset page ordered newest first, then by name.
func (s *DocumentService) ListStudents(ctx context.Context, limit int, startAfterID string) (*StudentListing, error) {
	page, err := fetchCursorPage(ctx, s.store, cursorRequest{
		collection: models.CollectionStudents,
		query: models.Query{
			OrderBy: []models.Order{
				{Field: models.FieldCreatedAt, Desc: true},
				{Field: models.StudentFieldName},
			},
			Limit: clampLimit(limit, s.defaultSize, s.maxSize),
		},
		startAfterID: startAfterID,
		withTotal:    true,
		failure:      "Failed to fetch students",
	})
	if err != nil {
		return nil, err
	}
	return &StudentListing{
		Students:      page.Documents,
		LastVisible:   page.LastVisible,
		HasMore:       page.HasMore,
		TotalStudents: page.Total,
	}, nil
}

// ListAnnouncements returns every announcement.
func (s *DocumentService) ListAnnouncements(ctx context.Context) ([]models.Document, error) {
	return s.cachedList(ctx, models.CollectionAnnouncements, cacheKeyAnnouncements, models.Query{}, "Failed to fetch announcements")
}

// ListBanners returns every banner by display order.
func (s *DocumentService) ListBanners(ctx context.Context) ([]models.Document, error) {
	query := models.Query{OrderBy: []models.Order{{Field: models.BannerFieldOrder}}}
	return s.cachedList(ctx, models.CollectionBanners, cacheKeyBanners, query, "Failed to fetch banners")
}

// BackfillCreatedAt stamps createdAt on every document of collection that
// lacks it.
func (s *DocumentService) BackfillCreatedAt(ctx context.Context, collection string) (*BackfillReport, error) {
	rules, err := s.rules(collection)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Count(ctx, collection, nil)
	if err != nil {
		return nil, appErrors.FromStore(err, "Failed to count "+collection)
	}
	missing, err := s.store.Find(ctx, collection, models.Query{
		Predicates: []models.Predicate{{Field: models.FieldCreatedAt, Op: models.OpMissing}},
	})
	if err != nil {
		return nil, appErrors.FromStore(err, "Failed to scan "+collection)
	}

	report := &BackfillReport{Collection: collection, Total: int(total)}
	for _, doc := range missing {
		stamp := map[string]interface{}{models.FieldCreatedAt: s.now()}
		if err := s.store.Merge(ctx, collection, doc.ID, stamp); err != nil {
			s.logger.Error("backfill createdAt failed", zap.String("collection", collection), zap.String("id", doc.ID), zap.Error(err))
			return report, appErrors.FromStore(err, "Failed to back-fill "+collection)
		}
		report.Updated++
	}
	s.invalidate(ctx, rules)
	s.logger.Info("back-filled createdAt",
		zap.String("collection", collection),
		zap.Int("updated", report.Updated),
		zap.Int("total", report.Total))
	return report, nil
}

func (s *DocumentService) cachedList(ctx context.Context, collection, key string, query models.Query, failure string) ([]models.Document, error) {
	var cached []models.Document
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}
	docs, err := s.store.Find(ctx, collection, query)
	if err != nil {
		s.logger.Error("list documents failed", zap.String("collection", collection), zap.Error(err))
		return nil, appErrors.FromStore(err, failure)
	}
	_ = s.cache.Set(ctx, key, docs, 0)
	return docs, nil
}

func (s *DocumentService) invalidate(ctx context.Context, rules collectionRules) {
	if rules.cacheKey == "" {
		return
	}
	_ = s.cache.Invalidate(ctx, rules.cacheKey)
}

func (s *DocumentService) rules(collection string) (collectionRules, error) {
	rules, ok := rulesByCollection[collection]
	if !ok {
		return collectionRules{}, appErrors.Clone(appErrors.ErrNotFound, "unknown collection "+collection)
	}
	return rules, nil
}

// prepareLecture validates the date and stores mode in its canonical form so
// it matches the normalised listing filter.
func (s *DocumentService) prepareLecture(fields map[string]interface{}, create bool) error {
	raw, present := fields[models.LectureFieldDate]
	if create || present {
		date, _ := raw.(string)
		if err := s.validate.Var(date, "required,datetime="+models.DateLayout); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "date must be a YYYY-MM-DD calendar date")
		}
	}
	if mode, ok := fields[models.LectureFieldMode].(string); ok && mode != "" {
		fields[models.LectureFieldMode] = listing.NormalizeMode(mode)
	}
	return nil
}

type resultInput struct {
	Name string `validate:"required"`
}

// prepareResult derives the lower-cased search key from name.
func (s *DocumentService) prepareResult(fields map[string]interface{}, create bool) error {
	raw, present := fields[models.ResultFieldName]
	name, _ := raw.(string)
	if create || present {
		if err := s.validate.Struct(resultInput{Name: strings.TrimSpace(name)}); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "name is required")
		}
	}
	if present {
		fields[models.ResultFieldNameLower] = strings.ToLower(name)
	}
	return nil
}
