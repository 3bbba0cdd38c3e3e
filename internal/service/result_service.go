package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
)

// prefixSentinel sorts after every valid character, so [q, q+sentinel)
// holds exactly the strings starting with q.
var prefixSentinel = string(utf8.MaxRune)

// ResultListing is the results search payload.
type ResultListing struct {
	Results      []models.Document `json:"results"`
	LastVisible  *string           `json:"lastVisible"`
	HasMore      bool              `json:"hasMore"`
	TotalResults *int64            `json:"totalResults,omitempty"`
}

// ResultService implements the starts-with search over results.
type ResultService struct {
	store       DocumentStore
	logger      *zap.Logger
	defaultSize int
	maxSize     int
}

// NewResultService constructs the service.
func NewResultService(store DocumentStore, logger *zap.Logger, defaultSize, maxSize int) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultSize <= 0 {
		defaultSize = 30
	}
	return &ResultService{store: store, logger: logger, defaultSize: defaultSize, maxSize: maxSize}
}

// Search pages through results whose student identifier (numeric queries) or
// lower-cased name starts with the query.
func (s *ResultService) Search(ctx context.Context, search models.ResultSearch) (*ResultListing, error) {
	query := SearchQuery(search.Query)
	query.Limit = clampLimit(search.Limit, s.defaultSize, s.maxSize)

	page, err := fetchCursorPage(ctx, s.store, cursorRequest{
		collection:   models.CollectionResults,
		query:        query,
		startAfterID: search.StartAfterID,
		withTotal:    true,
		failure:      "Failed to fetch results",
	})
	if err != nil {
		s.logger.Warn("results search failed", zap.String("q", search.Query), zap.Error(err))
		return nil, err
	}
	return &ResultListing{
		Results:      page.Documents,
		LastVisible:  page.LastVisible,
		HasMore:      page.HasMore,
		TotalResults: page.Total,
	}, nil
}

// SearchQuery builds the store query for a free-text results lookup. An empty
// query lists every result by name.
func SearchQuery(q string) models.Query {
	q = strings.TrimSpace(q)
	if isNumeric(q) {
		return models.Query{
			Predicates: prefixRange(models.ResultFieldStudentID, q),
			OrderBy:    []models.Order{{Field: models.ResultFieldStudentID}},
		}
	}
	query := models.Query{
		OrderBy: []models.Order{
			{Field: models.ResultFieldNameLower},
			{Field: models.FieldCreatedAt, Desc: true},
		},
	}
	if q != "" {
		query.Predicates = prefixRange(models.ResultFieldNameLower, strings.ToLower(q))
	}
	return query
}

func prefixRange(field, prefix string) []models.Predicate {
	return []models.Predicate{
		{Field: field, Op: models.OpGte, Value: prefix},
		{Field: field, Op: models.OpLt, Value: prefix + prefixSentinel},
	}
}

func isNumeric(q string) bool {
	if q == "" {
		return false
	}
	for _, r := range q {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
