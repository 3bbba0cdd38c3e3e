package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/abs-dashboard-api/pkg/errors"
)

// cursorRequest describes one keyset page over a natively ordered query.
type cursorRequest struct {
	collection   string
	query        models.Query
	startAfterID string
	// withTotal asks for a total count alongside first pages.
	withTotal bool
	failure   string
}

// fetchCursorPage resumes query after startAfterID and, for first pages,
// counts the matching set concurrently. The count and the page are separate
// reads and may disagree under concurrent writes.
func fetchCursorPage(ctx context.Context, store DocumentStore, req cursorRequest) (*models.CursorPage, error) {
	if req.startAfterID != "" {
		cursor, err := store.Get(ctx, req.collection, req.startAfterID)
		if err != nil {
			if errors.Is(err, repository.ErrDocumentNotFound) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "startAfterId not found")
			}
			return nil, appErrors.FromStore(err, req.failure)
		}
		req.query.StartAfter = cursor
	}

	var (
		docs  []models.Document
		total int64
	)
	countFirst := req.withTotal && req.startAfterID == ""

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = store.Find(gctx, req.collection, req.query)
		return err
	})
	if countFirst {
		g.Go(func() error {
			var err error
			total, err = store.Count(gctx, req.collection, req.query.Predicates)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, appErrors.FromStore(err, req.failure)
	}

	if docs == nil {
		docs = []models.Document{}
	}
	page := &models.CursorPage{
		Documents: docs,
		HasMore:   req.query.Limit > 0 && len(docs) == req.query.Limit,
	}
	if len(docs) > 0 {
		last := docs[len(docs)-1].ID
		page.LastVisible = &last
	}
	if countFirst {
		page.Total = &total
	}
	return page, nil
}

// clampLimit applies the default and ceiling to a requested page size.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}
