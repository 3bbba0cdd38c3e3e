package listing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/abs-dashboard-api/pkg/errors"
)

// CandidateSource is the queryable collection the engine reads from.
type CandidateSource interface {
	Find(ctx context.Context, collection string, query models.Query) ([]models.Document, error)
}

// Observer receives engine measurements; MetricsService implements it.
type Observer interface {
	ObserveCandidates(collection string, count int)
}

// Config tunes paging defaults and the candidate ceiling.
type Config struct {
	Collection      string
	DefaultPageSize int
	MaxPageSize     int
	// MaxCandidates bounds how many matches are loaded per request; 0 means
	// unbounded.
	MaxCandidates   int
	FailureMessage  string
}

// Engine lists a collection of dated records with compiled filters, the
// today/tomorrow/future/past ranking and offset paging. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	source   CandidateSource
	clock    *Clock
	cfg      Config
	observer Observer
	logger   *zap.Logger
}

// NewEngine constructs an engine over the given source.
func NewEngine(source CandidateSource, clock *Clock, cfg Config, observer Observer, logger *zap.Logger) *Engine {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 30
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	if cfg.FailureMessage == "" {
		cfg.FailureMessage = "Failed to fetch " + cfg.Collection
	}
	if clock == nil {
		clock = NewClock(0, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{source: source, clock: clock, cfg: cfg, observer: observer, logger: logger}
}

// List returns the requested page of the ranked candidate set.
func (e *Engine) List(ctx context.Context, filter models.LectureFilter) (*models.LecturePage, error) {
	ranked, ref, err := e.Ranked(ctx, filter)
	if err != nil {
		return nil, err
	}

	page, size := e.window(filter)
	w := Paginate(ranked, page, size)
	return &models.LecturePage{
		Records:     w.Records,
		CurrentPage: w.Page,
		TotalCount:  w.TotalCount,
		TotalPages:  w.TotalPages,
		HasMore:     w.HasMore,
		ServerDate:  ref.TodayString(),
	}, nil
}

// Ranked fetches every candidate matching the filter and returns them in
// ranking order together with the reference date used.
func (e *Engine) Ranked(ctx context.Context, filter models.LectureFilter) ([]models.Document, Reference, error) {
	ref := e.clock.Reference()
	query := models.Query{Predicates: Compile(filter, ref)}
	if e.cfg.MaxCandidates > 0 {
		query.Limit = e.cfg.MaxCandidates + 1
	}

	start := time.Now()
	candidates, err := e.source.Find(ctx, e.cfg.Collection, query)
	if err != nil {
		e.logger.Error("candidate fetch failed",
			zap.String("collection", e.cfg.Collection),
			zap.Int("predicates", len(query.Predicates)),
			zap.Error(err))
		return nil, ref, appErrors.FromStore(err, e.cfg.FailureMessage)
	}
	if e.cfg.MaxCandidates > 0 && len(candidates) > e.cfg.MaxCandidates {
		e.logger.Warn("candidate ceiling exceeded",
			zap.String("collection", e.cfg.Collection),
			zap.Int("max_candidates", e.cfg.MaxCandidates))
		return nil, ref, appErrors.ErrCandidateLimit
	}
	if e.observer != nil {
		e.observer.ObserveCandidates(e.cfg.Collection, len(candidates))
	}
	e.logger.Debug("candidates fetched",
		zap.String("collection", e.cfg.Collection),
		zap.Int("count", len(candidates)),
		zap.Duration("latency", time.Since(start)),
		zap.String("reference_date", ref.TodayString()))

	return Rank(candidates, ref), ref, nil
}

func (e *Engine) window(filter models.LectureFilter) (int, int) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = e.cfg.DefaultPageSize
	}
	if size > e.cfg.MaxPageSize {
		size = e.cfg.MaxPageSize
	}
	return page, size
}
