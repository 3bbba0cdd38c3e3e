package listing

import "github.com/noah-isme/abs-dashboard-api/internal/models"

// Window is one offset page of an already ranked sequence.
type Window struct {
	Records    []models.Document
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
	HasMore    bool
}

// Paginate slices ranked into the 1-based page. Out-of-range pages return an
// empty slice, never an error. page and pageSize must be positive.
func Paginate(ranked []models.Document, page, pageSize int) Window {
	total := len(ranked)
	w := Window{
		Records:    []models.Document{},
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	// page < TotalPages is page*pageSize < total without the overflow.
	w.HasMore = page < w.TotalPages

	if page-1 >= w.TotalPages {
		return w
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	w.Records = ranked[start:end]
	return w
}
