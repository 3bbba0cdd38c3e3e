package listing

import (
	"sort"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
)

// bucket orders the date classes: today, tomorrow, later, past.
type bucket int

const (
	bucketToday bucket = iota
	bucketTomorrow
	bucketFuture
	bucketPast
)

// Rank sorts documents in place: today first, then tomorrow, then later
// dates ascending, then past dates descending. Equal dates keep their input
// order.
func Rank(docs []models.Document, ref Reference) []models.Document {
	today := ref.TodayString()
	tomorrow := ref.TomorrowString()

	dates := make([]string, len(docs))
	for i := range docs {
		dates[i] = docs[i].String(models.LectureFieldDate)
	}

	sort.Stable(&ranking{docs: docs, dates: dates, today: today, tomorrow: tomorrow})
	return docs
}

type ranking struct {
	docs     []models.Document
	dates    []string
	today    string
	tomorrow string
}

func (r *ranking) Len() int { return len(r.docs) }

func (r *ranking) Swap(i, j int) {
	r.docs[i], r.docs[j] = r.docs[j], r.docs[i]
	r.dates[i], r.dates[j] = r.dates[j], r.dates[i]
}

func (r *ranking) Less(i, j int) bool {
	a, b := r.dates[i], r.dates[j]
	ba, bb := r.classify(a), r.classify(b)
	if ba != bb {
		return ba < bb
	}
	switch ba {
	case bucketFuture:
		return a < b
	case bucketPast:
		return a > b
	default:
		return false
	}
}

func (r *ranking) classify(date string) bucket {
	switch {
	case date == r.today:
		return bucketToday
	case date == r.tomorrow:
		return bucketTomorrow
	case date > r.today:
		return bucketFuture
	default:
		return bucketPast
	}
}
