package models

// Collection names in the backing store.
const (
	CollectionStudents      = "students"
	CollectionLectures      = "lectures"
	CollectionAnnouncements = "announcements"
	CollectionBanners       = "banners"
	CollectionResults       = "results"
)

// Collections lists every collection the dashboard manages.
var Collections = []string{
	CollectionStudents,
	CollectionLectures,
	CollectionAnnouncements,
	CollectionBanners,
	CollectionResults,
}

// CursorPage is a keyset page over a natively ordered collection.
type CursorPage struct {
	Documents   []Document
	LastVisible *string
	HasMore     bool
	// Total is only computed for first pages.
	Total *int64
}
