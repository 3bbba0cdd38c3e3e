package models

// Result fields used by the prefix search.
const (
	ResultFieldStudentID = "studentId"
	ResultFieldName      = "name"
	ResultFieldNameLower = "nameLower"
)

// ResultSearch describes a results lookup.
type ResultSearch struct {
	Query        string
	Limit        int
	StartAfterID string
}

// StudentFieldName is the secondary sort key of the students listing.
const StudentFieldName = "name"

// BannerFieldOrder is the display order of banners.
const BannerFieldOrder = "order"
