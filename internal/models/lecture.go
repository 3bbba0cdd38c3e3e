package models

// Lecture fields used by filtering and ranking.
const (
	LectureFieldDate    = "date"
	LectureFieldCourse  = "course"
	LectureFieldFaculty = "faculty"
	LectureFieldBranch  = "branch"
	LectureFieldMode    = "mode"
)

// DateLayout is the calendar date format stored in the date field.
const DateLayout = "2006-01-02"

// FilterAll is the sentinel meaning "no constraint" for equality filters.
const FilterAll = "all"

// DateFilter names a relative date-shape constraint.
type DateFilter string

const (
	DateFilterToday    DateFilter = "today"
	DateFilterTomorrow DateFilter = "tomorrow"
	DateFilterPrevious DateFilter = "previous"
	DateFilterUpcoming DateFilter = "upcoming"
	DateFilterThisWeek DateFilter = "this_week"
	DateFilterNextWeek DateFilter = "next_week"
)

// LectureFilter carries the raw request-level listing parameters.
type LectureFilter struct {
	Course     string
	Faculty    string
	Branch     string
	Mode       string
	DateFilter string
	StartDate  string
	EndDate    string
	Page       int
	PageSize   int
}

// LecturePage is the listing response payload.
type LecturePage struct {
	Records     []Document `json:"records"`
	CurrentPage int        `json:"currentPage"`
	TotalCount  int        `json:"totalCount"`
	TotalPages  int        `json:"totalPages"`
	HasMore     bool       `json:"hasMore"`
	ServerDate  string     `json:"serverDate"`
}
