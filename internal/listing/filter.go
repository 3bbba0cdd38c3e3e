package listing

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
)

// Compile turns request filters into a conjunctive predicate set. Unknown or
// malformed values never fail; they simply add no constraint.
func Compile(filter models.LectureFilter, ref Reference) []models.Predicate {
	var predicates []models.Predicate

	if active(filter.Course) {
		predicates = append(predicates, models.Eq(models.LectureFieldCourse, filter.Course))
	}
	if active(filter.Faculty) {
		predicates = append(predicates, models.Eq(models.LectureFieldFaculty, filter.Faculty))
	}
	if active(filter.Branch) {
		predicates = append(predicates, models.Eq(models.LectureFieldBranch, filter.Branch))
	}
	if active(filter.Mode) {
		predicates = append(predicates, models.Eq(models.LectureFieldMode, NormalizeMode(filter.Mode)))
	}

	return append(predicates, datePredicates(filter, ref)...)
}

func datePredicates(filter models.LectureFilter, ref Reference) []models.Predicate {
	field := models.LectureFieldDate
	today := ref.TodayString()
	tomorrow := ref.TomorrowString()

	switch models.DateFilter(filter.DateFilter) {
	case models.DateFilterToday:
		return []models.Predicate{models.Eq(field, today)}
	case models.DateFilterTomorrow:
		return []models.Predicate{models.Eq(field, tomorrow)}
	case models.DateFilterPrevious:
		return []models.Predicate{{Field: field, Op: models.OpLt, Value: today}}
	case models.DateFilterUpcoming:
		return []models.Predicate{{Field: field, Op: models.OpGte, Value: tomorrow}}
	case models.DateFilterThisWeek:
		start := ref.WeekStart()
		return models.Range(field, start.Format(models.DateLayout), start.AddDate(0, 0, 6).Format(models.DateLayout))
	case models.DateFilterNextWeek:
		start := ref.WeekStart().AddDate(0, 0, 7)
		return models.Range(field, start.Format(models.DateLayout), start.AddDate(0, 0, 6).Format(models.DateLayout))
	}

	if filter.StartDate != "" && filter.EndDate != "" {
		return models.Range(field, filter.StartDate, filter.EndDate)
	}
	return nil
}

// NormalizeMode maps client spellings ("online", "ONLINE") to the stored
// canonical form ("Online").
func NormalizeMode(mode string) string {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return mode
	}
	first, size := utf8.DecodeRuneInString(mode)
	return string(unicode.ToUpper(first)) + strings.ToLower(mode[size:])
}

func active(value string) bool {
	return value != "" && value != models.FilterAll
}
