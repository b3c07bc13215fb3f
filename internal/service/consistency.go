package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/task-tracker-api/internal/models"
)

// FormatRatio renders submitted/span as a one-decimal percentage. An empty span yields models.ZeroRatio.
func FormatRatio(submitted, span int) string {
	if span <= 0 {
		return models.ZeroRatio
	}
	return fmt.Sprintf("%.1f%%", float64(submitted)*100/float64(span))
}

// SpanConsistency measures consistency from the first to the last submitted day.
// days may be unsorted and contain duplicates.
func SpanConsistency(days []string) (models.ConsistencySnapshot, error) {
	distinct := distinctSorted(days)
	if len(distinct) == 0 {
		return models.ConsistencySnapshot{ConsistencyRatio: models.ZeroRatio}, nil
	}
	span, err := models.DaySpan(distinct[0], distinct[len(distinct)-1])
	if err != nil {
		return models.ConsistencySnapshot{}, err
	}
	submitted := len(distinct)
	return models.ConsistencySnapshot{
		ActiveDaySpan:    span,
		SubmittedDays:    submitted,
		MissedDays:       span - submitted,
		ConsistencyRatio: FormatRatio(submitted, span),
	}, nil
}

// CalendarConsistency measures consistency against designated task days. Submissions on
// days outside the calendar are ignored so missed days never go negative.
func CalendarConsistency(taskDays, days []string) models.ConsistencySnapshot {
	calendar := make(map[string]struct{}, len(taskDays))
	for _, day := range taskDays {
		calendar[day] = struct{}{}
	}
	submitted := 0
	for _, day := range distinctSorted(days) {
		if _, ok := calendar[day]; ok {
			submitted++
		}
	}
	span := len(calendar)
	return models.ConsistencySnapshot{
		ActiveDaySpan:    span,
		SubmittedDays:    submitted,
		MissedDays:       span - submitted,
		ConsistencyRatio: FormatRatio(submitted, span),
	}
}

func distinctSorted(days []string) []string {
	if len(days) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sort.Strings(out)
	return out
}
