package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ContinentStats aggregates the results played for one continent selection.
type ContinentStats struct {
	Name         string  `json:"name"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"averageScore"`
}

// ResultStats summarises a quiz history. Best and MostRecent are zero when Total is 0.
type ResultStats struct {
	Total        int              `json:"total"`
	AverageScore float64          `json:"averageScore"`
	Best         QuizResult       `json:"best"`
	MostRecent   QuizResult       `json:"mostRecent"`
	ByContinent  []ContinentStats `json:"byContinent"`
}

// Summarize computes statistics over results. The best result is the highest
// percentage, with the newer result winning a tie. Continents are ordered by
// quiz count, then by first appearance.
func Summarize(results []QuizResult) ResultStats {
	var stats ResultStats
	if len(results) == 0 {
		return stats
	}

	newestFirst := make([]QuizResult, len(results))
	copy(newestFirst, results)
	sort.SliceStable(newestFirst, func(i, j int) bool {
		return newestFirst[i].CompletedDate.After(newestFirst[j].CompletedDate)
	})

	stats.Total = len(newestFirst)
	stats.MostRecent = newestFirst[0]
	stats.Best = newestFirst[0]

	var sum float64
	index := map[string]int{}
	totals := []float64{}
	for _, r := range newestFirst {
		pct := r.Percentage()
		sum += pct
		if pct > stats.Best.Percentage() {
			stats.Best = r
		}
		i, ok := index[r.ContinentName]
		if !ok {
			i = len(stats.ByContinent)
			index[r.ContinentName] = i
			stats.ByContinent = append(stats.ByContinent, ContinentStats{Name: r.ContinentName})
			totals = append(totals, 0)
		}
		stats.ByContinent[i].Count++
		totals[i] += pct
	}
	stats.AverageScore = sum / float64(stats.Total)
	for i := range stats.ByContinent {
		stats.ByContinent[i].AverageScore = totals[i] / float64(stats.ByContinent[i].Count)
	}
	sort.SliceStable(stats.ByContinent, func(i, j int) bool {
		return stats.ByContinent[i].Count > stats.ByContinent[j].Count
	})
	return stats
}

// ResultWindow narrows a history to a recent slice of it.
type ResultWindow int

const (
	WindowAll ResultWindow = iota
	WindowLast10
	WindowWeek
	WindowMonth
)

const lastWindowSize = 10

var windowNames = map[ResultWindow]string{
	WindowAll:    "all",
	WindowLast10: "last10",
	WindowWeek:   "week",
	WindowMonth:  "month",
}

func (w ResultWindow) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("ResultWindow(%d)", int(w))
}

// ParseResultWindow accepts all, last10, week or month, case-insensitively.
func ParseResultWindow(raw string) (ResultWindow, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return WindowAll, nil
	}
	for w, name := range windowNames {
		if s == name {
			return w, nil
		}
	}
	return WindowAll, &ValidationError{Kind: ErrInvalidResult, Field: "window", Reason: fmt.Sprintf("unknown window %q", raw)}
}

// Apply filters results, which must be newest first. Week and month reach back
// 7 and 30 days from now.
func (w ResultWindow) Apply(results []QuizResult, now time.Time) []QuizResult {
	switch w {
	case WindowLast10:
		if len(results) > lastWindowSize {
			return results[:lastWindowSize]
		}
		return results
	case WindowWeek:
		return completedSince(results, now.AddDate(0, 0, -7))
	case WindowMonth:
		return completedSince(results, now.AddDate(0, 0, -30))
	default:
		return results
	}
}

func completedSince(results []QuizResult, cutoff time.Time) []QuizResult {
	out := make([]QuizResult, 0, len(results))
	for _, r := range results {
		if !r.CompletedDate.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}
