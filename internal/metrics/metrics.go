// Package metrics derives the chart series and velocity figures from a
// commit list. It is pure: no I/O, no state, identical inputs always
// produce identical outputs, so callers recompute on every selection
// change instead of caching.
package metrics

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/gitpulse/gitpulse/internal/domain"
)

// dayLayout is the bucket key format. Bucketing happens in UTC.
const dayLayout = "2006-01-02"

// defaultLookbackDays sizes the window when there is no explicit start
// bound and no commits to infer one from.
const defaultLookbackDays = 30

// Timeline buckets commits by UTC calendar day and returns the
// cumulative series in ascending day order. The series is sparse:
// days without commits are omitted, and consumers interpolate
// visually. An empty commit list yields an empty series.
func Timeline(commits []domain.Commit) []domain.ChartPoint {
	if len(commits) == 0 {
		return []domain.ChartPoint{}
	}

	perDay := make(map[string]int)
	for _, c := range commits {
		perDay[c.Date.UTC().Format(dayLayout)]++
	}

	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]domain.ChartPoint, 0, len(days))
	total := 0
	for _, day := range days {
		total += perDay[day]
		points = append(points, domain.ChartPoint{Day: day, CumulativeCount: total})
	}
	return points
}

// ComputeVelocity derives the weekly/monthly commit rates and the
// period-over-period growth for the window.
//
// The window start is the explicit Since bound, else the earliest
// commit's date, else 30 days before now; the end is the explicit
// Until bound, else now. Week and month spans floor at 1 so sub-week
// and sub-month windows never divide by zero. Rates are rounded to
// one decimal.
//
// Growth splits the window at its exact midpoint instant: first half
// [start, mid), second half [mid, end]. A commit exactly at the
// midpoint counts in the second half. An empty first half with a
// non-empty second half reports exactly 100; two empty halves report
// nil ("no previous data").
func ComputeVelocity(commits []domain.Commit, window domain.DateRange, now time.Time) domain.Velocity {
	end := now
	if window.Until != nil {
		end = *window.Until
	}
	var start time.Time
	switch {
	case window.Since != nil:
		start = *window.Since
	case len(commits) > 0:
		start = earliest(commits)
	default:
		start = now.AddDate(0, 0, -defaultLookbackDays)
	}

	totalWeeks := wholeWeeks(start, end)
	if totalWeeks < 1 {
		totalWeeks = 1
	}
	totalMonths := wholeMonths(start, end)
	if totalMonths < 1 {
		totalMonths = 1
	}

	total := len(commits)
	weekly, _ := stats.Round(float64(total)/float64(totalWeeks), 1)
	monthly, _ := stats.Round(float64(total)/float64(totalMonths), 1)
	v := domain.Velocity{
		TotalCommits: total,
		WeeklyRate:   weekly,
		MonthlyRate:  monthly,
	}

	mid := start.Add(end.Sub(start) / 2)
	var firstHalf, secondHalf int
	for _, c := range commits {
		d := c.Date
		switch {
		case !d.Before(start) && d.Before(mid):
			firstHalf++
		case !d.Before(mid) && !d.After(end):
			secondHalf++
		}
	}
	switch {
	case firstHalf > 0:
		growth, _ := stats.Round(float64(secondHalf-firstHalf)/float64(firstHalf)*100, 1)
		v.GrowthPct = &growth
	case secondHalf > 0:
		growth := 100.0
		v.GrowthPct = &growth
	}
	return v
}

func earliest(commits []domain.Commit) time.Time {
	min := commits[0].Date
	for _, c := range commits[1:] {
		if c.Date.Before(min) {
			min = c.Date
		}
	}
	return min
}

// wholeWeeks counts full 7-day spans between start and end.
func wholeWeeks(start, end time.Time) int {
	return int(end.Sub(start).Hours() / (24 * 7))
}

// wholeMonths counts full calendar months between start and end. The
// anchor check handles ends that fall before the start's day-of-month.
func wholeMonths(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if months > 0 && start.AddDate(0, months, 0).After(end) {
		months--
	}
	return months
}
