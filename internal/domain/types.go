// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Repository is a normalized view of a provider-side repository.
// It is immutable once fetched and lives for a single fetch cycle.
type Repository struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	FullName  string    `json:"fullName"`
	Private   bool      `json:"private"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Commit is a normalized commit record. Once merged into an aggregate
// list it carries no back-reference to the repository it came from.
type Commit struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Author  string    `json:"author"`
}

// DateRange bounds a commit query. A nil bound leaves that side open.
type DateRange struct {
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Since == nil && r.Until == nil
}

// ChartPoint is one day of the cumulative commit series. Days without
// commits are absent from the series rather than emitted with a
// repeated count.
type ChartPoint struct {
	Day             string `json:"day"`
	CumulativeCount int    `json:"cumulativeCount"`
}

// Velocity holds the derived commit-rate figures for a window.
// GrowthPct is nil when there is no prior data to compare against.
type Velocity struct {
	TotalCommits int      `json:"totalCommits"`
	WeeklyRate   float64  `json:"weeklyRate"`
	MonthlyRate  float64  `json:"monthlyRate"`
	GrowthPct    *float64 `json:"growthPct"`
}

// Snapshot is the payload embedded in a stateless share token. Date
// bounds are kept as the original query strings so a decoded snapshot
// reproduces the exact selection.
type Snapshot struct {
	Repos    []string `json:"repos"`
	DateFrom string   `json:"dateFrom,omitempty"`
	DateTo   string   `json:"dateTo,omitempty"`
	Username string   `json:"username"`
	Commits  []Commit `json:"commits"`
}
