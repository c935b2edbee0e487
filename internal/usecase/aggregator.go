// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gitpulse/gitpulse/internal/domain"
	"github.com/gitpulse/gitpulse/internal/gateway"
)

// anonymousUser names snapshots when the viewer lookup fails.
const anonymousUser = "Anonymous"

// Aggregator is the use case for collecting commit history across
// repositories. It orchestrates the fan-out and combines the results
// into a single all-or-nothing outcome.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// FetchRepositories lists the authenticated user's repositories.
func (a *Aggregator) FetchRepositories(ctx context.Context) (domain.Outcome[[]domain.Repository], error) {
	return a.fetcher.FetchRepositories(ctx)
}

// FetchCommits fans out one commit listing per repository, waits for
// all of them, and merges the results.
//
// The batch is all-or-nothing: if any repository reports rate
// limiting, the whole outcome is rate-limited and carries the first
// such result in input order, discarding everything else. Otherwise
// the lists are flattened and sorted by commit date, newest first.
// The sort is stable over the flatten order (input repository order,
// then provider page order), so a fixed input always produces the
// same output.
func (a *Aggregator) FetchCommits(ctx context.Context, repoFullNames []string, window domain.DateRange) (domain.Outcome[[]domain.Commit], error) {
	if len(repoFullNames) == 0 {
		return domain.OK([]domain.Commit{}), nil
	}

	a.logger.Printf("Usecase: Fetching commits from %d repositories...", len(repoFullNames))

	// Each goroutine owns its own slot, so the join is the only
	// synchronization point.
	outcomes := make([]domain.Outcome[[]domain.Commit], len(repoFullNames))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, name := range repoFullNames {
		eg.Go(func() error {
			outcome, err := a.fetcher.FetchCommits(egCtx, name, window)
			if err != nil {
				return fmt.Errorf("fetch commits for %s: %w", name, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return domain.Outcome[[]domain.Commit]{}, err
	}

	for _, outcome := range outcomes {
		if !outcome.Ok() {
			a.logger.Printf("Usecase: Batch rate limited, retry in %d minute(s).", outcome.RateLimit.RetryAfterMinutes)
			return domain.RateLimited[[]domain.Commit](*outcome.RateLimit), nil
		}
	}

	merged := make([]domain.Commit, 0)
	for _, outcome := range outcomes {
		merged = append(merged, outcome.Data...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})

	a.logger.Printf("Usecase: Merged %d commits.", len(merged))
	return domain.OK(merged), nil
}

// Snapshot assembles a share snapshot around an already-fetched commit
// list, stamping it with the authenticated user's login. A failed
// viewer lookup is not fatal; the snapshot is attributed to Anonymous.
func (a *Aggregator) Snapshot(ctx context.Context, repoFullNames []string, window domain.DateRange, commits []domain.Commit) domain.Snapshot {
	username, err := a.fetcher.FetchViewerLogin(ctx)
	if err != nil || username == "" {
		a.logger.Printf("Usecase: Viewer lookup failed, using %q: %v", anonymousUser, err)
		username = anonymousUser
	}
	snap := domain.Snapshot{
		Repos:    repoFullNames,
		Username: username,
		Commits:  commits,
	}
	if window.Since != nil {
		snap.DateFrom = window.Since.Format(time.RFC3339)
	}
	if window.Until != nil {
		snap.DateTo = window.Until.Format(time.RFC3339)
	}
	return snap
}

// FetchSnapshot fetches the commit history and wraps it into a share
// snapshot in one step.
func (a *Aggregator) FetchSnapshot(ctx context.Context, repoFullNames []string, window domain.DateRange) (domain.Outcome[domain.Snapshot], error) {
	outcome, err := a.FetchCommits(ctx, repoFullNames, window)
	if err != nil {
		return domain.Outcome[domain.Snapshot]{}, err
	}
	if !outcome.Ok() {
		return domain.RateLimited[domain.Snapshot](*outcome.RateLimit), nil
	}
	return domain.OK(a.Snapshot(ctx, repoFullNames, window, outcome.Data)), nil
}
