// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/gitpulse/gitpulse/internal/domain"
)

// perPage is the fixed page size for every listing endpoint. A page
// shorter than this (empty included) is the last page.
const perPage = 100

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
//
// Provider-side trouble never surfaces as an error: quota exhaustion
// comes back as a rate-limited outcome, and everything else (bad
// status, transport failure, malformed body) degrades to an empty
// successful outcome. The error return is reserved for malformed
// caller input.
type Fetcher interface {
	FetchRepositories(ctx context.Context) (domain.Outcome[[]domain.Repository], error)
	FetchCommits(ctx context.Context, repoFullName string, window domain.DateRange) (domain.Outcome[[]domain.Commit], error)
	FetchViewerLogin(ctx context.Context) (string, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	// Zero sleep budget: secondary (abuse) limits surface to the caller
	// immediately instead of being slept through. The retrieval contract
	// never waits or retries inside the client.
	limiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(0, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit transport: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   limiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchRepositories pages through the authenticated user's repositories,
// most recently updated first, until a short page ends the listing.
func (g *GitHubGateway) FetchRepositories(ctx context.Context) (domain.Outcome[[]domain.Repository], error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}
	repos := make([]domain.Repository, 0, perPage)
	for {
		page, _, err := g.restClient.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			if rl, ok := asRateLimit(err); ok {
				return domain.RateLimited[[]domain.Repository](rl), nil
			}
			g.logger.Printf("Repository listing failed on page %d: %v", opts.Page, err)
			return domain.OK([]domain.Repository{}), nil
		}
		for _, r := range page {
			repos = append(repos, domain.Repository{
				ID:        r.GetID(),
				Name:      r.GetName(),
				FullName:  r.GetFullName(),
				Private:   r.GetPrivate(),
				UpdatedAt: r.GetUpdatedAt().Time,
			})
		}
		if len(page) < perPage {
			break
		}
		opts.Page++
		g.logger.Println("  Fetching next page of repositories...")
	}
	return domain.OK(repos), nil
}

// FetchCommits pages through one repository's commits, optionally
// filtered server-side by the date window.
func (g *GitHubGateway) FetchCommits(ctx context.Context, repoFullName string, window domain.DateRange) (domain.Outcome[[]domain.Commit], error) {
	owner, repo, ok := strings.Cut(repoFullName, "/")
	if !ok || owner == "" || repo == "" {
		return domain.Outcome[[]domain.Commit]{}, fmt.Errorf("invalid repository full name %q: want owner/name", repoFullName)
	}

	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}
	if window.Since != nil {
		opts.Since = *window.Since
	}
	if window.Until != nil {
		opts.Until = *window.Until
	}

	commits := make([]domain.Commit, 0, perPage)
	for {
		page, _, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			if rl, ok := asRateLimit(err); ok {
				return domain.RateLimited[[]domain.Commit](rl), nil
			}
			g.logger.Printf("Commit listing for %s failed on page %d: %v", repoFullName, opts.Page, err)
			return domain.OK([]domain.Commit{}), nil
		}
		for _, c := range page {
			commits = append(commits, domain.Commit{
				SHA:     c.GetSHA(),
				Message: c.GetCommit().GetMessage(),
				Date:    c.GetCommit().GetAuthor().GetDate().Time,
				Author:  c.GetCommit().GetAuthor().GetName(),
			})
		}
		if len(page) < perPage {
			break
		}
		opts.Page++
		g.logger.Printf("  Fetching page %d of commits for %s...", opts.Page, repoFullName)
	}
	return domain.OK(commits), nil
}

// FetchViewerLogin resolves the authenticated user's login. It is the
// one remaining GraphQL call; the commit endpoints are REST-only.
func (g *GitHubGateway) FetchViewerLogin(ctx context.Context) (string, error) {
	var q struct {
		Viewer struct {
			Login githubv4.String
		}
	}
	if err := g.graphqlClient.Query(ctx, &q, nil); err != nil {
		return "", fmt.Errorf("failed to resolve viewer login: %w", err)
	}
	return string(q.Viewer.Login), nil
}

// asRateLimit classifies an API error as primary quota exhaustion.
// go-github raises the typed error only for the exact signal: status
// 403 with x-ratelimit-remaining 0 and a numeric x-ratelimit-reset.
func asRateLimit(err error) (domain.RateLimit, bool) {
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return domain.NewRateLimit(rle.Rate.Reset.Time, time.Now()), true
	}
	return domain.RateLimit{}, false
}
