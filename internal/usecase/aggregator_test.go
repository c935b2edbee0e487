package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gitpulse/gitpulse/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchRepositories(ctx context.Context) (domain.Outcome[[]domain.Repository], error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Outcome[[]domain.Repository]), args.Error(1)
}

func (m *mockFetcher) FetchCommits(ctx context.Context, repoFullName string, window domain.DateRange) (domain.Outcome[[]domain.Commit], error) {
	args := m.Called(ctx, repoFullName, window)
	return args.Get(0).(domain.Outcome[[]domain.Commit]), args.Error(1)
}

func (m *mockFetcher) FetchViewerLogin(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func commitAt(sha string, date time.Time) domain.Commit {
	return domain.Commit{SHA: sha, Message: "m " + sha, Date: date, Author: "alice"}
}

func TestAggregator_FetchCommits_EmptyInput(t *testing.T) {
	fetcher := new(mockFetcher)
	aggregator := NewAggregator(fetcher, testLogger())

	outcome, err := aggregator.FetchCommits(context.Background(), nil, domain.DateRange{})

	require.NoError(t, err)
	require.True(t, outcome.Ok())
	assert.Empty(t, outcome.Data)
	// No network activity happens for an empty repository set.
	fetcher.AssertNotCalled(t, "FetchCommits", mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregator_FetchCommits_MergesAndSortsDescending(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	t3 := time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC)

	fetcher := new(mockFetcher)
	fetcher.On("FetchCommits", mock.Anything, "me/repo-a", mock.Anything).
		Return(domain.OK([]domain.Commit{commitAt("a3", t3), commitAt("a1", t1)}), nil)
	fetcher.On("FetchCommits", mock.Anything, "me/repo-b", mock.Anything).
		Return(domain.OK([]domain.Commit{commitAt("b2", t2), commitAt("b1", t1)}), nil)
	aggregator := NewAggregator(fetcher, testLogger())

	outcome, err := aggregator.FetchCommits(context.Background(), []string{"me/repo-a", "me/repo-b"}, domain.DateRange{})

	require.NoError(t, err)
	require.True(t, outcome.Ok())
	shas := make([]string, len(outcome.Data))
	for i, c := range outcome.Data {
		shas[i] = c.SHA
	}
	// Equal timestamps keep the flatten order: repo-a before repo-b.
	assert.Equal(t, []string{"a3", "b2", "a1", "b1"}, shas)
	fetcher.AssertExpectations(t)
}

func TestAggregator_FetchCommits_SortIdempotent(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	already := []domain.Commit{commitAt("x2", t2), commitAt("x1", t1)}

	fetcher := new(mockFetcher)
	fetcher.On("FetchCommits", mock.Anything, "me/repo-a", mock.Anything).
		Return(domain.OK(already), nil)
	aggregator := NewAggregator(fetcher, testLogger())

	outcome, err := aggregator.FetchCommits(context.Background(), []string{"me/repo-a"}, domain.DateRange{})

	require.NoError(t, err)
	require.True(t, outcome.Ok())
	assert.Equal(t, already, outcome.Data)
}

func TestAggregator_FetchCommits_RateLimitShortCircuits(t *testing.T) {
	now := time.Now()
	fetcher := new(mockFetcher)
	fetcher.On("FetchCommits", mock.Anything, "me/repo-a", mock.Anything).
		Return(domain.OK([]domain.Commit{commitAt("a1", now)}), nil)
	fetcher.On("FetchCommits", mock.Anything, "me/repo-b", mock.Anything).
		Return(domain.RateLimited[[]domain.Commit](domain.RateLimit{Reset: now, RetryAfterMinutes: 5}), nil)
	fetcher.On("FetchCommits", mock.Anything, "me/repo-c", mock.Anything).
		Return(domain.RateLimited[[]domain.Commit](domain.RateLimit{Reset: now, RetryAfterMinutes: 9}), nil)
	aggregator := NewAggregator(fetcher, testLogger())

	outcome, err := aggregator.FetchCommits(context.Background(), []string{"me/repo-a", "me/repo-b", "me/repo-c"}, domain.DateRange{})

	require.NoError(t, err)
	require.False(t, outcome.Ok())
	// The first rate-limited result in input order wins, successes and
	// later rate limits are discarded.
	assert.Equal(t, 5, outcome.RateLimit.RetryAfterMinutes)
	assert.Empty(t, outcome.Data)
}

func TestAggregator_FetchCommits_HardErrorPropagates(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchCommits", mock.Anything, "bad-name", mock.Anything).
		Return(domain.Outcome[[]domain.Commit]{}, errors.New("invalid repository full name"))
	aggregator := NewAggregator(fetcher, testLogger())

	_, err := aggregator.FetchCommits(context.Background(), []string{"bad-name"}, domain.DateRange{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-name")
}

func TestAggregator_Snapshot(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	commits := []domain.Commit{commitAt("a1", since)}

	testCases := []struct {
		name             string
		login            string
		loginErr         error
		expectedUsername string
	}{
		{
			name:             "viewer login stamps the snapshot",
			login:            "octocat",
			expectedUsername: "octocat",
		},
		{
			name:             "failed lookup falls back to Anonymous",
			loginErr:         errors.New("boom"),
			expectedUsername: "Anonymous",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("FetchViewerLogin", mock.Anything).Return(tc.login, tc.loginErr)
			aggregator := NewAggregator(fetcher, testLogger())

			snap := aggregator.Snapshot(context.Background(), []string{"me/repo-a"}, domain.DateRange{Since: &since}, commits)

			assert.Equal(t, tc.expectedUsername, snap.Username)
			assert.Equal(t, []string{"me/repo-a"}, snap.Repos)
			assert.Equal(t, "2024-01-01T00:00:00Z", snap.DateFrom)
			assert.Empty(t, snap.DateTo)
			assert.Equal(t, commits, snap.Commits)
		})
	}
}

func TestAggregator_FetchSnapshot_RateLimitPassesThrough(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchCommits", mock.Anything, "me/repo-a", mock.Anything).
		Return(domain.RateLimited[[]domain.Commit](domain.RateLimit{RetryAfterMinutes: 3}), nil)
	aggregator := NewAggregator(fetcher, testLogger())

	outcome, err := aggregator.FetchSnapshot(context.Background(), []string{"me/repo-a"}, domain.DateRange{})

	require.NoError(t, err)
	require.False(t, outcome.Ok())
	assert.Equal(t, 3, outcome.RateLimit.RetryAfterMinutes)
	fetcher.AssertNotCalled(t, "FetchViewerLogin", mock.Anything)
}
