package share

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitpulse/gitpulse/internal/domain"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	snap := domain.Snapshot{
		Repos:    []string{"me/repo-a", "me/repo-b"},
		DateFrom: "2024-01-01T00:00:00Z",
		Username: "octocat",
		Commits: []domain.Commit{
			{SHA: "abc123", Message: "fix race", Date: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), Author: "bob"},
			{SHA: "def456", Message: "add tests", Date: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Author: "alice"},
		},
	}

	token, err := Encode(snap)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	decoded, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, snap, decoded)
}

func TestEncode_TokenIsURLSafe(t *testing.T) {
	snap := domain.Snapshot{
		Repos:    []string{"me/repo-a"},
		Username: "octocat",
		Commits:  []domain.Commit{},
	}

	token, err := Encode(snap)
	require.NoError(t, err)
	// Tokens travel in URL paths: no padding, no +, no /.
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
}

func TestDecode_RejectsCorruptTokens(t *testing.T) {
	testCases := []struct {
		name  string
		token string
	}{
		{name: "not base64", token: "!!!not-a-token!!!"},
		{name: "base64 but not lz4", token: "QUFBQUFBQUE"},
		{name: "empty", token: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.token)
			assert.Error(t, err)
		})
	}
}

func TestDecode_RejectsTruncatedTokens(t *testing.T) {
	snap := domain.Snapshot{
		Repos:    []string{"me/repo-a"},
		Username: "octocat",
		Commits: []domain.Commit{
			{SHA: strings.Repeat("a", 40), Message: strings.Repeat("long message ", 50)},
		},
	}
	token, err := Encode(snap)
	require.NoError(t, err)

	_, err = Decode(token[:len(token)/2])
	assert.Error(t, err)
}
