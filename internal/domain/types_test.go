package domain_test

import (
	"strings"
	"testing"

	"github.com/bkyoung/secret-scout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shaA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	shaB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestNewCommitSHA(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid lowercase hex", shaA, false},
		{"too short", "abc123", true},
		{"too long", shaA + "a", true},
		{"uppercase rejected", strings.ToUpper(shaA), true},
		{"non-hex rejected", strings.Repeat("z", 40), true},
		{"empty rejected", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sha, err := domain.NewCommitSHA(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidCommitSHA)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, sha.String())
		})
	}
}

func TestCommitSHA_Short(t *testing.T) {
	sha, err := domain.NewCommitSHA(shaA)
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaa", sha.Short())
}

func TestNewCommitRange(t *testing.T) {
	base, err := domain.NewCommitSHA(shaA)
	require.NoError(t, err)
	head, err := domain.NewCommitSHA(shaB)
	require.NoError(t, err)

	r := domain.NewCommitRange(base, head)
	assert.Equal(t, domain.ScanRange, r.Mode)
	assert.False(t, r.SingleCommit)

	single := domain.NewCommitRange(base, base)
	assert.True(t, single.SingleCommit)

	full := domain.FullHistoryRange()
	assert.Equal(t, domain.ScanFullHistory, full.Mode)
	assert.Empty(t, full.Base)
	assert.Empty(t, full.Head)
}

func TestNewFinding_Fingerprint(t *testing.T) {
	f := domain.NewFinding("aws-access-token", "src/config.go", 42, "abc123def456", "Jane Doe", "jane@example.com", "2025-10-16T12:00:00Z")

	assert.Equal(t, "abc123def456:src/config.go:aws-access-token:42", f.Fingerprint)
	assert.Equal(t, "abc123d", f.ShortSHA())
}

func TestFingerprintOf_Deterministic(t *testing.T) {
	a := domain.FingerprintOf("c2", "file.txt", "aws-key", 10)
	b := domain.FingerprintOf("c2", "file.txt", "aws-key", 10)
	assert.Equal(t, a, b)
	assert.Equal(t, "c2:file.txt:aws-key:10", a)
}

func TestFinding_URLs(t *testing.T) {
	f := domain.NewFinding("rule", "src/main.go", 42, "abc123", "a", "e", "d")
	repoURL := "https://github.com/owner/repo"

	assert.Equal(t, "https://github.com/owner/repo/commit/abc123", f.CommitURL(repoURL))
	assert.Equal(t, "https://github.com/owner/repo/blob/abc123/src/main.go#L42", f.SecretURL(repoURL))
	assert.Equal(t, "https://github.com/owner/repo/blob/abc123/src/main.go", f.FileURL(repoURL))
}

func TestParseEventKind(t *testing.T) {
	tests := []struct {
		name string
		want domain.EventKind
	}{
		{"push", domain.EventPush},
		{"pull_request", domain.EventPullRequest},
		{"workflow_dispatch", domain.EventManualDispatch},
		{"schedule", domain.EventSchedule},
	}

	for _, tt := range tests {
		kind, err := domain.ParseEventKind(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, kind)
		assert.Equal(t, tt.name, kind.String())
	}

	_, err := domain.ParseEventKind("deployment")
	assert.ErrorIs(t, err, domain.ErrUnsupportedEvent)
}

func TestContainsShellMetacharacters(t *testing.T) {
	assert.False(t, domain.ContainsShellMetacharacters(shaA))
	assert.False(t, domain.ContainsShellMetacharacters("release-1.2"))

	for _, ref := range []string{"a;rm -rf", "a`cmd`", "a$(x)", "a|b", "a b", "a>out", "a'b"} {
		assert.True(t, domain.ContainsShellMetacharacters(ref), ref)
	}
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, domain.SeverityExpected, domain.SeverityOf(domain.ErrNoCommits))
	assert.Equal(t, domain.SeverityFatal, domain.SeverityOf(domain.ErrNoPullRequestCommits))
	assert.Equal(t, domain.SeverityFatal, domain.SeverityOf(domain.ErrMalformedReport))
}

func TestScanOutcomeConstructors(t *testing.T) {
	assert.Equal(t, domain.StatusClean, domain.CleanOutcome().Code)
	assert.Equal(t, domain.StatusExecutionError, domain.ErrorOutcome().Code)

	f := []domain.Finding{domain.NewFinding("r", "f", 1, "c", "a", "e", "d")}
	out := domain.FindingsOutcome(f, domain.CommentStats{Posted: 1})
	assert.Equal(t, domain.StatusFindingsDetected, out.Code)
	assert.Len(t, out.Findings, 1)
	assert.Equal(t, "posted=1 skipped=0 failed=0", out.Comments.String())
}
