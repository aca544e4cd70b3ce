// Package comments turns findings into idempotent review comments on a
// change request.
package comments

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bkyoung/secret-scout/internal/adapter/httpx"
	"github.com/bkyoung/secret-scout/internal/domain"
)

// defaultConcurrency bounds parallel comment posts: enough to cut
// wall-clock time, small enough to avoid rate-limit bursts.
const defaultConcurrency = 4

// API is the slice of the source-control client this service needs.
type API interface {
	ListExistingComments(ctx context.Context, owner, repo string, number int) ([]domain.ExistingComment, error)
	PostComment(ctx context.Context, owner, repo string, number int, comment domain.ReviewComment) error
}

// Service posts one review comment per finding, skipping exact duplicates.
type Service struct {
	api         API
	logger      *httpx.Logger
	concurrency int
}

// NewService creates a comment Service.
func NewService(api API, logger *httpx.Logger) *Service {
	return &Service{api: api, logger: logger, concurrency: defaultConcurrency}
}

// SetConcurrency overrides the post worker limit (tests use 1 for
// deterministic ordering).
func (s *Service) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// PostFindings posts a comment for each finding not already present on the
// change request. A failure to list existing comments sacrifices
// deduplication, not correctness: the run continues with an empty list. A
// single post failure is counted and logged, never aborting the remaining
// findings; oversized-diff rejections are routine there. The returned
// stats are for reporting only.
func (s *Service) PostFindings(ctx context.Context, owner, repo string, prNumber int, findings []domain.Finding, mentions []string) domain.CommentStats {
	var stats domain.CommentStats
	if len(findings) == 0 {
		return stats
	}

	existing, err := s.api.ListExistingComments(ctx, owner, repo, prNumber)
	if err != nil {
		s.logger.Warn(ctx, "failed to fetch existing comments, continuing without deduplication", httpx.Fields{
			"pull_number": prNumber,
			"error":       err.Error(),
		})
		existing = nil
	}

	// Candidates are built in finding order; only the network posts run
	// concurrently.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, finding := range findings {
		comment := buildComment(finding, mentions)

		if isDuplicate(existing, comment) {
			s.logger.Debug(ctx, "skipping duplicate comment", httpx.Fields{
				"path": comment.Path,
				"line": comment.Line,
			})
			stats.Skipped++
			continue
		}

		g.Go(func() error {
			if err := s.api.PostComment(gctx, owner, repo, prNumber, comment); err != nil {
				s.logger.Warn(gctx, "failed to post comment", httpx.Fields{
					"path":  comment.Path,
					"line":  comment.Line,
					"error": err.Error(),
				})
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				return nil
			}

			s.logger.Debug(gctx, "posted comment", httpx.Fields{
				"path": comment.Path,
				"line": comment.Line,
			})
			mu.Lock()
			stats.Posted++
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	s.logger.Info(ctx, "comment posting complete", httpx.Fields{
		"pull_number": prNumber,
		"posted":      stats.Posted,
		"skipped":     stats.Skipped,
		"failed":      stats.Failed,
	})

	return stats
}

// buildComment renders the review comment for a finding. The body carries
// the fingerprint verbatim so a human can suppress a false positive by
// recording that exact string.
func buildComment(f domain.Finding, mentions []string) domain.ReviewComment {
	return domain.ReviewComment{
		Body:     BuildCommentBody(f, mentions),
		CommitID: f.CommitSHA,
		Path:     f.FilePath,
		Line:     f.StartLine,
		Side:     "RIGHT",
	}
}

// BuildCommentBody renders the comment text for a finding.
func BuildCommentBody(f domain.Finding, mentions []string) string {
	var sb strings.Builder
	sb.WriteString("🛑 **Secret Detected**\n\n")
	fmt.Fprintf(&sb, "**Rule:** `%s`\n", f.RuleID)
	fmt.Fprintf(&sb, "**Commit:** `%s`\n", f.ShortSHA())
	fmt.Fprintf(&sb, "**Fingerprint:** `%s`\n\n", f.Fingerprint)
	sb.WriteString("To ignore this finding, add the fingerprint to `.gitleaksignore`.\n")

	if len(mentions) > 0 {
		fmt.Fprintf(&sb, "\n**CC:** %s\n", strings.Join(mentions, " "))
	}

	return sb.String()
}

// isDuplicate reports whether an existing comment matches the candidate on
// the exact (body, path, line, commit) tuple.
func isDuplicate(existing []domain.ExistingComment, candidate domain.ReviewComment) bool {
	for _, e := range existing {
		if e.Body == candidate.Body &&
			e.Path == candidate.Path &&
			e.Line == candidate.Line &&
			e.CommitID == candidate.CommitID {
			return true
		}
	}
	return false
}
