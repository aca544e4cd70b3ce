// Package resolve maps a trigger event to the exact commit range the
// scanner should walk.
package resolve

import (
	"context"
	"fmt"

	"github.com/bkyoung/secret-scout/internal/adapter/httpx"
	"github.com/bkyoung/secret-scout/internal/domain"
)

// CommitLister fetches the commit list of a change request. Satisfied by
// the API client; mocked in tests.
type CommitLister interface {
	GetPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]domain.Commit, error)
}

// Resolver computes the {base, head} commit pair for an event.
type Resolver struct {
	commits CommitLister
	logger  *httpx.Logger
}

// NewResolver creates a Resolver.
func NewResolver(commits CommitLister, logger *httpx.Logger) *Resolver {
	return &Resolver{commits: commits, logger: logger}
}

// Resolve maps an event to a CommitRange. overrideBase, when non-empty,
// replaces the computed base for push and pull-request events regardless
// of how it was derived; it is an escape hatch validated only for commit
// SHA shape and for shell metacharacters, since the range is later
// serialized into the scanner's argument list.
//
// An empty push commit list returns ErrNoCommits, which callers treat as a
// clean run. An empty pull-request commit list is fatal: a change request
// must have at least one commit.
func (r *Resolver) Resolve(ctx context.Context, ev *domain.EventContext, overrideBase string) (domain.CommitRange, error) {
	override, err := parseOverride(overrideBase)
	if err != nil {
		return domain.CommitRange{}, err
	}

	switch ev.Kind {
	case domain.EventPush:
		return r.resolvePush(ctx, ev, override)
	case domain.EventPullRequest:
		return r.resolvePullRequest(ctx, ev, override)
	case domain.EventManualDispatch, domain.EventSchedule:
		r.logger.Info(ctx, "full-history scan", httpx.Fields{"event": ev.Kind.String()})
		return domain.FullHistoryRange(), nil
	default:
		return domain.CommitRange{}, fmt.Errorf("%w: %v", domain.ErrUnsupportedEvent, ev.Kind)
	}
}

func (r *Resolver) resolvePush(ctx context.Context, ev *domain.EventContext, override domain.CommitSHA) (domain.CommitRange, error) {
	if len(ev.Commits) == 0 {
		return domain.CommitRange{}, domain.ErrNoCommits
	}

	base, err := domain.NewCommitSHA(ev.Commits[0].SHA)
	if err != nil {
		return domain.CommitRange{}, fmt.Errorf("push base: %w", err)
	}
	head, err := domain.NewCommitSHA(ev.Commits[len(ev.Commits)-1].SHA)
	if err != nil {
		return domain.CommitRange{}, fmt.Errorf("push head: %w", err)
	}

	if override != "" {
		base = override
	}

	r.logger.Info(ctx, "resolved push range", httpx.Fields{
		"base":    base.Short(),
		"head":    head.Short(),
		"commits": len(ev.Commits),
	})

	return domain.NewCommitRange(base, head), nil
}

func (r *Resolver) resolvePullRequest(ctx context.Context, ev *domain.EventContext, override domain.CommitSHA) (domain.CommitRange, error) {
	pr := ev.PullRequest
	if pr == nil {
		return domain.CommitRange{}, fmt.Errorf("%w: pull_request event without pull request data", domain.ErrMalformedEvent)
	}

	commits, err := r.commits.GetPullRequestCommits(ctx, ev.Repository.Owner, ev.Repository.Name, pr.Number)
	if err != nil {
		return domain.CommitRange{}, fmt.Errorf("fetch commits for pull request #%d: %w", pr.Number, err)
	}
	if len(commits) == 0 {
		return domain.CommitRange{}, fmt.Errorf("%w: #%d", domain.ErrNoPullRequestCommits, pr.Number)
	}

	base, err := domain.NewCommitSHA(commits[0].SHA)
	if err != nil {
		return domain.CommitRange{}, fmt.Errorf("pull request base: %w", err)
	}
	head, err := domain.NewCommitSHA(commits[len(commits)-1].SHA)
	if err != nil {
		return domain.CommitRange{}, fmt.Errorf("pull request head: %w", err)
	}

	if override != "" {
		base = override
	}

	r.logger.Info(ctx, "resolved pull request range", httpx.Fields{
		"pull_number": pr.Number,
		"base":        base.Short(),
		"head":        head.Short(),
		"commits":     len(commits),
	})

	return domain.NewCommitRange(base, head), nil
}

// parseOverride validates the base-ref escape hatch.
func parseOverride(raw string) (domain.CommitSHA, error) {
	if raw == "" {
		return "", nil
	}
	if domain.ContainsShellMetacharacters(raw) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidOverrideRef, raw)
	}
	sha, err := domain.NewCommitSHA(raw)
	if err != nil {
		return "", fmt.Errorf("base ref override: %w", err)
	}
	return sha, nil
}
