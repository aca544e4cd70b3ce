// Package scan drives one end-to-end invocation: resolve the commit
// range, run the scanner, extract findings, and surface them as review
// comments where the trigger event allows it.
package scan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bkyoung/secret-scout/internal/adapter/gitleaks"
	"github.com/bkyoung/secret-scout/internal/adapter/httpx"
	"github.com/bkyoung/secret-scout/internal/domain"
	"github.com/bkyoung/secret-scout/internal/usecase/resolve"
)

// RangeResolver turns a trigger event into a commit range.
type RangeResolver interface {
	Resolve(ctx context.Context, ev *domain.EventContext, overrideBase string) (domain.CommitRange, error)
}

// ScannerRunner executes the scanner over the workspace.
type ScannerRunner interface {
	Run(ctx context.Context, logOpts string) (gitleaks.Result, error)
}

// FindingExtractor reads findings out of a scanner report file.
type FindingExtractor interface {
	ExtractFile(ctx context.Context, path string) ([]domain.Finding, error)
}

// AccountLookup resolves the repository owner's account type.
type AccountLookup interface {
	GetAccountType(ctx context.Context, username string) (domain.AccountType, error)
}

// CommentPoster publishes findings on a change request.
type CommentPoster interface {
	PostFindings(ctx context.Context, owner, repo string, prNumber int, findings []domain.Finding, mentions []string) domain.CommentStats
}

// Options carries the per-run settings the orchestrator needs beyond the
// event itself.
type Options struct {
	// OverrideBase optionally replaces the computed range base.
	OverrideBase string
	// EnableComments gates review-comment posting on pull requests.
	EnableComments bool
	// NotifyUsers are mentioned in every posted comment.
	NotifyUsers []string
}

// Orchestrator sequences a single scan run.
type Orchestrator struct {
	resolver  RangeResolver
	scanner   ScannerRunner
	extractor FindingExtractor
	accounts  AccountLookup
	poster    CommentPoster
	logger    *httpx.Logger
	opts      Options
}

// NewOrchestrator wires the orchestrator. accounts and poster may be nil
// when no API client is configured (push runs without a token).
func NewOrchestrator(resolver RangeResolver, scanner ScannerRunner, extractor FindingExtractor, accounts AccountLookup, poster CommentPoster, logger *httpx.Logger, opts Options) *Orchestrator {
	return &Orchestrator{
		resolver:  resolver,
		scanner:   scanner,
		extractor: extractor,
		accounts:  accounts,
		poster:    poster,
		logger:    logger,
		opts:      opts,
	}
}

// Run executes one invocation and reports its terminal outcome. Every
// failure path is resolved to a status code here; callers translate the
// code to a process exit, nothing else.
func (o *Orchestrator) Run(ctx context.Context, ev *domain.EventContext) domain.ScanOutcome {
	runID := uuid.NewString()
	o.logger.Info(ctx, "scan started", httpx.Fields{
		"run_id":     runID,
		"event":      ev.Kind.String(),
		"repository": ev.Repository.FullName,
	})

	rng, account, err := o.prepare(ctx, ev)
	if err != nil {
		if domain.SeverityOf(err) == domain.SeverityExpected {
			o.logger.Info(ctx, "nothing to scan", httpx.Fields{"run_id": runID, "reason": err.Error()})
			return domain.CleanOutcome()
		}
		o.logger.Error(ctx, "range resolution failed", httpx.Fields{"run_id": runID, "error": err.Error()})
		return domain.ErrorOutcome()
	}

	logOpts := resolve.LogOpts(rng)
	o.logger.Debug(ctx, "range resolved", httpx.Fields{
		"run_id":   runID,
		"log_opts": logOpts,
		"account":  account.String(),
	})

	result, err := o.scanner.Run(ctx, logOpts)
	if err != nil {
		o.logger.Error(ctx, "scanner failed", httpx.Fields{"run_id": runID, "error": err.Error()})
		return domain.ErrorOutcome()
	}

	switch result.Status {
	case gitleaks.ExitClean:
		o.logger.Info(ctx, "scan clean", httpx.Fields{"run_id": runID})
		return domain.CleanOutcome()
	case gitleaks.ExitFindings:
		// fall through to extraction
	default:
		o.logger.Error(ctx, "scanner reported an execution error", httpx.Fields{
			"run_id": runID,
			"stderr": result.Stderr,
		})
		return domain.ErrorOutcome()
	}

	findings, err := o.extractor.ExtractFile(ctx, result.ReportPath)
	if err != nil {
		o.logger.Error(ctx, "report extraction failed", httpx.Fields{"run_id": runID, "error": err.Error()})
		return domain.ErrorOutcome()
	}
	if len(findings) == 0 {
		o.logger.Info(ctx, "scan clean", httpx.Fields{"run_id": runID})
		return domain.CleanOutcome()
	}

	o.logger.Warn(ctx, "secrets detected", httpx.Fields{
		"run_id": runID,
		"count":  len(findings),
	})

	stats := o.publish(ctx, ev, findings, runID)
	return domain.FindingsOutcome(findings, stats)
}

// prepare resolves the commit range while looking up the owner's account
// type in parallel. A failed lookup degrades to the conservative default
// rather than failing the run.
func (o *Orchestrator) prepare(ctx context.Context, ev *domain.EventContext) (domain.CommitRange, domain.AccountType, error) {
	var (
		rng     domain.CommitRange
		account = domain.AccountOrganization
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rng, err = o.resolver.Resolve(gctx, ev, o.opts.OverrideBase)
		return err
	})
	if o.accounts != nil {
		g.Go(func() error {
			at, err := o.accounts.GetAccountType(gctx, ev.Repository.Owner)
			if err != nil {
				// Cancellation here means the resolver already failed;
				// any other lookup error keeps the default.
				if !errors.Is(err, context.Canceled) {
					o.logger.Warn(ctx, "account type lookup failed", httpx.Fields{
						"owner": ev.Repository.Owner,
						"error": err.Error(),
					})
				}
				return nil
			}
			account = at
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.CommitRange{}, account, err
	}
	return rng, account, nil
}

// publish posts review comments when the event is a pull request and
// commenting is enabled. Stats failures never change the outcome.
func (o *Orchestrator) publish(ctx context.Context, ev *domain.EventContext, findings []domain.Finding, runID string) domain.CommentStats {
	var stats domain.CommentStats
	if ev.Kind != domain.EventPullRequest || ev.PullRequest == nil {
		return stats
	}
	if !o.opts.EnableComments {
		o.logger.Info(ctx, "comment posting disabled", httpx.Fields{"run_id": runID})
		return stats
	}
	if o.poster == nil {
		return stats
	}

	stats = o.poster.PostFindings(ctx, ev.Repository.Owner, ev.Repository.Name, ev.PullRequest.Number, findings, o.opts.NotifyUsers)
	o.logger.Info(ctx, "comments published", httpx.Fields{
		"run_id": runID,
		"stats":  stats.String(),
	})
	return stats
}
