package scan_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/secret-scout/internal/adapter/gitleaks"
	"github.com/bkyoung/secret-scout/internal/domain"
	"github.com/bkyoung/secret-scout/internal/usecase/scan"
)

func sha(c byte) string {
	return strings.Repeat(string(c), 40)
}

type fakeResolver struct {
	rng    domain.CommitRange
	err    error
	called bool
	base   string
}

func (f *fakeResolver) Resolve(_ context.Context, _ *domain.EventContext, overrideBase string) (domain.CommitRange, error) {
	f.called = true
	f.base = overrideBase
	return f.rng, f.err
}

type fakeScanner struct {
	result gitleaks.Result
	err    error
	called bool
	opts   string
}

func (f *fakeScanner) Run(_ context.Context, logOpts string) (gitleaks.Result, error) {
	f.called = true
	f.opts = logOpts
	return f.result, f.err
}

type fakeExtractor struct {
	findings []domain.Finding
	err      error
	path     string
}

func (f *fakeExtractor) ExtractFile(_ context.Context, path string) ([]domain.Finding, error) {
	f.path = path
	return f.findings, f.err
}

type fakeAccounts struct {
	account domain.AccountType
	err     error
	owner   string
}

func (f *fakeAccounts) GetAccountType(_ context.Context, username string) (domain.AccountType, error) {
	f.owner = username
	return f.account, f.err
}

type fakePoster struct {
	stats    domain.CommentStats
	called   bool
	owner    string
	repo     string
	number   int
	findings []domain.Finding
	mentions []string
}

func (f *fakePoster) PostFindings(_ context.Context, owner, repo string, number int, findings []domain.Finding, mentions []string) domain.CommentStats {
	f.called = true
	f.owner = owner
	f.repo = repo
	f.number = number
	f.findings = findings
	f.mentions = mentions
	return f.stats
}

type fixture struct {
	resolver  *fakeResolver
	scanner   *fakeScanner
	extractor *fakeExtractor
	accounts  *fakeAccounts
	poster    *fakePoster
}

func newFixture() *fixture {
	return &fixture{
		resolver:  &fakeResolver{rng: domain.FullHistoryRange()},
		scanner:   &fakeScanner{result: gitleaks.Result{Status: gitleaks.ExitClean}},
		extractor: &fakeExtractor{},
		accounts:  &fakeAccounts{account: domain.AccountUser},
		poster:    &fakePoster{},
	}
}

func (f *fixture) orchestrator(opts scan.Options) *scan.Orchestrator {
	return scan.NewOrchestrator(f.resolver, f.scanner, f.extractor, f.accounts, f.poster, nil, opts)
}

func pushEvent() *domain.EventContext {
	return &domain.EventContext{
		Kind: domain.EventPush,
		Repository: domain.Repository{
			Owner:    "acme",
			Name:     "widgets",
			FullName: "acme/widgets",
		},
		Commits: []domain.Commit{{SHA: sha('a')}},
	}
}

func prEvent() *domain.EventContext {
	ev := pushEvent()
	ev.Kind = domain.EventPullRequest
	ev.Commits = nil
	ev.PullRequest = &domain.PullRequest{Number: 42, BaseSHA: sha('b'), HeadSHA: sha('c')}
	return ev
}

func testFindings() []domain.Finding {
	return []domain.Finding{
		domain.NewFinding("aws-access-key", "config/prod.env", 12, sha('a'), "dev", "dev@acme.io", "2026-01-05T10:00:00Z"),
	}
}

func TestRunCleanScan(t *testing.T) {
	f := newFixture()
	outcome := f.orchestrator(scan.Options{}).Run(context.Background(), pushEvent())

	assert.Equal(t, domain.StatusClean, outcome.Code)
	assert.True(t, f.scanner.called)
	assert.False(t, f.poster.called)
}

func TestRunFindingsOnPullRequestPostsComments(t *testing.T) {
	f := newFixture()
	base, err := domain.NewCommitSHA(sha('b'))
	require.NoError(t, err)
	head, err := domain.NewCommitSHA(sha('c'))
	require.NoError(t, err)
	f.resolver.rng = domain.NewCommitRange(base, head)
	f.scanner.result = gitleaks.Result{Status: gitleaks.ExitFindings, ReportPath: "results.sarif"}
	f.extractor.findings = testFindings()
	f.poster.stats = domain.CommentStats{Posted: 1}

	opts := scan.Options{EnableComments: true, NotifyUsers: []string{"@security"}}
	outcome := f.orchestrator(opts).Run(context.Background(), prEvent())

	assert.Equal(t, domain.StatusFindingsDetected, outcome.Code)
	assert.Len(t, outcome.Findings, 1)
	assert.Equal(t, domain.CommentStats{Posted: 1}, outcome.Comments)
	require.True(t, f.poster.called)
	assert.Equal(t, "acme", f.poster.owner)
	assert.Equal(t, "widgets", f.poster.repo)
	assert.Equal(t, 42, f.poster.number)
	assert.Equal(t, []string{"@security"}, f.poster.mentions)
	assert.Equal(t, "results.sarif", f.extractor.path)
}

func TestRunFindingsOnPushSkipsComments(t *testing.T) {
	f := newFixture()
	f.scanner.result = gitleaks.Result{Status: gitleaks.ExitFindings, ReportPath: "results.sarif"}
	f.extractor.findings = testFindings()

	outcome := f.orchestrator(scan.Options{EnableComments: true}).Run(context.Background(), pushEvent())

	assert.Equal(t, domain.StatusFindingsDetected, outcome.Code)
	assert.False(t, f.poster.called)
}

func TestRunCommentsDisabled(t *testing.T) {
	f := newFixture()
	f.scanner.result = gitleaks.Result{Status: gitleaks.ExitFindings, ReportPath: "results.sarif"}
	f.extractor.findings = testFindings()

	outcome := f.orchestrator(scan.Options{EnableComments: false}).Run(context.Background(), prEvent())

	assert.Equal(t, domain.StatusFindingsDetected, outcome.Code)
	assert.False(t, f.poster.called)
	assert.Equal(t, domain.CommentStats{}, outcome.Comments)
}

func TestRunEmptyPushIsClean(t *testing.T) {
	f := newFixture()
	f.resolver.err = domain.ErrNoCommits

	outcome := f.orchestrator(scan.Options{}).Run(context.Background(), pushEvent())

	assert.Equal(t, domain.StatusClean, outcome.Code)
	assert.False(t, f.scanner.called)
}

func TestRunFatalResolutionError(t *testing.T) {
	f := newFixture()
	f.resolver.err = domain.ErrNoPullRequestCommits

	outcome := f.orchestrator(scan.Options{}).Run(context.Background(), prEvent())

	assert.Equal(t, domain.StatusExecutionError, outcome.Code)
	assert.False(t, f.scanner.called)
	assert.False(t, f.poster.called)
}

func TestRunScannerTimeoutIsExecutionError(t *testing.T) {
	f := newFixture()
	f.scanner.err = domain.ErrScannerTimeout

	outcome := f.orchestrator(scan.Options{}).Run(context.Background(), pushEvent())

	assert.Equal(t, domain.StatusExecutionError, outcome.Code)
}

func TestRunScannerErrorStatus(t *testing.T) {
	f := newFixture()
	f.scanner.result = gitleaks.Result{Status: gitleaks.ExitError, Stderr: "fatal: bad revision"}

	outcome := f.orchestrator(scan.Options{}).Run(context.Background(), pushEvent())

	assert.Equal(t, domain.StatusExecutionError, outcome.Code)
}

func TestRunMalformedReportIsExecutionError(t *testing.T) {
	f := newFixture()
	f.scanner.result = gitleaks.Result{Status: gitleaks.ExitFindings, ReportPath: "results.sarif"}
	f.extractor.err = domain.ErrMalformedReport

	outcome := f.orchestrator(scan.Options{}).Run(context.Background(), pushEvent())

	assert.Equal(t, domain.StatusExecutionError, outcome.Code)
}

func TestRunFindingsExitWithEmptyReportIsClean(t *testing.T) {
	f := newFixture()
	f.scanner.result = gitleaks.Result{Status: gitleaks.ExitFindings, ReportPath: "results.sarif"}
	f.extractor.findings = nil

	outcome := f.orchestrator(scan.Options{}).Run(context.Background(), pushEvent())

	assert.Equal(t, domain.StatusClean, outcome.Code)
}

func TestRunAccountLookupFailureDoesNotAbort(t *testing.T) {
	f := newFixture()
	f.accounts.err = errors.New("HTTP 500")

	outcome := f.orchestrator(scan.Options{}).Run(context.Background(), pushEvent())

	assert.Equal(t, domain.StatusClean, outcome.Code)
	assert.Equal(t, "acme", f.accounts.owner)
	assert.True(t, f.scanner.called)
}

func TestRunPassesLogOptsToScanner(t *testing.T) {
	f := newFixture()
	base, err := domain.NewCommitSHA(sha('1'))
	require.NoError(t, err)
	head, err := domain.NewCommitSHA(sha('2'))
	require.NoError(t, err)
	f.resolver.rng = domain.NewCommitRange(base, head)

	f.orchestrator(scan.Options{}).Run(context.Background(), pushEvent())

	want := "--no-merges --first-parent " + sha('1') + "^.." + sha('2')
	assert.Equal(t, want, f.scanner.opts)
}

func TestRunForwardsOverrideBase(t *testing.T) {
	f := newFixture()
	f.orchestrator(scan.Options{OverrideBase: sha('9')}).Run(context.Background(), pushEvent())
	assert.Equal(t, sha('9'), f.resolver.base)
}

func TestRunNilAccountLookup(t *testing.T) {
	f := newFixture()
	o := scan.NewOrchestrator(f.resolver, f.scanner, f.extractor, nil, nil, nil, scan.Options{})

	outcome := o.Run(context.Background(), pushEvent())

	assert.Equal(t, domain.StatusClean, outcome.Code)
}
