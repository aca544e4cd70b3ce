package main

import (
	"context"
	"fmt"

	"github.com/bkyoung/secret-scout/internal/adapter/event"
	githubadapter "github.com/bkyoung/secret-scout/internal/adapter/github"
	"github.com/bkyoung/secret-scout/internal/adapter/gitleaks"
	"github.com/bkyoung/secret-scout/internal/adapter/httpx"
	"github.com/bkyoung/secret-scout/internal/adapter/sarif"
	"github.com/bkyoung/secret-scout/internal/config"
	"github.com/bkyoung/secret-scout/internal/domain"
	"github.com/bkyoung/secret-scout/internal/usecase/comments"
	"github.com/bkyoung/secret-scout/internal/usecase/resolve"
	"github.com/bkyoung/secret-scout/internal/usecase/scan"
)

// app assembles the collaborators for one scan invocation.
type app struct {
	cfg    config.Config
	logger *httpx.Logger
}

// Scan parses the trigger event, wires the orchestrator, and runs it.
// Setup failures surface as errors; scan failures are already folded
// into the outcome's status code.
func (a *app) Scan(ctx context.Context) (domain.ScanOutcome, error) {
	parser := event.NewParser(a.cfg.Repository, a.cfg.RepositoryOwner)
	ev, err := parser.ParseFile(a.cfg.EventPath, a.cfg.EventName)
	if err != nil {
		return domain.ErrorOutcome(), fmt.Errorf("parse event payload: %w", err)
	}

	var (
		client   *githubadapter.Client
		accounts scan.AccountLookup
		poster   scan.CommentPoster
		lister   resolve.CommitLister
	)
	if a.cfg.GitHubToken != "" {
		client = githubadapter.NewClient(a.cfg.GitHubToken, githubadapter.WithLogger(a.logger))
		accounts = client
		lister = client
		poster = comments.NewService(client, a.logger)
	}

	resolver := resolve.NewResolver(lister, a.logger)
	runner := gitleaks.NewRunner(gitleaks.Config{
		BinaryPath: a.cfg.ScannerPath,
		Workspace:  a.cfg.Workspace,
		ReportPath: a.cfg.ReportPath,
		ConfigPath: a.cfg.ScannerConfig,
		Timeout:    a.cfg.ScanTimeout,
	}, a.logger)
	extractor := sarif.NewExtractor(a.logger)

	orchestrator := scan.NewOrchestrator(resolver, runner, extractor, accounts, poster, a.logger, scan.Options{
		OverrideBase:   a.cfg.BaseRef,
		EnableComments: a.cfg.EnableComments,
		NotifyUsers:    a.cfg.NotifyUsers,
	})

	return orchestrator.Run(ctx, ev), nil
}
