// Package gitleaks runs the external scanner binary. The orchestrator
// consumes only the exit status and the report file path.
package gitleaks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/bkyoung/secret-scout/internal/adapter/httpx"
	"github.com/bkyoung/secret-scout/internal/domain"
)

// ExitStatus is the scanner's meaningful outcome.
type ExitStatus int

const (
	// ExitClean means the scan completed and found nothing.
	ExitClean ExitStatus = iota
	// ExitFindings means the scan completed and wrote findings to the
	// report.
	ExitFindings
	// ExitError means the scanner could not complete.
	ExitError
)

// scanner exit codes: 0 clean, 1 execution error, 2 findings.
const findingsExitCode = 2

// Result is what a scan run hands back to the orchestrator.
type Result struct {
	Status     ExitStatus
	ReportPath string
	Stderr     string
}

// Config describes one scanner invocation.
type Config struct {
	// BinaryPath locates the scanner executable. Obtaining the binary
	// (download, cache) is someone else's job.
	BinaryPath string
	// Workspace is the repository checkout to scan.
	Workspace string
	// ReportPath is where the scanner writes its report.
	ReportPath string
	// ConfigPath optionally points at a scanner rule config.
	ConfigPath string
	// Timeout is the wall-clock budget for the subprocess. Expiry is a
	// fatal execution error, never retried.
	Timeout time.Duration
}

// Runner executes the scanner.
type Runner struct {
	cfg    Config
	logger *httpx.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg Config, logger *httpx.Logger) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run executes a scan over the given log-opts window. An empty logOpts
// scans the full history.
func (r *Runner) Run(ctx context.Context, logOpts string) (Result, error) {
	head, err := r.verifyWorkspace()
	if err != nil {
		return Result{}, err
	}

	args := BuildArguments(r.cfg.ReportPath, r.cfg.ConfigPath, logOpts)

	r.logger.Info(ctx, "executing scanner", httpx.Fields{
		"binary":   r.cfg.BinaryPath,
		"head":     head,
		"log_opts": logOpts,
	})

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.cfg.BinaryPath, args...)
	cmd.Dir = r.cfg.Workspace

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Result{}, fmt.Errorf("%w after %s", domain.ErrScannerTimeout, r.cfg.Timeout)
	}

	if err == nil {
		return Result{Status: ExitClean, ReportPath: r.cfg.ReportPath}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == findingsExitCode {
		return Result{Status: ExitFindings, ReportPath: r.cfg.ReportPath, Stderr: stderr.String()}, nil
	}

	r.logger.Error(ctx, "scanner execution failed", httpx.Fields{
		"error":  err.Error(),
		"stderr": stderr.String(),
	})

	return Result{Status: ExitError, Stderr: stderr.String()},
		fmt.Errorf("%w: %v", domain.ErrScannerFailed, err)
}

// verifyWorkspace confirms the workspace is a git repository and returns
// the current HEAD for logging, empty when unborn.
func (r *Runner) verifyWorkspace() (string, error) {
	repo, err := git.PlainOpen(r.cfg.Workspace)
	if err != nil {
		return "", fmt.Errorf("%w: workspace %s is not a git repository: %v", domain.ErrScannerFailed, r.cfg.Workspace, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", nil
	}
	return head.Hash().String()[:7], nil
}

// BuildArguments assembles the scanner's argument list. logOpts arrives
// pre-validated: the resolver rejects refs carrying shell metacharacters.
func BuildArguments(reportPath, configPath, logOpts string) []string {
	args := []string{
		"detect",
		"--redact",
		"-v",
		"--exit-code=2",
		"--report-format=sarif",
		"--report-path=" + reportPath,
		"--log-level=debug",
	}

	if configPath != "" {
		args = append(args, "--config="+configPath)
	}
	if logOpts != "" {
		args = append(args, "--log-opts="+logOpts)
	}

	return args
}
