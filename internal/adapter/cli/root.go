// Package cli builds the cobra command surface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/secret-scout/internal/domain"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ErrFindingsDetected indicates the scan completed and found secrets. The
// host process maps it to a non-zero exit so CI pipelines fail the build.
var ErrFindingsDetected = errors.New("secrets detected")

// ErrScanFailed indicates the scan could not complete.
var ErrScanFailed = errors.New("scan failed")

// Scanner defines the dependency required to run the scan command.
type Scanner interface {
	Scan(ctx context.Context) (domain.ScanOutcome, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Scanner Scanner
	Args    Arguments
	Version string
}

// NewRootCommand constructs the root Cobra command. Running it with no
// subcommand performs a scan; the outcome is reported through sentinel
// errors so the host process controls exit codes.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "scout",
		Short: "Scan repository history for leaked secrets",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return runScan(cmd, deps.Scanner)
	}

	root.AddCommand(scanCommand(deps.Scanner))

	return root
}

func scanCommand(scanner Scanner) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run a secret scan for the current trigger event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, scanner)
		},
	}
}

func runScan(cmd *cobra.Command, scanner Scanner) error {
	if scanner == nil {
		return fmt.Errorf("no scanner configured")
	}

	outcome, err := scanner.Scan(cmd.Context())
	if err != nil {
		return err
	}

	switch outcome.Code {
	case domain.StatusClean:
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no secrets detected")
		return nil
	case domain.StatusFindingsDetected:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d secret(s) detected (%s)\n", len(outcome.Findings), outcome.Comments)
		return ErrFindingsDetected
	default:
		return ErrScanFailed
	}
}
