package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/bkyoung/secret-scout/internal/adapter/cli"
	"github.com/bkyoung/secret-scout/internal/adapter/httpx"
	"github.com/bkyoung/secret-scout/internal/config"
	"github.com/bkyoung/secret-scout/internal/version"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrFindingsDetected) || errors.Is(err, cli.ErrScanFailed) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{EnvPrefix: "SCOUT"})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger := httpx.NewLoggerTo(os.Stderr, httpx.ParseLogLevel(cfg.LogLevel), logFormat(cfg.LogFormat))

	root := cli.NewRootCommand(cli.Dependencies{
		Scanner: &app{cfg: cfg, logger: logger},
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return err
	}
	return nil
}

// logFormat resolves the log output format: an explicit setting wins,
// otherwise interactive terminals get the human format and CI gets JSON.
func logFormat(setting string) httpx.LogFormat {
	switch setting {
	case "human":
		return httpx.LogFormatHuman
	case "json":
		return httpx.LogFormatJSON
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return httpx.LogFormatHuman
	}
	return httpx.LogFormatJSON
}
