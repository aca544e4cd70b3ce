// Package config loads and validates the tool's configuration from the
// hosting environment.
package config

import (
	"fmt"
	"time"
)

// Config is the complete runtime configuration.
type Config struct {
	// GitHubToken is the bearer credential for API access. Its value is
	// never logged or echoed in error messages.
	GitHubToken string `mapstructure:"github_token"`

	// Workspace is the repository checkout directory.
	Workspace string `mapstructure:"workspace"`

	// EventPath locates the trigger-event JSON payload.
	EventPath string `mapstructure:"event_path"`

	// EventName names the trigger event (push, pull_request, ...).
	EventName string `mapstructure:"event_name"`

	// Repository is "owner/name".
	Repository string `mapstructure:"repository"`

	// RepositoryOwner is the owner half of Repository.
	RepositoryOwner string `mapstructure:"repository_owner"`

	// EnableComments toggles review-comment posting on pull requests.
	EnableComments bool `mapstructure:"enable_comments"`

	// NotifyUsers are mentioned in every posted comment.
	NotifyUsers []string `mapstructure:"notify_users"`

	// BaseRef optionally overrides the computed scan-range base.
	BaseRef string `mapstructure:"base_ref"`

	// ScannerPath locates the scanner binary.
	ScannerPath string `mapstructure:"scanner_path"`

	// ScannerConfig optionally points at a scanner rule config file.
	ScannerConfig string `mapstructure:"scanner_config"`

	// ReportPath is where the scanner writes its report.
	ReportPath string `mapstructure:"report_path"`

	// ScanTimeout is the wall-clock budget for the scanner subprocess.
	ScanTimeout time.Duration `mapstructure:"scan_timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is "human", "json", or "" for TTY auto-detection.
	LogFormat string `mapstructure:"log_format"`
}

// Validate checks the required fields. The API token is mandatory only
// for pull-request events, where commenting and commit fetching need it.
func (c Config) Validate() error {
	required := map[string]string{
		"GITHUB_WORKSPACE":        c.Workspace,
		"GITHUB_EVENT_PATH":       c.EventPath,
		"GITHUB_EVENT_NAME":       c.EventName,
		"GITHUB_REPOSITORY":       c.Repository,
		"GITHUB_REPOSITORY_OWNER": c.RepositoryOwner,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("missing required environment variable: %s", name)
		}
	}

	if c.EventName == "pull_request" && c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN is required for pull_request events")
	}

	return nil
}
