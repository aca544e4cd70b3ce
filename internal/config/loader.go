package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoaderOptions describes how configuration should be discovered.
type LoaderOptions struct {
	// EnvPrefix applies to the tool's own settings. GITHUB_* variables
	// are always bound without a prefix because the hosting runner sets
	// them that way.
	EnvPrefix string
}

// Load returns the merged configuration from the environment.
func Load(opts LoaderOptions) (Config, error) {
	v := viper.New()

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "SCOUT"
	}

	// Runner-provided context. These keys are fixed by the platform and
	// deliberately bypass the prefix.
	bind := func(key, env string) {
		_ = v.BindEnv(key, env)
	}
	bind("github_token", "GITHUB_TOKEN")
	bind("workspace", "GITHUB_WORKSPACE")
	bind("event_path", "GITHUB_EVENT_PATH")
	bind("event_name", "GITHUB_EVENT_NAME")
	bind("repository", "GITHUB_REPOSITORY")
	bind("repository_owner", "GITHUB_REPOSITORY_OWNER")

	// Tool settings.
	bind("enable_comments", prefix+"_ENABLE_COMMENTS")
	bind("notify_user_list", prefix+"_NOTIFY_USER_LIST")
	bind("base_ref", prefix+"_BASE_REF")
	bind("scanner_path", prefix+"_SCANNER_PATH")
	bind("scanner_config", prefix+"_SCANNER_CONFIG")
	bind("report_path", prefix+"_REPORT_PATH")
	bind("scan_timeout", prefix+"_SCAN_TIMEOUT")
	bind("log_level", prefix+"_LOG_LEVEL")
	bind("log_format", prefix+"_LOG_FORMAT")

	setDefaults(v)

	cfg := Config{
		GitHubToken:     v.GetString("github_token"),
		Workspace:       v.GetString("workspace"),
		EventPath:       v.GetString("event_path"),
		EventName:       v.GetString("event_name"),
		Repository:      v.GetString("repository"),
		RepositoryOwner: v.GetString("repository_owner"),
		BaseRef:         v.GetString("base_ref"),
		ScannerPath:     v.GetString("scanner_path"),
		ScannerConfig:   v.GetString("scanner_config"),
		ReportPath:      v.GetString("report_path"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
	}

	enabled, err := parseBool(v.GetString("enable_comments"), true)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s_ENABLE_COMMENTS: %w", prefix, err)
	}
	cfg.EnableComments = enabled

	cfg.NotifyUsers = ParseUserList(v.GetString("notify_user_list"))

	timeout, err := time.ParseDuration(v.GetString("scan_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("parse %s_SCAN_TIMEOUT: %w", prefix, err)
	}
	cfg.ScanTimeout = timeout

	if cfg.ScannerConfig == "" && cfg.Workspace != "" {
		cfg.ScannerConfig = detectScannerConfig(cfg.Workspace)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ParseUserList splits a comma-separated list of usernames, trimming
// whitespace and normalising each entry to a leading "@" mention.
func ParseUserList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var users []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "@") {
			name = "@" + name
		}
		users = append(users, name)
	}
	return users
}

// parseBool accepts true/false and 1/0 in any case.
func parseBool(raw string, fallback bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return fallback, nil
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", raw)
	}
}

// detectScannerConfig looks for a rule config checked into the
// workspace root.
func detectScannerConfig(workspace string) string {
	candidate := filepath.Join(workspace, "gitleaks.toml")
	info, err := os.Stat(candidate)
	if err == nil && !info.IsDir() {
		return candidate
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scanner_path", "gitleaks")
	v.SetDefault("report_path", "results.sarif")
	v.SetDefault("scan_timeout", "10m")
	v.SetDefault("log_level", "info")
}
