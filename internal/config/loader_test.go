package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRunnerEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "ghp_testtoken")
	t.Setenv("GITHUB_WORKSPACE", t.TempDir())
	t.Setenv("GITHUB_EVENT_PATH", "/tmp/event.json")
	t.Setenv("GITHUB_EVENT_NAME", "push")
	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")
	t.Setenv("GITHUB_REPOSITORY_OWNER", "acme")
}

func TestLoadDefaults(t *testing.T) {
	setRunnerEnv(t)

	cfg, err := Load(LoaderOptions{})
	require.NoError(t, err)

	assert.Equal(t, "ghp_testtoken", cfg.GitHubToken)
	assert.Equal(t, "acme/widgets", cfg.Repository)
	assert.Equal(t, "acme", cfg.RepositoryOwner)
	assert.True(t, cfg.EnableComments)
	assert.Nil(t, cfg.NotifyUsers)
	assert.Equal(t, "gitleaks", cfg.ScannerPath)
	assert.Equal(t, "results.sarif", cfg.ReportPath)
	assert.Equal(t, 10*time.Minute, cfg.ScanTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.ScannerConfig)
}

func TestLoadOverrides(t *testing.T) {
	setRunnerEnv(t)
	t.Setenv("SCOUT_ENABLE_COMMENTS", "false")
	t.Setenv("SCOUT_NOTIFY_USER_LIST", "alice, @bob ,carol")
	t.Setenv("SCOUT_BASE_REF", "0123456789012345678901234567890123456789")
	t.Setenv("SCOUT_SCANNER_PATH", "/usr/local/bin/gitleaks")
	t.Setenv("SCOUT_SCAN_TIMEOUT", "2m")
	t.Setenv("SCOUT_LOG_LEVEL", "debug")
	t.Setenv("SCOUT_LOG_FORMAT", "json")

	cfg, err := Load(LoaderOptions{})
	require.NoError(t, err)

	assert.False(t, cfg.EnableComments)
	assert.Equal(t, []string{"@alice", "@bob", "@carol"}, cfg.NotifyUsers)
	assert.Equal(t, "0123456789012345678901234567890123456789", cfg.BaseRef)
	assert.Equal(t, "/usr/local/bin/gitleaks", cfg.ScannerPath)
	assert.Equal(t, 2*time.Minute, cfg.ScanTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadMissingRequired(t *testing.T) {
	setRunnerEnv(t)
	t.Setenv("GITHUB_REPOSITORY", "")

	_, err := Load(LoaderOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_REPOSITORY")
}

func TestLoadTokenRequiredForPullRequest(t *testing.T) {
	setRunnerEnv(t)
	t.Setenv("GITHUB_EVENT_NAME", "pull_request")
	t.Setenv("GITHUB_TOKEN", "")

	_, err := Load(LoaderOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestLoadTokenOptionalForPush(t *testing.T) {
	setRunnerEnv(t)
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := Load(LoaderOptions{})
	require.NoError(t, err)
	assert.Empty(t, cfg.GitHubToken)
}

func TestLoadInvalidBoolean(t *testing.T) {
	setRunnerEnv(t)
	t.Setenv("SCOUT_ENABLE_COMMENTS", "maybe")

	_, err := Load(LoaderOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCOUT_ENABLE_COMMENTS")
}

func TestLoadDetectsScannerConfig(t *testing.T) {
	setRunnerEnv(t)
	workspace := os.Getenv("GITHUB_WORKSPACE")
	rulesPath := filepath.Join(workspace, "gitleaks.toml")
	require.NoError(t, os.WriteFile(rulesPath, []byte("[allowlist]\n"), 0o644))

	cfg, err := Load(LoaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, rulesPath, cfg.ScannerConfig)
}

func TestLoadExplicitScannerConfigWins(t *testing.T) {
	setRunnerEnv(t)
	t.Setenv("SCOUT_SCANNER_CONFIG", "/etc/scout/rules.toml")

	cfg, err := Load(LoaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/etc/scout/rules.toml", cfg.ScannerConfig)
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		raw      string
		fallback bool
		want     bool
		wantErr  bool
	}{
		{raw: "true", want: true},
		{raw: "TRUE", want: true},
		{raw: "1", want: true},
		{raw: "false", want: false},
		{raw: "0", want: false},
		{raw: " false ", want: false},
		{raw: "", fallback: true, want: true},
		{raw: "", fallback: false, want: false},
		{raw: "yes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseBool(tt.raw, tt.fallback)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUserList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "whitespace only", input: "  ", want: nil},
		{name: "single user", input: "alice", want: []string{"@alice"}},
		{name: "already mentioned", input: "@alice", want: []string{"@alice"}},
		{name: "mixed with spaces", input: "alice, @bob , carol", want: []string{"@alice", "@bob", "@carol"}},
		{name: "skips empty entries", input: "alice,,bob,", want: []string{"@alice", "@bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUserList(tt.input))
		})
	}
}
