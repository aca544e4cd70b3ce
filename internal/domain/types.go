package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var commitSHAPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// CommitSHA is a full 40-character lowercase hex commit identifier.
// Values are validated on construction; an invalid SHA is rejected rather
// than truncated or normalized.
type CommitSHA string

// NewCommitSHA validates and wraps a raw commit identifier.
func NewCommitSHA(raw string) (CommitSHA, error) {
	if !commitSHAPattern.MatchString(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCommitSHA, raw)
	}
	return CommitSHA(raw), nil
}

// String returns the full hex form.
func (s CommitSHA) String() string { return string(s) }

// Short returns the first seven characters, the conventional display form.
func (s CommitSHA) Short() string {
	if len(s) >= 7 {
		return string(s[:7])
	}
	return string(s)
}

// ScanMode states how much history the scanner should walk.
type ScanMode int

const (
	// ScanRange scans the commits between Base and Head.
	ScanRange ScanMode = iota
	// ScanFullHistory scans the entire repository history; Base and Head
	// are unset.
	ScanFullHistory
)

// CommitRange is the resolved commit window for a scan.
// SingleCommit is true iff Base == Head.
type CommitRange struct {
	Base         CommitSHA
	Head         CommitSHA
	Mode         ScanMode
	SingleCommit bool
}

// NewCommitRange builds a range-mode CommitRange from validated SHAs.
func NewCommitRange(base, head CommitSHA) CommitRange {
	return CommitRange{
		Base:         base,
		Head:         head,
		Mode:         ScanRange,
		SingleCommit: base == head,
	}
}

// FullHistoryRange builds the range used for manual and scheduled scans.
func FullHistoryRange() CommitRange {
	return CommitRange{Mode: ScanFullHistory}
}

// Finding is a single secret detection extracted from a scan report.
// It is immutable once created; the fingerprint is a pure function of the
// four identity fields and does not depend on scan-run identity or on the
// order results appeared in the report.
type Finding struct {
	RuleID      string
	FilePath    string
	StartLine   int
	CommitSHA   string
	Author      string
	Email       string
	Date        string
	Fingerprint string
}

// Fingerprint derives the stable identity string for a detection.
// Two findings with equal fingerprints are the same logical detection.
func FingerprintOf(commitSHA, filePath, ruleID string, startLine int) string {
	return fmt.Sprintf("%s:%s:%s:%d", commitSHA, filePath, ruleID, startLine)
}

// NewFinding constructs a Finding, computing its fingerprint.
func NewFinding(ruleID, filePath string, startLine int, commitSHA, author, email, date string) Finding {
	return Finding{
		RuleID:      ruleID,
		FilePath:    filePath,
		StartLine:   startLine,
		CommitSHA:   commitSHA,
		Author:      author,
		Email:       email,
		Date:        date,
		Fingerprint: FingerprintOf(commitSHA, filePath, ruleID, startLine),
	}
}

// ShortSHA returns the abbreviated commit identifier for display.
func (f Finding) ShortSHA() string {
	if len(f.CommitSHA) >= 7 {
		return f.CommitSHA[:7]
	}
	return f.CommitSHA
}

// CommitURL links to the commit that introduced the finding.
func (f Finding) CommitURL(repoURL string) string {
	return fmt.Sprintf("%s/commit/%s", repoURL, f.CommitSHA)
}

// SecretURL links to the exact line of the finding at the introducing commit.
func (f Finding) SecretURL(repoURL string) string {
	return fmt.Sprintf("%s/blob/%s/%s#L%d", repoURL, f.CommitSHA, f.FilePath, f.StartLine)
}

// FileURL links to the file at the introducing commit.
func (f Finding) FileURL(repoURL string) string {
	return fmt.Sprintf("%s/blob/%s/%s", repoURL, f.CommitSHA, f.FilePath)
}

// ReviewComment is a comment candidate built from a Finding, pre-posting.
type ReviewComment struct {
	Body     string `json:"body"`
	CommitID string `json:"commit_id"`
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Side     string `json:"side"`
}

// ExistingComment is a comment fetched from the change request, used only
// for duplicate comparison.
type ExistingComment struct {
	Body     string `json:"body"`
	Path     string `json:"path"`
	Line     int    `json:"line"`
	CommitID string `json:"commit_id"`
}

// CommentStats aggregates the outcome of a comment-posting pass. Callers
// use it for reporting only; it never alters control flow.
type CommentStats struct {
	Posted  int
	Skipped int
	Failed  int
}

// String renders the stats for log output.
func (s CommentStats) String() string {
	return fmt.Sprintf("posted=%d skipped=%d failed=%d", s.Posted, s.Skipped, s.Failed)
}

// AccountType distinguishes user accounts from organizations.
type AccountType int

const (
	AccountUser AccountType = iota
	AccountOrganization
)

// String returns the API wire name of the account type.
func (t AccountType) String() string {
	if t == AccountOrganization {
		return "Organization"
	}
	return "User"
}

// StatusCode is the terminal state of an orchestration run.
type StatusCode int

const (
	StatusClean StatusCode = iota
	StatusFindingsDetected
	StatusExecutionError
)

// String names the status for logs and summaries.
func (c StatusCode) String() string {
	switch c {
	case StatusClean:
		return "clean"
	case StatusFindingsDetected:
		return "findings-detected"
	case StatusExecutionError:
		return "execution-error"
	default:
		return "unknown"
	}
}

// ScanOutcome is the final result surfaced to the caller: exactly one of
// clean, findings detected (with the findings and comment stats), or
// execution error.
type ScanOutcome struct {
	Code     StatusCode
	Findings []Finding
	Comments CommentStats
}

// CleanOutcome reports a scan that found nothing.
func CleanOutcome() ScanOutcome {
	return ScanOutcome{Code: StatusClean}
}

// FindingsOutcome reports a scan with detections.
func FindingsOutcome(findings []Finding, stats CommentStats) ScanOutcome {
	return ScanOutcome{Code: StatusFindingsDetected, Findings: findings, Comments: stats}
}

// ErrorOutcome reports a scan that could not complete.
func ErrorOutcome() ScanOutcome {
	return ScanOutcome{Code: StatusExecutionError}
}

// shellMetacharacters are rejected in user-supplied refs because the
// resolved range is later serialized into the scanner's argument list.
const shellMetacharacters = "$`;|&<>(){}[]!*?~#\\\"' \t\n"

// ContainsShellMetacharacters reports whether a ref value carries
// characters that could escape an argument list.
func ContainsShellMetacharacters(ref string) bool {
	return strings.ContainsAny(ref, shellMetacharacters)
}
