package domain

import "errors"

// Severity classifies how an error affects the orchestration.
type Severity int

const (
	// SeverityFatal errors abort the run: the result is an execution error.
	SeverityFatal Severity = iota
	// SeverityNonFatal errors degrade gracefully: the run continues with a
	// stated fallback and the error is logged at warning level.
	SeverityNonFatal
	// SeverityExpected conditions are normal terminal states, not errors:
	// they map to a success-shaped result.
	SeverityExpected
)

// String names the severity for log output.
func (s Severity) String() string {
	switch s {
	case SeverityNonFatal:
		return "non-fatal"
	case SeverityExpected:
		return "expected"
	default:
		return "fatal"
	}
}

var (
	// ErrNoCommits marks a push event whose commit list is empty. This is
	// an expected condition: there is nothing to scan.
	ErrNoCommits = errors.New("no commits in push event")

	// ErrNoPullRequestCommits marks a pull-request event whose fetched
	// commit list is empty. A change request must have at least one
	// commit, so this is fatal, unlike the push case.
	ErrNoPullRequestCommits = errors.New("pull request has no commits")

	// ErrUnsupportedEvent marks an event kind this tool does not handle.
	ErrUnsupportedEvent = errors.New("unsupported event type")

	// ErrInvalidCommitSHA marks a value that is not a 40-character
	// lowercase hex commit identifier.
	ErrInvalidCommitSHA = errors.New("invalid commit sha")

	// ErrInvalidOverrideRef marks a base-ref override carrying shell
	// metacharacters.
	ErrInvalidOverrideRef = errors.New("base ref override contains shell metacharacters")

	// ErrMalformedEvent marks an event payload that cannot be parsed.
	ErrMalformedEvent = errors.New("malformed event payload")

	// ErrMalformedReport marks a scan report that fails to parse or whose
	// top-level shape is absent. The caller cannot safely assume "no
	// findings" from such a report.
	ErrMalformedReport = errors.New("malformed scan report")

	// ErrScannerTimeout marks a scanner subprocess that exceeded its
	// wall-clock budget. Not retryable.
	ErrScannerTimeout = errors.New("scanner timed out")

	// ErrScannerFailed marks a scanner subprocess that exited with an
	// execution error.
	ErrScannerFailed = errors.New("scanner execution failed")
)

// SeverityOf classifies an error per the three-tier taxonomy. Errors not
// recognized here default to fatal.
func SeverityOf(err error) Severity {
	switch {
	case errors.Is(err, ErrNoCommits):
		return SeverityExpected
	default:
		return SeverityFatal
	}
}
