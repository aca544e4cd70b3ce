package resolve

import (
	"fmt"

	"github.com/bkyoung/secret-scout/internal/domain"
)

// LogOpts maps a resolved CommitRange to the scanner's git log-opts
// expression. It is pure: single-commit ranges scan only the most recent
// commit, multi-commit ranges use a first-parent, no-merges window, and
// full-history scans pass no log options at all.
func LogOpts(r domain.CommitRange) string {
	if r.Mode == domain.ScanFullHistory {
		return ""
	}
	if r.SingleCommit {
		return "-1"
	}
	return fmt.Sprintf("--no-merges --first-parent %s^..%s", r.Base, r.Head)
}
