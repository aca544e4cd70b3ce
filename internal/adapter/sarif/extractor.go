package sarif

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bkyoung/secret-scout/internal/adapter/httpx"
	"github.com/bkyoung/secret-scout/internal/domain"
)

// Extractor parses scan reports into findings.
type Extractor struct {
	logger *httpx.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *httpx.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractFile reads and extracts the report at path. A report that fails
// to parse, or whose top-level shape is absent, is a fatal error: the
// caller cannot safely assume "no findings". A valid report with zero
// results is a clean scan and returns an empty slice.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]domain.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrMalformedReport, path, err)
	}
	return e.Extract(ctx, data)
}

// Extract parses report content and extracts findings. Fingerprints are a
// pure function of each result's identity fields, so byte-identical
// reports yield identical fingerprint sets regardless of result order.
func (e *Extractor) Extract(ctx context.Context, data []byte) ([]domain.Finding, error) {
	report, err := Parse(data)
	if err != nil {
		return nil, err
	}

	findings := make([]domain.Finding, 0)
	for _, run := range report.Runs {
		for _, result := range run.Results {
			if len(result.Locations) == 0 {
				// Anomalous but not fatal: nothing to attach the
				// finding to.
				e.logger.Warn(ctx, "skipping result without locations", httpx.Fields{
					"rule_id": result.RuleID,
				})
				continue
			}

			findings = append(findings, toFinding(result))
		}
	}

	e.logger.Info(ctx, "extracted findings from report", httpx.Fields{
		"findings": len(findings),
	})

	return findings, nil
}

// Parse decodes and structurally validates a report. A document with no
// runs has no top-level shape to trust.
func Parse(data []byte) (*Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReport, err)
	}
	if len(report.Runs) == 0 {
		return nil, fmt.Errorf("%w: no runs in report", domain.ErrMalformedReport)
	}
	return &report, nil
}

// toFinding converts a result. Only the first location is used; missing
// commit metadata defaults to empty strings rather than failing the parse.
func toFinding(result Result) domain.Finding {
	loc := result.Locations[0]
	filePath := loc.PhysicalLocation.ArtifactLocation.URI
	startLine := loc.PhysicalLocation.Region.StartLine

	var commitSHA, author, email, date string
	if fp := result.PartialFingerprints; fp != nil {
		commitSHA = fp.CommitSHA
		author = fp.Author
		email = fp.Email
		date = fp.Date
	}

	return domain.NewFinding(result.RuleID, filePath, startLine, commitSHA, author, email, date)
}
