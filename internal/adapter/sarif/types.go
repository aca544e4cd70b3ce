// Package sarif parses the scanner's SARIF 2.1.0 report and extracts typed
// findings with stable fingerprints.
package sarif

// Report is the root SARIF document, reduced to the fields this tool
// consumes. Structural validation happens once at this boundary; internal
// code never re-checks optionality.
type Report struct {
	Schema  string `json:"$schema,omitempty"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run is a single run of the analysis tool.
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver is the analysis tool itself.
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Result is a single detection.
type Result struct {
	RuleID              string               `json:"ruleId"`
	Message             Message              `json:"message"`
	Locations           []Location           `json:"locations"`
	PartialFingerprints *PartialFingerprints `json:"partialFingerprints,omitempty"`
}

// Message is the human-readable text of a result.
type Message struct {
	Text string `json:"text"`
}

// Location is where a result was found.
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation is a position in source.
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

// ArtifactLocation identifies the file.
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region is the position within the file.
type Region struct {
	StartLine int `json:"startLine"`
}

// PartialFingerprints carries the commit metadata the scanner attaches to
// each result. All fields are optional in the wire format; missing values
// default to the empty string during extraction.
type PartialFingerprints struct {
	CommitSHA string `json:"commitSha"`
	Author    string `json:"author"`
	Email     string `json:"email"`
	Date      string `json:"date"`
}
