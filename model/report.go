package model

import "time"

// AnalysisRequest is the instruction handed to the analysis engine for a single run.
type AnalysisRequest struct {
	// Natural-language task description fed to the engine on stdin
	Instruction string `json:"instruction"`
	// Path where the engine is told to write its HTML report
	OutputPath string `json:"output_path"`
}

// AnalysisResult is what the analysis engine produced on a successful exit.
type AnalysisResult struct {
	// Exit status of the engine process
	ExitStatus int `json:"exit_status"`
	// Captured standard output
	Stdout string `json:"stdout"`
	// Captured standard error
	Stderr string `json:"stderr,omitempty"`
	// Whether the expected report file existed and was readable
	ReportPresent bool `json:"report_present"`
	// Contents of the report file, only set when ReportPresent is true
	Report string `json:"report,omitempty"`
	// Wall-clock duration of the engine process
	Duration time.Duration `json:"duration"`
}

// Empty reports whether the result carries no usable text at all.
func (r *AnalysisResult) Empty() bool {
	return r == nil || (r.Stdout == "" && !r.ReportPresent)
}

// ReportKind identifies the type of file found in the report directory
type ReportKind uint8

const (
	ReportKindSummary ReportKind = iota
	ReportKindAnalysis
)

func (k ReportKind) String() string {
	switch k {
	case ReportKindSummary:
		return "summary"
	case ReportKindAnalysis:
		return "analysis"
	}
	return "unknown"
}

// ReportFile is a report previously written to the report directory.
type ReportFile struct {
	Kind ReportKind `json:"kind"`
	// Timestamp parsed from the file name
	Timestamp time.Time `json:"timestamp"`
	Size      uint64    `json:"size"`
	Path      string    `json:"path"`
}
