package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	orchestrators "github.com/reallocate-eu/geoflow/internal/domain-orchestrators"
)

// writeValidationReport renders the per-file validation outcomes as markdown
func writeValidationReport(path string, summary *orchestrators.RunSummary) error {
	var b strings.Builder
	b.WriteString("# Validation Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", summary.RunID)
	fmt.Fprintf(&b, "- Date: %s\n", summary.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Files: %d discovered, %d passed, %d failed, %d errored\n\n",
		summary.Discovered, summary.Passed, summary.Failed, summary.Errored)

	for _, result := range sortedResults(summary) {
		if result.Err != nil {
			fmt.Fprintf(&b, "## %s\n\n**Status:** ERROR\n\n%s\n\n", result.File.Name, result.Err)
			continue
		}
		report := result.Report
		fmt.Fprintf(&b, "## %s\n\n", result.File.Name)
		fmt.Fprintf(&b, "**Status:** %s (%d/%d checks passed, %.0f%%)\n\n",
			report.Status, report.PassedChecks, report.TotalChecks, report.SuccessRate()*100)
		b.WriteString("| Check | Category | Result | Details |\n")
		b.WriteString("|-------|----------|--------|---------|\n")
		for _, check := range report.Checks {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				check.Name, check.Category, strings.ToUpper(string(check.Status)), check.Message)
		}
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// writePublishReport renders the plan/publish outcomes as markdown
func writePublishReport(path string, summary *orchestrators.RunSummary) error {
	var b strings.Builder
	b.WriteString("# Publish Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s` (%s)\n", summary.RunID, summary.Mode)
	fmt.Fprintf(&b, "- Date: %s\n", summary.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Files: %d published, %d skipped\n\n", summary.Published, summary.Skipped)

	b.WriteString("| File | Slug | Action | Version | Outcome |\n")
	b.WriteString("|------|------|--------|---------|--------|\n")
	for _, result := range sortedResults(summary) {
		if result.Plan == nil {
			outcome := "not planned"
			if result.Err != nil {
				outcome = result.Err.Error()
			}
			fmt.Fprintf(&b, "| %s | - | - | - | %s |\n", result.File.Name, outcome)
			continue
		}
		outcome := result.Plan.Reason
		switch {
		case result.PublishErr != nil:
			outcome = fmt.Sprintf("failed: %v", result.PublishErr)
		case result.Record != nil:
			outcome = fmt.Sprintf("published as %s", result.Record.DatasetID)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n",
			result.File.Name, result.Plan.Slug, result.Plan.Action, result.Plan.Version, outcome)
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// summaryJSON is the machine-readable run summary schema
type summaryJSON struct {
	RunID      string            `json:"run_id"`
	Mode       string            `json:"mode"`
	StartedAt  time.Time         `json:"started_at"`
	DurationMS int64             `json:"duration_ms"`
	Discovered int               `json:"discovered"`
	Passed     int               `json:"passed"`
	Failed     int               `json:"failed"`
	Published  int               `json:"published"`
	Skipped    int               `json:"skipped"`
	Errored    int               `json:"errored"`
	Files      []fileSummaryJSON `json:"files"`
}

type fileSummaryJSON struct {
	File        string  `json:"file"`
	PilotID     string  `json:"pilot_id,omitempty"`
	City        string  `json:"city,omitempty"`
	Status      string  `json:"status"`
	ChecksTotal int     `json:"checks_total"`
	ChecksOK    int     `json:"checks_passed"`
	SuccessRate float64 `json:"success_rate"`
	Slug        string  `json:"slug,omitempty"`
	Action      string  `json:"action,omitempty"`
	Version     int     `json:"version,omitempty"`
	ContentHash string  `json:"content_hash,omitempty"`
	DatasetID   string  `json:"dataset_id,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// writeSummaryJSON writes the machine-readable run summary
func writeSummaryJSON(path string, summary *orchestrators.RunSummary) error {
	out := summaryJSON{
		RunID:      summary.RunID,
		Mode:       string(summary.Mode),
		StartedAt:  summary.StartedAt,
		DurationMS: summary.Duration.Milliseconds(),
		Discovered: summary.Discovered,
		Passed:     summary.Passed,
		Failed:     summary.Failed,
		Published:  summary.Published,
		Skipped:    summary.Skipped,
		Errored:    summary.Errored,
	}
	for _, result := range sortedResults(summary) {
		file := fileSummaryJSON{
			File:    result.File.Name,
			PilotID: result.File.PilotID,
			City:    result.File.CityName,
		}
		switch {
		case result.Err != nil:
			file.Status = "ERROR"
			file.Error = result.Err.Error()
		default:
			file.Status = string(result.Report.Status)
			file.ChecksTotal = result.Report.TotalChecks
			file.ChecksOK = result.Report.PassedChecks
			file.SuccessRate = result.Report.SuccessRate()
		}
		if result.Plan != nil {
			file.Slug = result.Plan.Slug
			file.Action = string(result.Plan.Action)
			file.Version = result.Plan.Version
			file.ContentHash = result.Plan.ContentHash
		}
		if result.Record != nil {
			file.DatasetID = result.Record.DatasetID
		}
		if result.PublishErr != nil {
			file.Error = result.PublishErr.Error()
		}
		out.Files = append(out.Files, file)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// sortedResults returns the run results ordered by file name
func sortedResults(summary *orchestrators.RunSummary) []orchestrators.FileResult {
	results := make([]orchestrators.FileResult, len(summary.Results))
	copy(results, summary.Results)
	sort.Slice(results, func(i, j int) bool {
		return results[i].File.Name < results[j].File.Name
	})
	return results
}

// printRunSummary prints a human-readable closing summary to stdout
func printRunSummary(summary *orchestrators.RunSummary) {
	fmt.Printf("\nRun %s (%s) finished in %s\n", summary.RunID, summary.Mode, summary.Duration.Round(time.Millisecond))
	fmt.Printf("  discovered: %d\n  passed:     %d\n  failed:     %d\n",
		summary.Discovered, summary.Passed, summary.Failed)
	if summary.Mode != orchestrators.ModeValidate {
		fmt.Printf("  published:  %d\n  skipped:    %d\n", summary.Published, summary.Skipped)
	}
	if summary.Errored > 0 {
		fmt.Printf("  errored:    %d\n", summary.Errored)
	}
	for _, result := range sortedResults(summary) {
		status := "ERROR"
		if result.Report != nil {
			status = string(result.Report.Status)
		}
		fmt.Printf("  - %-40s %s\n", result.File.Name, status)
	}
}
