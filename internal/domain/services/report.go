package services

import (
	"time"

	"github.com/reallocate-eu/geoflow/internal/domain/entities"
)

// ReportBuilder aggregates per-file checks into a verdict. Pure aggregation;
// the blocking policy for quality failures and indeterminate geographic
// outcomes comes from configuration.
type ReportBuilder struct {
	blockingQuality     bool
	indeterminateBlocks bool
}

// NewReportBuilder creates a report builder with the configured policy
func NewReportBuilder(cfg entities.ValidationConfig) *ReportBuilder {
	return &ReportBuilder{
		blockingQuality:     cfg.BlockingQuality,
		indeterminateBlocks: cfg.IndeterminateBlocks,
	}
}

// Build computes counts and the overall status for one file's checks.
// The rule: fail if any structural check fails, fail if any geographic
// check fails (indeterminate per policy), fail if any blocking quality
// check fails; otherwise pass.
func (b *ReportBuilder) Build(file entities.SpatialFile, checks []entities.Check, started time.Time) *entities.ValidationReport {
	report := &entities.ValidationReport{
		File:           file,
		Checks:         checks,
		TotalChecks:    len(checks),
		ProcessingTime: time.Since(started),
		Timestamp:      time.Now(),
		Status:         entities.ReportPass,
	}

	for _, c := range checks {
		switch c.Status {
		case entities.CheckPass:
			report.PassedChecks++
		case entities.CheckWarning:
			report.PassedChecks++
			report.WarningChecks++
		case entities.CheckFail:
			report.FailedChecks++
		case entities.CheckIndeterminate:
			// counted as neither passed nor failed
		}

		switch c.Category {
		case entities.CategoryStructural:
			if c.Status == entities.CheckFail {
				report.Status = entities.ReportFail
			}
		case entities.CategoryGeographic:
			if c.Status == entities.CheckFail {
				report.Status = entities.ReportFail
			}
			if c.Status == entities.CheckIndeterminate && b.indeterminateBlocks {
				report.Status = entities.ReportFail
			}
		case entities.CategoryQuality:
			if c.Status == entities.CheckFail && b.blockingQuality {
				report.Status = entities.ReportFail
			}
		}
	}

	return report
}
