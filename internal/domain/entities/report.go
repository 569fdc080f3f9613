package entities

import "time"

// ReportStatus is the overall verdict for one file
type ReportStatus string

// Overall validation verdicts
const (
	ReportPass ReportStatus = "PASS"
	ReportFail ReportStatus = "FAIL"
)

// ValidationReport aggregates all checks for one file in one run
type ValidationReport struct {
	File           SpatialFile
	Checks         []Check
	TotalChecks    int
	PassedChecks   int
	FailedChecks   int
	WarningChecks  int
	Status         ReportStatus
	ProcessingTime time.Duration
	Timestamp      time.Time
}

// SuccessRate returns the fraction of checks that passed
func (r *ValidationReport) SuccessRate() float64 {
	if r.TotalChecks == 0 {
		return 0.0
	}
	return float64(r.PassedChecks) / float64(r.TotalChecks)
}

// FailedByCategory returns the failed checks of a given category
func (r *ValidationReport) FailedByCategory(category CheckCategory) []Check {
	var failed []Check
	for _, c := range r.Checks {
		if c.Category == category && c.Status == CheckFail {
			failed = append(failed, c)
		}
	}
	return failed
}
