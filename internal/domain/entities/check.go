package entities

// CheckCategory classifies a validation check
type CheckCategory string

// Validation check categories
const (
	CategoryStructural CheckCategory = "structural"
	CategoryQuality    CheckCategory = "quality"
	CategoryGeographic CheckCategory = "geographic"
)

// CheckStatus is the outcome of a single validation check
type CheckStatus string

// Validation check outcomes. Indeterminate means the check could not be
// evaluated (e.g. boundary service unavailable) and is distinct from fail.
const (
	CheckPass          CheckStatus = "pass"
	CheckFail          CheckStatus = "fail"
	CheckWarning       CheckStatus = "warning"
	CheckIndeterminate CheckStatus = "indeterminate"
)

// Check is a single validation result, immutable after creation
type Check struct {
	Name     string
	Category CheckCategory
	Status   CheckStatus
	Message  string
}

// Passed returns true for pass and warning outcomes
func (c Check) Passed() bool {
	return c.Status == CheckPass || c.Status == CheckWarning
}
