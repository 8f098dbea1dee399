package entities

// Severity grades a diagnostic
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic codes
const (
	DiagnosticLowDPI = "low_dpi"
)

// Diagnostic is a non-fatal observation made while building a slide
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// Report is the outcome of a mutating session operation
type Report struct {
	SlideID     string       `json:"slide_id"`
	SlideIndex  int          `json:"slide_index"`
	Saved       bool         `json:"saved"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Warnings returns the warning-level diagnostics
func (r *Report) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// HasWarnings returns true if any diagnostic is a warning
func (r *Report) HasWarnings() bool {
	return len(r.Warnings()) > 0
}
