package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/labelproof/artcheck/internal/domain"
)

var statusColors = map[domain.StatusCode]*color.Color{
	domain.StatusOK:   color.New(color.FgGreen),
	domain.StatusAttn: color.New(color.FgYellow),
	domain.StatusFail: color.New(color.FgRed, color.Bold),
	domain.StatusTBD:  color.New(color.FgCyan),
	domain.StatusFYI:  color.New(color.FgBlue),
}

// PrintSummary writes a short coloured overview of the report. fatih/color
// already disables colour when stdout is not a terminal; noColor forces it off.
func PrintSummary(w io.Writer, r *domain.CheckReport, noColor bool) {
	paint := func(status domain.StatusCode, format string, args ...any) string {
		c := statusColors[status]
		if noColor || c == nil {
			return fmt.Sprintf(format, args...)
		}
		return c.Sprintf(format, args...)
	}

	s := r.Summary
	title := color.New(color.Bold)
	if noColor {
		title.DisableColor()
	}

	title.Fprintln(w, "Artwork check summary")
	fmt.Fprintf(w, "  Fields checked:   %d\n", s.Total)
	fmt.Fprintf(w, "  %s\n", paint(domain.StatusOK, "%s %d", domain.StatusOK.Label(), s.OK))
	fmt.Fprintf(w, "  %s\n", paint(domain.StatusTBD, "%s %d (visual confirmation)", domain.StatusTBD.Label(), s.PendingVisual))
	fmt.Fprintf(w, "  %s\n", paint(domain.StatusAttn, "%s %d", domain.StatusAttn.Label(), s.Attention))
	fmt.Fprintf(w, "  %s\n", paint(domain.StatusFail, "%s %d", domain.StatusFail.Label(), s.Failed))

	if s.RequiresVerification > 0 {
		fmt.Fprintf(w, "  %s\n", paint(domain.StatusAttn, "%d field(s) could not be verified automatically", s.RequiresVerification))
	}
	if r.Exclusion.Excluded > 0 {
		fmt.Fprintf(w, "  Excluded fragments: %d of %d\n", r.Exclusion.Excluded, r.Exclusion.Total)
	}

	conversionFails := 0
	for _, c := range r.Conversions {
		if c.Status == domain.StatusFail {
			conversionFails++
		}
	}
	if len(r.Conversions) > 0 {
		status := domain.StatusOK
		if conversionFails > 0 {
			status = domain.StatusFail
		}
		fmt.Fprintf(w, "  %s\n", paint(status, "Conversions: %d checked, %d failed", len(r.Conversions), conversionFails))
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", paint(domain.StatusAttn, "warning: %s", warning))
	}
}
