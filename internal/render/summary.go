package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/NielsdaWheelz/tixmail/internal/batch"
)

// Styles colours summary output. Colour is only emitted when the target
// writer is a terminal that supports it.
type Styles struct {
	ok    lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
	title lipgloss.Style
}

// NewStyles returns styles bound to w's colour capabilities.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("8")),
		title: r.NewStyle().Bold(true),
	}
}

// WriteSummary writes the end-of-run summary.
//
// Output format:
//
//	run: 5f0c6a4e-...
//	skipped: 1
//	succeeded: 2
//	failed: 1
//	  delivery failure: 1
//	pending: 0
func WriteSummary(w io.Writer, sum *batch.Summary, st Styles) {
	if sum == nil {
		return
	}

	title := "run"
	if sum.DryRun {
		title = "dry run"
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", st.title.Render(title), sum.RunID)

	_, _ = fmt.Fprintf(w, "skipped: %s\n", st.muted.Render(fmt.Sprint(sum.Skipped)))
	_, _ = fmt.Fprintf(w, "succeeded: %s\n", st.ok.Render(fmt.Sprint(sum.Succeeded)))

	failed := fmt.Sprint(sum.Failed)
	if sum.Failed > 0 {
		failed = st.bad.Render(failed)
	}
	_, _ = fmt.Fprintf(w, "failed: %s\n", failed)
	for _, rc := range sum.ReasonBreakdown() {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", rc.Reason, rc.Count)
	}

	_, _ = fmt.Fprintf(w, "pending: %d\n", sum.Pending)
	if sum.NotSelected > 0 {
		_, _ = fmt.Fprintf(w, "not_selected: %d\n", sum.NotSelected)
	}
	if sum.DryRun {
		_, _ = fmt.Fprintln(w, st.muted.Render("ledgers not written (dry run)"))
	}
}
