package batch

import (
	"sort"

	"github.com/NielsdaWheelz/tixmail/internal/core"
)

// Summary is the result of one batch run.
type Summary struct {
	RunID   string
	RunBase int
	DryRun  bool

	Total       int // roster rows
	Skipped     int
	Succeeded   int
	Failed      int
	NotSelected int // excluded by --only
	Pending     int // not reached: limit, interruption or abort

	// Reasons counts failures per reason.
	Reasons map[string]int

	// Outcomes holds one outcome per participant reached, in roster order.
	Outcomes []core.Outcome

	// Persisted is true once the merged ledgers were written.
	Persisted bool

	// EventAppendErrors contains any errors from appending events.
	// Non-fatal; the run outcome does not depend on the audit log.
	EventAppendErrors []string
}

func (s *Summary) add(o core.Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Kind {
	case core.OutcomeSkipped:
		s.Skipped++
	case core.OutcomeSuccess:
		s.Succeeded++
	case core.OutcomeFailure:
		s.Failed++
		if s.Reasons == nil {
			s.Reasons = make(map[string]int)
		}
		s.Reasons[o.Reason]++
	}
}

// ReasonCount is one row of the per-reason breakdown.
type ReasonCount struct {
	Reason string
	Count  int
}

// ReasonBreakdown returns failure counts sorted by reason.
func (s *Summary) ReasonBreakdown() []ReasonCount {
	out := make([]ReasonCount, 0, len(s.Reasons))
	for r, n := range s.Reasons {
		out = append(out, ReasonCount{Reason: r, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reason < out[j].Reason })
	return out
}
