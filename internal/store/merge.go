package store

import "github.com/NielsdaWheelz/tixmail/internal/core"

// Merge folds a run's outcomes into the ledgers loaded at its start and
// returns the collections to persist. Inputs are not modified.
//
//   - success entries append in outcome order (an entry already present for
//     the same email is replaced in place)
//   - failure entries upsert by email: the latest failure replaces the older
//     one and keeps its position
//   - a success supersedes the failure entry for the same email, unless
//     retainSuperseded is set
//
// Skipped outcomes record nothing.
func Merge(prev Ledgers, outcomes []core.Outcome, retainSuperseded bool) Ledgers {
	success := append([]core.LedgerEntry{}, prev.Success...)
	failure := append([]core.LedgerEntry{}, prev.Failure...)

	successAt := indexByKey(success)
	failureAt := indexByKey(failure)

	for _, o := range outcomes {
		entry, ok := o.Entry()
		if !ok {
			continue
		}
		key := entry.Key()
		switch o.Kind {
		case core.OutcomeSuccess:
			if i, ok := successAt[key]; ok {
				success[i] = entry
			} else {
				successAt[key] = len(success)
				success = append(success, entry)
			}
		case core.OutcomeFailure:
			if i, ok := failureAt[key]; ok {
				failure[i] = entry
			} else {
				failureAt[key] = len(failure)
				failure = append(failure, entry)
			}
		}
	}

	if !retainSuperseded {
		kept := failure[:0]
		for _, e := range failure {
			if _, ok := successAt[e.Key()]; ok {
				continue
			}
			kept = append(kept, e)
		}
		failure = kept
	}

	return Ledgers{Success: success, Failure: failure}
}

func indexByKey(entries []core.LedgerEntry) map[string]int {
	m := make(map[string]int, len(entries))
	for i, e := range entries {
		m[e.Key()] = i
	}
	return m
}
