package core

// NextToken derives the token for the participant at position within the
// current run. position counts only participants that reach token
// assignment, so skipped and invalid rows consume nothing.
func NextToken(runBase, position int) int {
	return runBase + position
}

// RunBase returns the first token of a run.
//
// The configured base is advanced by the number of participants already in
// the success ledger so numbering continues across runs. It is then raised
// past the highest token recorded in either ledger, which rules out handing
// out a token that is already on disk.
func RunBase(base int, success, failure []LedgerEntry) int {
	runBase := base + len(success)
	if hi, ok := MaxToken(success, failure); ok && hi+1 > runBase {
		runBase = hi + 1
	}
	return runBase
}

// MaxToken returns the highest token present in the given ledgers.
func MaxToken(ledgers ...[]LedgerEntry) (int, bool) {
	var (
		hi    int
		found bool
	)
	for _, entries := range ledgers {
		for _, e := range entries {
			if e.Token == nil {
				continue
			}
			if !found || *e.Token > hi {
				hi = *e.Token
				found = true
			}
		}
	}
	return hi, found
}
