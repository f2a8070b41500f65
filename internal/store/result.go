package store

// Outcome reports what a write did.
type Outcome int

const (
	// OutcomeRejected means the write was not applied because its key
	// precondition failed: Insert on an existing key, Update on a missing one.
	// It is an expected result, not an error.
	OutcomeRejected Outcome = iota

	// OutcomeInserted means a new row was created.
	OutcomeInserted

	// OutcomeUpdated means the value of an existing row was overwritten.
	OutcomeUpdated
)

// String returns the lowercase outcome name used in logs and CLI output.
func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	default:
		return "rejected"
	}
}

// WriteResult is returned by Insert, Update and InsertOrUpdate.
type WriteResult struct {
	Outcome Outcome

	// RowID is the rowid of the written row. Set for inserts only.
	RowID int64

	// RowsAffected is 0 for a rejected write and 1 otherwise.
	RowsAffected int64
}

// Rejected reports whether the write was not applied.
func (r WriteResult) Rejected() bool {
	return r.Outcome == OutcomeRejected
}

func rejected() WriteResult {
	return WriteResult{Outcome: OutcomeRejected}
}
