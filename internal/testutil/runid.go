package testutil

// DefaultRunID is returned by a FixedRunID built with an empty id.
const DefaultRunID = "test-run-default"

// FixedRunID hands out the same run ID on every call, so golden traces do
// not depend on UUID generation. Safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a generator for id. Scenarios usually set it with
//
//	run_id: "00000000-0000-7000-8000-000000000001"
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunID) Generate() string {
	return g.id
}
