package harness

import (
	"context"
	"fmt"

	"github.com/lusfold/kvstore/internal/store"
)

// AssertionError is returned when an assertion does not hold.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion %s failed: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against the store and returns
// one message per failure.
func EvaluateAssertions(ctx context.Context, m *store.Manager, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(ctx, m, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(ctx context.Context, m *store.Manager, a Assertion) error {
	switch a.Type {
	case AssertExists, AssertAbsent:
		ok, err := m.Exists(ctx, a.Key)
		if err != nil {
			return err
		}
		if want := a.Type == AssertExists; ok != want {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("key %q %s", a.Key, foundOutcome(want)),
				Actual:   foundOutcome(ok),
			}
		}

	case AssertValue:
		value, found, err := m.Get(ctx, a.Key)
		if err != nil {
			return err
		}
		if !found {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%q = %q", a.Key, a.Value), Actual: OutcomeAbsent}
		}
		if value != a.Value {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%q = %q", a.Key, a.Value), Actual: fmt.Sprintf("%q", value)}
		}

	case AssertCount:
		n, err := m.Count(ctx)
		if err != nil {
			return err
		}
		if a.Count == nil || n != *a.Count {
			want := "<unset>"
			if a.Count != nil {
				want = fmt.Sprint(*a.Count)
			}
			return &AssertionError{Type: a.Type, Expected: want + " records", Actual: fmt.Sprint(n)}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
