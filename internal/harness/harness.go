package harness

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lusfold/kvstore/internal/store"
	"github.com/lusfold/kvstore/internal/testutil"
)

// RunIDGenerator produces the run ID recorded in a Result.
type RunIDGenerator interface {
	Generate() string
}

// RunOptions tunes a scenario run. The zero value is ready to use.
type RunOptions struct {
	// Dir is where the scenario database is created. Empty means a new
	// temporary directory that is removed after the run.
	Dir string

	// RunIDs overrides the run ID source. When nil, a scenario with run_id
	// uses it verbatim and any other scenario gets a UUIDv7.
	RunIDs RunIDGenerator

	// Logger receives store and harness logs. Nil discards them.
	Logger *zerolog.Logger

	// Debug turns on statement logging in the scenario store.
	Debug bool
}

// Harness executes the steps of one scenario.
type Harness struct {
	store  *store.Manager
	clock  *testutil.DeterministicClock
	logger zerolog.Logger
}

// Run executes a scenario against a fresh store and returns the result.
//
// Execution flow:
//  1. Open a new database file in the run directory
//  2. Insert the setup entries
//  3. Execute steps, recording a trace event per step and checking expect
//  4. Evaluate assertions against the final state
//
// An error is returned only when the run itself cannot proceed (the
// database cannot be opened, setup fails). Failed expectations and
// assertions are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts RunOptions) (*Result, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	dir := opts.Dir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "kvstore-scenario-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create run directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	storeOpts := []store.Option{
		store.WithLogger(logger),
		store.WithDebug(opts.Debug),
		store.WithNormalizeKeys(scenario.Options.NormalizeKeys),
		store.WithCaseSensitiveSearch(scenario.Options.CaseSensitiveSearch),
	}
	if scenario.Options.Driver != "" {
		storeOpts = append(storeOpts, store.WithDriver(scenario.Options.Driver))
	}

	m, err := store.Open(ctx, filepath.Join(dir, "scenario.db"), storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario store: %w", err)
	}
	defer m.Close()

	h := &Harness{
		store:  m,
		clock:  testutil.NewDeterministicClock(),
		logger: logger.With().Str("scenario", scenario.Name).Logger(),
	}

	result := NewResult(runIDs(scenario, opts).Generate())

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	for i, step := range scenario.Steps {
		ev := h.executeStep(ctx, step)
		result.AddTrace(ev)
		for _, msg := range checkExpect(ev, step.Expect) {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Op, msg))
		}
	}

	for _, msg := range EvaluateAssertions(ctx, m, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug().Str("run_id", result.RunID).Bool("pass", result.Pass).Int("steps", len(result.Trace)).Msg("Scenario finished")
	return result, nil
}

func runIDs(scenario *Scenario, opts RunOptions) RunIDGenerator {
	if opts.RunIDs != nil {
		return opts.RunIDs
	}
	if scenario.RunID != "" {
		return testutil.NewFixedRunID(scenario.RunID)
	}
	return UUIDv7Generator{}
}

func (h *Harness) executeSetup(ctx context.Context, setup []Entry) error {
	for i, e := range setup {
		res, err := h.store.Insert(ctx, e.Key, e.Value)
		if err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if res.Rejected() {
			return fmt.Errorf("setup[%d]: duplicate key %q", i, e.Key)
		}
	}
	return nil
}

// executeStep runs one operation and converts its result into a trace event.
// Store errors end up in the event, not in a Go error, so that scenarios can
// expect them.
func (h *Harness) executeStep(ctx context.Context, step Step) TraceEvent {
	ev := TraceEvent{
		Seq: h.clock.Next(),
		Op:  step.Op,
		Key: step.Key,
	}

	var err error
	switch step.Op {
	case OpExists:
		var ok bool
		if ok, err = h.store.Exists(ctx, step.Key); err == nil {
			ev.Outcome = foundOutcome(ok)
		}

	case OpGet:
		var (
			value string
			found bool
		)
		if value, found, err = h.store.Get(ctx, step.Key); err == nil {
			ev.Outcome = foundOutcome(found)
			if found {
				ev.Result = value
			}
		}

	case OpInsert, OpUpdate, OpSet:
		ev.Value = step.Value
		var res store.WriteResult
		switch step.Op {
		case OpInsert:
			res, err = h.store.Insert(ctx, step.Key, step.Value)
		case OpUpdate:
			res, err = h.store.Update(ctx, step.Key, step.Value)
		default:
			res, err = h.store.InsertOrUpdate(ctx, step.Key, step.Value)
		}
		if err == nil {
			ev.Outcome = res.Outcome.String()
		}

	case OpDelete:
		var n int64
		if n, err = h.store.Delete(ctx, step.Key); err == nil {
			ev.Outcome = OutcomeAbsent
			if n > 0 {
				ev.Outcome = OutcomeDeleted
			}
			ev.Result = n
		}

	case OpPrefix, OpContains:
		var entries map[string]string
		if step.Op == OpPrefix {
			entries, err = h.store.GetByPrefix(ctx, step.Key)
		} else {
			entries, err = h.store.GetByContains(ctx, step.Key)
		}
		if err == nil {
			ev.Result = entries
		}

	case OpCount:
		var n int64
		if n, err = h.store.Count(ctx); err == nil {
			ev.Result = n
		}

	case OpClear:
		if _, err = h.store.ClearTable(ctx); err == nil {
			ev.Outcome = OutcomeCleared
		}
	}

	if err != nil {
		ev.Error = store.ErrorCode(err)
		h.logger.Debug().Err(err).Int64("seq", ev.Seq).Str("op", step.Op).Msg("Step failed")
	}
	return ev
}

func foundOutcome(found bool) string {
	if found {
		return OutcomeFound
	}
	return OutcomeAbsent
}

// checkExpect compares a trace event with the step's expect clause and
// returns one message per mismatch.
func checkExpect(ev TraceEvent, expect *Expect) []string {
	var errs []string

	if expect == nil {
		if ev.Error != "" {
			errs = append(errs, fmt.Sprintf("unexpected error %s", ev.Error))
		}
		return errs
	}

	if ev.Error != expect.Error {
		errs = append(errs, fmt.Sprintf("expected error %q, got %q", expect.Error, ev.Error))
	}
	if expect.Outcome != "" && ev.Outcome != expect.Outcome {
		errs = append(errs, fmt.Sprintf("expected outcome %s, got %s", expect.Outcome, ev.Outcome))
	}
	if expect.Value != nil {
		got, _ := ev.Result.(string)
		if got != *expect.Value {
			errs = append(errs, fmt.Sprintf("expected value %q, got %q", *expect.Value, got))
		}
	}
	if expect.Entries != nil {
		got, _ := ev.Result.(map[string]string)
		if !maps.Equal(got, expect.Entries) {
			errs = append(errs, fmt.Sprintf("expected entries %v, got %v", expect.Entries, got))
		}
	}
	if expect.Count != nil {
		got, _ := ev.Result.(int64)
		if got != *expect.Count {
			errs = append(errs, fmt.Sprintf("expected count %d, got %d", *expect.Count, got))
		}
	}
	return errs
}
