package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/lusfold/kvstore/internal/store"
)

// Scenario is a scripted run against a fresh key-value store.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID fixes the run ID recorded in the result. Empty means a
	// generated UUIDv7, which makes the run unsuitable for golden files.
	RunID string `yaml:"run_id,omitempty"`

	// Options configures the store the scenario runs against.
	Options StoreOptions `yaml:"options,omitempty"`

	// Setup entries are inserted before the first step and are not traced.
	Setup []Entry `yaml:"setup,omitempty"`

	// Steps are executed in order; each one is recorded in the trace.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final state of the store.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// StoreOptions mirrors the Manager options a scenario may set.
type StoreOptions struct {
	Driver              string `yaml:"driver,omitempty"`
	NormalizeKeys       bool   `yaml:"normalize_keys,omitempty"`
	CaseSensitiveSearch bool   `yaml:"case_sensitive_search,omitempty"`
}

// Entry is one key-value pair.
type Entry struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Step invokes one store operation.
type Step struct {
	// Op is one of the Op constants.
	Op string `yaml:"op"`

	// Key is the key, prefix or substring argument. May be empty to exercise
	// validation.
	Key string `yaml:"key,omitempty"`

	// Value is the value for insert, update and set.
	Value string `yaml:"value,omitempty"`

	// Expect is checked against the step's result. Nil skips the check.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes what a step should produce. Only the fields that are set
// are compared.
type Expect struct {
	// Outcome is the trace outcome: inserted, updated, rejected, found,
	// absent, deleted or cleared.
	Outcome string `yaml:"outcome,omitempty"`

	// Value is the value a get should return.
	Value *string `yaml:"value,omitempty"`

	// Entries is the exact result of a prefix or contains search.
	Entries map[string]string `yaml:"entries,omitempty"`

	// Count is the number returned by count or delete.
	Count *int64 `yaml:"count,omitempty"`

	// Error is the store.ErrorCode the step should fail with.
	Error string `yaml:"error,omitempty"`
}

// Assertion checks the final state of the store.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	Key   string `yaml:"key,omitempty"`
	Value string `yaml:"value,omitempty"`
	Count *int64 `yaml:"count,omitempty"`
}

// Step operations.
const (
	OpExists   = "exists"
	OpGet      = "get"
	OpInsert   = "insert"
	OpUpdate   = "update"
	OpSet      = "set"
	OpDelete   = "delete"
	OpPrefix   = "prefix"
	OpContains = "contains"
	OpCount    = "count"
	OpClear    = "clear"
)

// Ops lists every accepted step operation.
var Ops = []string{OpExists, OpGet, OpInsert, OpUpdate, OpSet, OpDelete, OpPrefix, OpContains, OpCount, OpClear}

// Assertion types.
const (
	AssertExists = "exists"
	AssertAbsent = "absent"
	AssertValue  = "value"
	AssertCount  = "count"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so that typos like "step:" fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Options.Driver != "" && !store.IsValidDriver(s.Options.Driver) {
		return fmt.Errorf("options.driver: unknown driver %q", s.Options.Driver)
	}

	for i, e := range s.Setup {
		if e.Key == "" || e.Value == "" {
			return fmt.Errorf("setup[%d]: key and value are required", i)
		}
	}

	for i, step := range s.Steps {
		if !slices.Contains(Ops, step.Op) {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertExists, AssertAbsent:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for %s", index, a.Type)
		}
	case AssertValue:
		if a.Key == "" || a.Value == "" {
			return fmt.Errorf("assertions[%d]: key and value are required for value", index)
		}
	case AssertCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
