// Package harness runs scripted scenarios against a key-value store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: insert_rejects_duplicates
//	description: "A second insert on the same key is rejected"
//	run_id: "00000000-0000-7000-8000-000000000001"
//	options:
//	  case_sensitive_search: false
//	setup:
//	  - { key: apple, value: "1" }
//	steps:
//	  - op: insert
//	    key: apple
//	    value: "2"
//	    expect: { outcome: rejected }
//	  - op: prefix
//	    key: ap
//	    expect:
//	      entries: { apple: "1" }
//	assertions:
//	  - { type: value, key: apple, value: "1" }
//	  - { type: count, count: 1 }
//
// Step ops are exists, get, insert, update, set, delete, prefix, contains,
// count and clear. A step that fails with a store error records the error
// code (key_required, value_required, ...) in the trace; scenarios expect it
// with `expect: { error: key_required }`.
//
// # Assertion Types
//
//   - exists: the key is present
//   - absent: the key is not present
//   - value: the key holds exactly the given value
//   - count: the table holds exactly N records
//
// # Deterministic Testing
//
// Every run uses a fresh database file, a logical clock for step seq values
// and, when run_id is set, a fixed run ID. Two runs of the same scenario
// produce byte-identical snapshots, which are compared with golden files
// through AssertGolden or `kvstore test`.
package harness
