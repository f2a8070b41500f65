package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lusfold/kvstore/internal/store"
)

// EntriesResult is the output of prefix, contains and dump.
type EntriesResult struct {
	Entries map[string]string `json:"entries"`
	Count   int               `json:"count"`
}

func newEntriesResult(entries map[string]string) EntriesResult {
	return EntriesResult{Entries: entries, Count: len(entries)}
}

// String renders one "key<TAB>value" line per entry in key order.
func (r EntriesResult) String() string {
	if len(r.Entries) == 0 {
		return "(no entries)"
	}
	keys := make([]string, 0, len(r.Entries))
	for k := range r.Entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('\t')
		b.WriteString(r.Entries[k])
	}
	return b.String()
}

// CountResult is the output of count.
type CountResult struct {
	Count int64 `json:"count"`
}

func (r CountResult) String() string { return strconv.FormatInt(r.Count, 10) }

// NewPrefixCommand creates the prefix command.
func NewPrefixCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prefix <prefix>",
		Short: "List records whose key starts with a prefix",
		Long: `List records whose key starts with a prefix.

% and _ in the prefix match literally. Matching ignores ASCII case unless
KVSTORE_CASE_SENSITIVE_SEARCH is set.`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, cmd, (*store.Manager).GetByPrefix, args[0])
		},
	}
}

// NewContainsCommand creates the contains command.
func NewContainsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "contains <substring>",
		Short:         "List records whose key contains a substring",
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, cmd, (*store.Manager).GetByContains, args[0])
		},
	}
}

func runSearch(opts *RootOptions, cmd *cobra.Command, search func(*store.Manager, context.Context, string) (map[string]string, error), arg string) error {
	return opts.withStore(cmd, func(ctx context.Context, m *store.Manager, f *OutputFormatter) error {
		entries, err := search(m, ctx, arg)
		if err != nil {
			return f.StoreFailure(err)
		}
		f.VerboseLog("%d matching record(s)", len(entries))
		return f.Success(newEntriesResult(entries))
	})
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "dump",
		Short:         "List every record",
		Args:          exactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(ctx context.Context, m *store.Manager, f *OutputFormatter) error {
				entries, err := m.All(ctx)
				if err != nil {
					return f.StoreFailure(err)
				}
				return f.Success(newEntriesResult(entries))
			})
		},
	}
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "count",
		Short:         "Print the number of records",
		Args:          exactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(ctx context.Context, m *store.Manager, f *OutputFormatter) error {
				n, err := m.Count(ctx)
				if err != nil {
					return f.StoreFailure(err)
				}
				return f.Success(CountResult{Count: n})
			})
		},
	}
}

// ClearResult is the output of clear.
type ClearResult struct {
	Removed int64 `json:"removed"`
}

func (r ClearResult) String() string { return fmt.Sprintf("cleared %d record(s)", r.Removed) }

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every record, keeping the table",
		Long: `Delete every record, keeping the table.

The table is created if missing and then emptied, in one transaction. The
reported count is the number of rows that transaction deleted.`,
		Args:          exactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(ctx context.Context, m *store.Manager, f *OutputFormatter) error {
				n, err := m.ClearTable(ctx)
				if err != nil {
					return f.StoreFailure(err)
				}
				return f.Success(ClearResult{Removed: n})
			})
		},
	}
}
