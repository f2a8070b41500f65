package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/lusfold/kvstore/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	NoOverwrite bool
}

// ImportResult is the output of import.
type ImportResult struct {
	File     string `json:"file"`
	Format   string `json:"format"`
	Total    int    `json:"total"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Rejected int    `json:"rejected"`
}

func (r ImportResult) String() string {
	return fmt.Sprintf("imported %d entries from %s (inserted %d, updated %d, rejected %d)",
		r.Total, r.File, r.Inserted, r.Updated, r.Rejected)
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load records from a YAML, JSON or CUE file",
		Long: `Load records from a YAML, JSON or CUE file.

The file holds a flat mapping of keys to values. Entries are written in key
order with set semantics, or with insert semantics under --no-overwrite
(existing keys are counted as rejected and left unchanged).

Examples:
  kvstore import fixtures.yaml
  kvstore import defaults.cue --no-overwrite`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoOverwrite, "no-overwrite", false, "keep existing values")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	loaded, err := LoadEntries(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return f.Fail(ExitCommandError, loadErr.Code, loadErr.Error(), nil)
		}
		return f.Fail(ExitCommandError, ErrCodeLoadFailed, err.Error(), nil)
	}
	f.VerboseLog("Loaded %d entries from %s (%s)", len(loaded.Entries), path, loaded.Format)

	return opts.withStore(cmd, func(ctx context.Context, m *store.Manager, f *OutputFormatter) error {
		result, err := importEntries(ctx, m, loaded.Entries, opts.NoOverwrite)
		if err != nil {
			return f.StoreFailure(err)
		}
		result.File = path
		result.Format = loaded.Format
		opts.Logger.Info().Str("file", path).Int("inserted", result.Inserted).Int("updated", result.Updated).Int("rejected", result.Rejected).Msg("Imported entries")
		return f.Success(result)
	})
}

// importEntries writes entries in sorted key order and tallies the outcomes.
func importEntries(ctx context.Context, m *store.Manager, entries map[string]string, noOverwrite bool) (ImportResult, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	result := ImportResult{Total: len(keys)}
	for _, k := range keys {
		var (
			res store.WriteResult
			err error
		)
		if noOverwrite {
			res, err = m.Insert(ctx, k, entries[k])
		} else {
			res, err = m.InsertOrUpdate(ctx, k, entries[k])
		}
		if err != nil {
			return result, fmt.Errorf("import %q: %w", k, err)
		}
		switch res.Outcome {
		case store.OutcomeInserted:
			result.Inserted++
		case store.OutcomeUpdated:
			result.Updated++
		default:
			result.Rejected++
		}
	}
	return result, nil
}
