package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lusfold/kvstore/internal/store"
)

// EntryResult is the output of get.
type EntryResult struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (r EntryResult) String() string { return r.Value }

// ExistsResult is the output of exists.
type ExistsResult struct {
	Key    string `json:"key"`
	Exists bool   `json:"exists"`
}

func (r ExistsResult) String() string { return strconv.FormatBool(r.Exists) }

// WriteResult is the output of insert, update and set.
type WriteResult struct {
	Key          string `json:"key"`
	Outcome      string `json:"outcome"`
	RowID        int64  `json:"row_id,omitempty"`
	RowsAffected int64  `json:"rows_affected"`
}

func (r WriteResult) String() string { return r.Outcome + " " + r.Key }

// DeleteResult is the output of delete.
type DeleteResult struct {
	Key     string `json:"key"`
	Deleted int64  `json:"deleted"`
}

func (r DeleteResult) String() string { return fmt.Sprintf("deleted %d", r.Deleted) }

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Long: `Print the value stored under a key.

Exits with 1 when the key does not exist.`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(ctx context.Context, m *store.Manager, f *OutputFormatter) error {
				value, found, err := m.Get(ctx, args[0])
				if err != nil {
					return f.StoreFailure(err)
				}
				if !found {
					return f.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("key %q not found", args[0]), nil)
				}
				return f.Success(EntryResult{Key: args[0], Value: value})
			})
		},
	}
}

// NewExistsCommand creates the exists command.
func NewExistsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "exists <key>",
		Short:         "Report whether a key exists",
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(ctx context.Context, m *store.Manager, f *OutputFormatter) error {
				ok, err := m.Exists(ctx, args[0])
				if err != nil {
					return f.StoreFailure(err)
				}
				return f.Success(ExistsResult{Key: args[0], Exists: ok})
			})
		},
	}
}

// writeFunc is one of Manager.Insert, Update or InsertOrUpdate.
type writeFunc func(m *store.Manager, ctx context.Context, key, value string) (store.WriteResult, error)

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	return newWriteCommand(rootOpts, "insert", "Create a record; rejected if the key exists",
		(*store.Manager).Insert, "key %q already exists")
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return newWriteCommand(rootOpts, "update", "Overwrite an existing record; rejected if the key is missing",
		(*store.Manager).Update, "key %q does not exist")
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	return newWriteCommand(rootOpts, "set", "Insert or overwrite a record",
		(*store.Manager).InsertOrUpdate, "key %q was not written")
}

func newWriteCommand(rootOpts *RootOptions, name, short string, write writeFunc, rejectedMsg string) *cobra.Command {
	return &cobra.Command{
		Use:           name + " <key> <value>",
		Short:         short,
		Args:          exactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return rootOpts.withStore(cmd, func(ctx context.Context, m *store.Manager, f *OutputFormatter) error {
				res, err := write(m, ctx, key, value)
				if err != nil {
					return f.StoreFailure(err)
				}
				if res.Rejected() {
					return f.Fail(ExitFailure, ErrCodeRejected, fmt.Sprintf("%s rejected: %s", name, fmt.Sprintf(rejectedMsg, key)), nil)
				}
				f.VerboseLog("%s %q (rowid %d)", res.Outcome, key, res.RowID)
				return f.Success(WriteResult{
					Key:          key,
					Outcome:      res.Outcome.String(),
					RowID:        res.RowID,
					RowsAffected: res.RowsAffected,
				})
			})
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a record",
		Long: `Delete a record.

Deleting a key that does not exist is not an error; the command reports
"deleted 0".`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(ctx context.Context, m *store.Manager, f *OutputFormatter) error {
				n, err := m.Delete(ctx, args[0])
				if err != nil {
					return f.StoreFailure(err)
				}
				return f.Success(DeleteResult{Key: args[0], Deleted: n})
			})
		},
	}
}
