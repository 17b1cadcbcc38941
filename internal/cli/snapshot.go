package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/introspect/internal/ir"
	"github.com/roach88/introspect/internal/records"
	"github.com/roach88/introspect/internal/store"
)

// SnapshotInfo describes a stored snapshot in command output.
type SnapshotInfo struct {
	ID     string    `json:"id"`
	Batch  string    `json:"batch"`
	Type   string    `json:"type"`
	Seq    int64     `json:"seq"`
	Fields ir.Object `json:"fields,omitempty"`
}

// SnapshotList is the output of the snapshot and snapshots commands.
type SnapshotList []SnapshotInfo

func (l SnapshotList) renderText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "No snapshots.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tTYPE\tBATCH\tID")
	for _, s := range l {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Seq, s.Type, s.Batch, s.ID)
	}
	tw.Flush()
}

func snapshotList(snaps []store.Snapshot, withFields bool) SnapshotList {
	list := make(SnapshotList, len(snaps))
	for i, s := range snaps {
		list[i] = SnapshotInfo{ID: s.ID, Batch: s.Batch, Type: s.TypeName, Seq: s.Seq}
		if withFields {
			list[i].Fields = s.Fields
		}
	}
	return list
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <fixture>...",
		Short: "Capture fixture instances into the snapshot database",
		Long: `Build each named fixture and record its field values in the snapshot
database. Snapshots taken together share one batch token. Snapshot IDs are
content hashes, so capturing identical state twice in a batch is a no-op.

Example:
  introspect snapshot kid groceries --db ./introspect.db`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)

			instances := make([]any, len(args))
			for i, name := range args {
				instance, err := e.subject(name)
				if err != nil {
					return err
				}
				instances[i] = instance
			}

			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			snaps, err := st.Capture(e.in, instances...)
			if err != nil {
				return e.fail(ExitFailure, ErrCodeGeneric, err)
			}
			if err := st.Write(context.Background(), snaps...); err != nil {
				return e.fail(ExitCommandError, ErrCodeStore, err)
			}
			e.out.VerboseLog("Wrote %d snapshot(s) to %s", len(snaps), rootOpts.DB)
			return e.out.Success(snapshotList(snaps, false))
		},
	}
}

// RestoreResult is the output of the restore command.
type RestoreResult struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Fields ir.Object `json:"fields"`
}

func (r RestoreResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", r.Type, r.ID)
	for _, k := range r.Fields.SortedKeys() {
		fmt.Fprintf(w, "  %s = %s\n", k, ir.MustMarshal(r.Fields[k]))
	}
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot-id>",
		Short: "Rebuild an instance from a stored snapshot",
		Long: `Read a snapshot, create a zero instance of its type, assign the stored
field values through the introspector and print the restored fields.

Example:
  introspect restore 3f2a... --db ./introspect.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)

			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Read(context.Background(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return e.fail(ExitCommandError, ErrCodeNotFound, err)
			}
			if err != nil {
				return e.fail(ExitCommandError, ErrCodeStore, err)
			}

			instance, ok := records.New(snap.TypeName)
			if !ok {
				return e.fail(ExitFailure, ErrCodeNotFound,
					fmt.Errorf("snapshot %s has unknown type %q", snap.ID, snap.TypeName))
			}
			if err := st.Restore(e.in, snap, instance); err != nil {
				return e.fail(ExitFailure, ErrCodeGeneric, err)
			}

			values, err := e.in.FieldValues(instance)
			if err != nil {
				return e.fail(ExitFailure, ErrCodeGeneric, err)
			}
			val, err := e.toValue(values)
			if err != nil {
				return err
			}
			fields, _ := val.(ir.Object)
			return e.out.Success(RestoreResult{ID: snap.ID, Type: snap.TypeName, Fields: fields})
		},
	}
}

// SnapshotsOptions holds flags for the snapshots command.
type SnapshotsOptions struct {
	*RootOptions
	Type   string
	Batch  string
	Fields bool
}

// NewSnapshotsCommand creates the snapshots command.
func NewSnapshotsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List stored snapshots",
		Long: `List stored snapshots in capture order, optionally restricted to one
type or one batch.

Examples:
  introspect snapshots --db ./introspect.db
  introspect snapshots --type Child --fields --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)
			if opts.Type != "" && opts.Batch != "" {
				return e.fail(ExitCommandError, ErrCodeInvalidInput,
					fmt.Errorf("--type and --batch are mutually exclusive"))
			}

			st, err := e.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			var snaps []store.Snapshot
			if opts.Batch != "" {
				snaps, err = st.ListBatch(ctx, opts.Batch)
			} else {
				snaps, err = st.List(ctx, opts.Type)
			}
			if err != nil {
				return e.fail(ExitCommandError, ErrCodeStore, err)
			}
			return e.out.Success(snapshotList(snaps, opts.Fields))
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "only snapshots of this type")
	cmd.Flags().StringVar(&opts.Batch, "batch", "", "only snapshots of this batch")
	cmd.Flags().BoolVar(&opts.Fields, "fields", false, "include field values")

	return cmd
}
