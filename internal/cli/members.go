package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/introspect/internal/introspect"
	"github.com/roach88/introspect/internal/ir"
)

// MemberResult is the output of get, set, invoke and coerce.
type MemberResult struct {
	Subject string   `json:"subject"`
	Member  string   `json:"member"`
	Value   ir.Value `json:"value"`
}

func (r MemberResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "%s.%s = %s\n", r.Subject, r.Member, ir.MustMarshal(r.Value))
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <fixture> <field>",
		Short: "Read a field of a fixture instance",
		Long: `Build the named fixture and print the current value of one field,
exported or not, declared on the fixture's type or any ancestor.

Example:
  introspect get kid name --fixtures ./fixtures`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)
			subject, err := e.subject(args[0])
			if err != nil {
				return err
			}

			v, err := e.in.Get(subject, args[1])
			if err != nil {
				return e.fail(ExitFailure, ErrCodeGeneric, err)
			}
			val, err := e.toValue(v)
			if err != nil {
				return err
			}
			return e.out.Success(MemberResult{Subject: args[0], Member: args[1], Value: val})
		},
	}
}

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	JSON bool
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <fixture> <field> <value>",
		Short: "Write a field of a fixture instance",
		Long: `Build the named fixture, assign one field and print every field value
afterwards. The value is coerced to the field's declared type; use --json
to pass lists, maps, numbers, booleans or null.

Examples:
  introspect set kid age 7
  introspect set groceries list '["eggs","milk"]' --json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)
			input, err := parseInput(args[2], opts.JSON)
			if err != nil {
				return e.fail(ExitCommandError, ErrCodeInvalidInput, err)
			}
			subject, err := e.subject(args[0])
			if err != nil {
				return err
			}

			if err := e.in.AssignValues(subject, map[string]any{args[1]: input}); err != nil {
				return e.fail(ExitFailure, ErrCodeGeneric, err)
			}
			values, err := e.in.FieldValues(subject)
			if err != nil {
				return e.fail(ExitFailure, ErrCodeGeneric, err)
			}
			val, err := e.toValue(values)
			if err != nil {
				return err
			}
			return e.out.Success(MemberResult{Subject: args[0], Member: args[1], Value: val})
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "decode the value as JSON")

	return cmd
}

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Args string
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <fixture> <operation>",
		Short: "Invoke an operation on a fixture instance",
		Long: `Build the named fixture and invoke one of its operations, including
registered unexported operations and those inherited from ancestors.

Example:
  introspect invoke kid greet --args '["hello"]'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)

			callArgs, err := parseArgs(opts.Args)
			if err != nil {
				return e.fail(ExitCommandError, ErrCodeInvalidInput, err)
			}
			subject, err := e.subject(args[0])
			if err != nil {
				return err
			}

			e.out.VerboseLog("Invoking %s on %s with %d arg(s)", args[1], args[0], len(callArgs))
			result, err := e.in.Invoke(subject, args[1], callArgs...)
			if err != nil {
				return e.fail(ExitFailure, ErrCodeGeneric, err)
			}
			val, err := e.toValue(result)
			if err != nil {
				return err
			}
			return e.out.Success(MemberResult{Subject: args[0], Member: args[1], Value: val})
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "[]", "operation arguments as a JSON array")

	return cmd
}

func parseArgs(raw string) ([]any, error) {
	v, err := ir.Parse([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid --args JSON: %w", err)
	}
	arr, ok := v.(ir.Array)
	if !ok {
		return nil, fmt.Errorf("invalid --args JSON: expected an array")
	}
	return ir.ToGo(arr).([]any), nil
}

// AccessorOptions holds flags for the accessor command.
type AccessorOptions struct {
	*RootOptions
	Writer bool
}

// AccessorResult is the output of the accessor command.
type AccessorResult struct {
	Field string `json:"field"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
}

func (r AccessorResult) renderText(w io.Writer) {
	fmt.Fprintln(w, r.Name)
}

// NewAccessorCommand creates the accessor command.
func NewAccessorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AccessorOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "accessor <field>",
		Short: "Derive the reader or writer name of a field",
		Long: `Derive the conventional accessor name of a field: "get" or, with
--writer, "set" followed by the field name with its first letter upper-cased.

Example:
  introspect accessor isExist --writer`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)

			kind := introspect.Reader
			if opts.Writer {
				kind = introspect.Writer
			}
			name, ok := introspect.AccessorName(args[0], kind)
			if !ok {
				return e.fail(ExitCommandError, ErrCodeInvalidInput,
					fmt.Errorf("no accessor name for blank field %q", args[0]))
			}
			return e.out.Success(AccessorResult{Field: args[0], Kind: kind.String(), Name: name})
		},
	}

	cmd.Flags().BoolVar(&opts.Writer, "writer", false, "derive the writer name")

	return cmd
}

// CoerceOptions holds flags for the coerce command.
type CoerceOptions struct {
	*RootOptions
	JSON bool
}

// NewCoerceCommand creates the coerce command.
func NewCoerceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CoerceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "coerce <type> <field> <value>",
		Short: "Coerce a value to a field's declared type",
		Long: `Coerce a value to the declared type of a field without storing it.
Boolean, integer and floating-point targets are converted; other targets
receive the value unchanged. Use --json to pass a number or boolean.

Examples:
  introspect coerce Base id 42
  introspect coerce Measures flag 0 --json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)
			input, err := parseInput(args[2], opts.JSON)
			if err != nil {
				return e.fail(ExitCommandError, ErrCodeInvalidInput, err)
			}
			t, err := e.resolveType(args[0])
			if err != nil {
				return err
			}

			v, err := e.in.CoerceField(t, args[1], input)
			if err != nil {
				return e.fail(ExitFailure, ErrCodeGeneric, err)
			}
			val, err := e.toValue(v)
			if err != nil {
				return err
			}
			return e.out.Success(MemberResult{Subject: args[0], Member: args[1], Value: val})
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "decode the value as JSON")

	return cmd
}
