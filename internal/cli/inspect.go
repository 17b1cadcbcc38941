package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/introspect/internal/introspect"
	"github.com/roach88/introspect/internal/records"
)

// TypeInfo summarizes one record type.
type TypeInfo struct {
	Name       string `json:"name"`
	Parent     string `json:"parent,omitempty"`
	Fields     int    `json:"fields"`
	Operations int    `json:"operations"`
}

// TypeList is the output of the types command.
type TypeList []TypeInfo

func (l TypeList) renderText(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tPARENT\tFIELDS\tOPERATIONS")
	for _, t := range l {
		parent := t.Parent
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", t.Name, parent, t.Fields, t.Operations)
	}
	tw.Flush()
}

// FieldInfo describes one field in command output.
type FieldInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Owner    string `json:"owner"`
	Static   bool   `json:"static"`
	Exported bool   `json:"exported"`
}

// FieldList is the output of the fields command.
type FieldList []FieldInfo

func (l FieldList) renderText(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tTYPE\tOWNER\tFLAGS")
	for _, f := range l {
		flags := ""
		if f.Static {
			flags = "static"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, f.Type, f.Owner, flags)
	}
	tw.Flush()
}

// OperationInfo describes one operation in command output.
type OperationInfo struct {
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	Params     int    `json:"params"`
	Variadic   bool   `json:"variadic"`
	Registered bool   `json:"registered"`
}

// OperationList is the output of the ops command.
type OperationList []OperationInfo

func (l OperationList) renderText(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tOWNER\tPARAMS\tFLAGS")
	for _, op := range l {
		flags := ""
		switch {
		case op.Registered && op.Variadic:
			flags = "registered,variadic"
		case op.Registered:
			flags = "registered"
		case op.Variadic:
			flags = "variadic"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", op.Name, op.Owner, op.Params, flags)
	}
	tw.Flush()
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the known record types",
		Long: `List the record types instances can be built from, with their parent
type and the number of fields and operations along the chain.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)

			list := make(TypeList, 0, len(records.Catalog))
			for _, name := range records.Names() {
				t, _ := records.TypeOf(name)
				desc := e.in.Describe(t)
				info := TypeInfo{
					Name:       desc.Name,
					Fields:     len(e.in.AllFields(t)),
					Operations: len(e.in.AllOperations(t)),
				}
				if desc.Parent != nil {
					info.Parent = desc.Parent.Name
				}
				list = append(list, info)
			}
			return e.out.Success(list)
		},
	}
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <type>",
		Short: "List every field of a type and its ancestors",
		Long: `List every field declared on a type and its ancestors, most-derived
first. Registered static fields are included.

Example:
  introspect fields Child`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)
			t, err := e.resolveType(args[0])
			if err != nil {
				return err
			}
			return e.out.Success(fieldList(e.in.AllFields(t)))
		},
	}
}

func fieldList(fields []introspect.Field) FieldList {
	list := make(FieldList, len(fields))
	for i, f := range fields {
		list[i] = FieldInfo{
			Name:     f.Name,
			Type:     f.Type.String(),
			Owner:    f.Owner,
			Static:   f.Static,
			Exported: f.Exported,
		}
	}
	return list
}

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ops <type>",
		Short: "List every operation of a type and its ancestors",
		Long: `List every operation invocable on a type: registered operations and
methods of the type, then those of its ancestors.

Example:
  introspect ops Child`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEnv(rootOpts, cmd)
			t, err := e.resolveType(args[0])
			if err != nil {
				return err
			}

			ops := e.in.AllOperations(t)
			list := make(OperationList, len(ops))
			for i, op := range ops {
				list[i] = OperationInfo{
					Name:       op.Name,
					Owner:      op.Owner,
					Params:     op.NumIn,
					Variadic:   op.Variadic,
					Registered: op.Registered,
				}
			}
			return e.out.Success(list)
		},
	}
}
