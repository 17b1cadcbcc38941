package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/introspect/internal/fixture"
	"github.com/roach88/introspect/internal/introspect"
	"github.com/roach88/introspect/internal/records"
)

// FixtureError describes one fixture that failed validation.
type FixtureError struct {
	Fixture string `json:"fixture,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool           `json:"valid"`
	Fixtures []string       `json:"fixtures"`
	Errors   []FixtureError `json:"errors,omitempty"`
}

func (r ValidationResult) renderText(w io.Writer) {
	if r.Valid {
		fmt.Fprintf(w, "✓ %d fixture(s) valid\n", len(r.Fixtures))
		return
	}
	for _, e := range r.Errors {
		loc := ""
		if e.Line > 0 {
			loc = fmt.Sprintf(" (line %d)", e.Line)
		}
		fmt.Fprintf(w, "✗ %s%s: [%s] %s\n", e.Fixture, loc, e.Code, e.Message)
	}
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the fixture directory",
		Long: `Load every CUE fixture and build it against its record type without
running anything else. Reports unknown types, unknown fields and values
that cannot be converted to the declared field types.

Exit codes:
  0 - All fixtures valid
  1 - One or more fixtures invalid
  2 - Command error (missing directory, CUE errors)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	e := newEnv(opts, cmd)
	fixtures, err := e.loadFixtures()
	if err != nil {
		return err
	}

	result := ValidationResult{Valid: true, Fixtures: make([]string, 0, len(fixtures))}
	for _, fx := range fixtures {
		result.Fixtures = append(result.Fixtures, fx.Name)
		e.out.VerboseLog("Validating fixture: %s", fx.Name)

		if _, err := fx.Build(e.in, records.New); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fixtureError(fx, err))
		}
	}

	if err := e.out.Success(result); err != nil {
		return err
	}
	if !result.Valid {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d fixture(s) invalid", len(result.Errors)), Reported: true}
	}
	return nil
}

func fixtureError(fx fixture.Fixture, err error) FixtureError {
	fe := FixtureError{Fixture: fx.Name, Message: err.Error(), Code: ErrCodeGeneric}
	if fx.Pos.IsValid() {
		fe.Line = fx.Pos.Line()
	}

	var le *fixture.LoadError
	if errors.As(err, &le) {
		fe.Code = ErrCodeNotFound
		fe.Message = le.Message
		if le.Pos.IsValid() {
			fe.Line = le.Pos.Line()
		}
		return fe
	}
	if code := introspect.CodeOf(err); code != "" {
		fe.Code = string(code)
	}
	return fe
}
