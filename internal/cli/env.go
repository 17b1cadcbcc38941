package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/roach88/introspect/internal/fixture"
	"github.com/roach88/introspect/internal/introspect"
	"github.com/roach88/introspect/internal/ir"
	"github.com/roach88/introspect/internal/records"
	"github.com/roach88/introspect/internal/store"
)

// env bundles what a command needs: output, logging and an inspector with
// the sample records registered.
type env struct {
	opts   *RootOptions
	out    *OutputFormatter
	logger *slog.Logger
	in     *introspect.Inspector
}

func newEnv(opts *RootOptions, cmd *cobra.Command) *env {
	logger := opts.Logger(cmd.ErrOrStderr())
	in := introspect.New(introspect.WithLogger(logger))
	records.Register(in)
	return &env{
		opts:   opts,
		out:    opts.formatter(cmd),
		logger: logger,
		in:     in,
	}
}

// fail reports err and converts it to an ExitError.
func (e *env) fail(exitCode int, fallback string, err error) error {
	return e.out.Fail(exitCode, fallback, err)
}

// resolveType looks a record type up by name.
func (e *env) resolveType(name string) (reflect.Type, error) {
	t, ok := records.TypeOf(name)
	if !ok {
		return nil, e.fail(ExitCommandError, ErrCodeNotFound,
			fmt.Errorf("unknown type %q (known: %v)", name, records.Names()))
	}
	return t, nil
}

// loadFixtures reads the fixture directory.
func (e *env) loadFixtures() ([]fixture.Fixture, error) {
	if _, err := os.Stat(e.opts.Fixtures); os.IsNotExist(err) {
		return nil, e.fail(ExitCommandError, ErrCodeNotFound,
			fmt.Errorf("fixtures directory not found: %s", e.opts.Fixtures))
	}
	fixtures, err := fixture.Load(e.opts.Fixtures)
	if err != nil {
		return nil, e.fail(ExitCommandError, ErrCodeLoadFailed, err)
	}
	e.out.VerboseLog("Loaded %d fixture(s) from %s", len(fixtures), e.opts.Fixtures)
	return fixtures, nil
}

// subject builds the named fixture.
func (e *env) subject(name string) (any, error) {
	fixtures, err := e.loadFixtures()
	if err != nil {
		return nil, err
	}
	fx, ok := fixture.Find(fixtures, name)
	if !ok {
		return nil, e.fail(ExitCommandError, ErrCodeNotFound,
			fmt.Errorf("fixture %q not found in %s", name, e.opts.Fixtures))
	}
	instance, err := fx.Build(e.in, records.New)
	if err != nil {
		var le *fixture.LoadError
		if errors.As(err, &le) {
			return nil, e.fail(ExitCommandError, ErrCodeLoadFailed, err)
		}
		return nil, e.fail(ExitFailure, ErrCodeGeneric, err)
	}
	return instance, nil
}

// openStore opens the snapshot database named by --db.
func (e *env) openStore() (*store.Store, error) {
	st, err := store.Open(e.opts.DB, store.WithLogger(e.logger))
	if err != nil {
		return nil, e.fail(ExitCommandError, ErrCodeStore, err)
	}
	return st, nil
}

// toValue converts a Go value for output.
func (e *env) toValue(v any) (ir.Value, error) {
	val, err := ir.FromGo(v)
	if err != nil {
		return nil, e.fail(ExitFailure, ErrCodeGeneric, fmt.Errorf("cannot render %T: %w", v, err))
	}
	return val, nil
}

// parseInput interprets a raw command-line value. With asJSON the value is
// decoded as JSON, otherwise it is used as a string.
func parseInput(raw string, asJSON bool) (any, error) {
	if !asJSON {
		return raw, nil
	}
	v, err := ir.Parse([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON value %q: %w", raw, err)
	}
	return ir.ToGo(v), nil
}
