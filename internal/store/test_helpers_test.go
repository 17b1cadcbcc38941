package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/introspect/internal/introspect"
	"github.com/roach88/introspect/internal/records"
	"github.com/roach88/introspect/internal/testutil"
)

// createTestStore opens a store in a temp dir with a deterministic clock and
// numbered batch tokens.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithClock(testutil.NewDeterministicClock()),
		WithTokens(testutil.NewFixedTokens()),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newInspector(t *testing.T) *introspect.Inspector {
	t.Helper()
	in := introspect.New()
	records.Register(in)
	return in
}
