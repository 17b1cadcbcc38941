package testutil

import (
	"fmt"
	"sync"
)

// FixedTokens hands out predetermined batch tokens in order. It satisfies
// store.TokenGenerator.
//
//	gen := NewFixedTokens("batch-1", "batch-2")
//	gen.Generate() // "batch-1"
//	gen.Generate() // "batch-2"
//	gen.Generate() // panic: tokens exhausted
//
// With no tokens, Generate numbers batches "batch-1", "batch-2" and so on.
type FixedTokens struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokens creates a generator over tokens.
func NewFixedTokens(tokens ...string) *FixedTokens {
	return &FixedTokens{tokens: tokens}
}

// Generate returns the next token. It panics once an explicit token list is
// used up so a test that opens more batches than expected fails loudly.
func (g *FixedTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if len(g.tokens) == 0 {
		return fmt.Sprintf("batch-%d", g.idx)
	}
	if g.idx > len(g.tokens) {
		panic("FixedTokens: all tokens exhausted")
	}
	return g.tokens[g.idx-1]
}
