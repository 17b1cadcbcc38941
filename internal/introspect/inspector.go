package introspect

import (
	"fmt"
	"go/token"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

// Inspector resolves members by name and caches type descriptors.
//
// Thread-safety: all methods are safe for concurrent use. Descriptors are
// read-only once derived; two goroutines deriving the same type at the same
// time produce equivalent descriptors and one of them wins the cache slot.
// A descriptor derived while a registration changed is never cached.
type Inspector struct {
	logger *slog.Logger

	mu   sync.RWMutex
	regs map[reflect.Type]*Registration
	gen  atomic.Uint64 // bumped under mu on every registration change

	cache sync.Map // reflect.Type -> *Type
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets the logger used for debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Inspector) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// New creates an Inspector with no registrations.
func New(opts ...Option) *Inspector {
	in := &Inspector{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		regs:   make(map[reflect.Type]*Registration),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

var defaultInspector = New()

// Default returns the process-wide Inspector.
func Default() *Inspector {
	return defaultInspector
}

// Describe returns the descriptor for t. Pointer types are dereferenced.
// Returns nil for a nil type.
func (in *Inspector) Describe(t reflect.Type) *Type {
	t = indirect(t)
	if t == nil {
		return nil
	}
	if cached, ok := in.cache.Load(t); ok {
		return cached.(*Type)
	}
	for {
		gen := in.gen.Load()
		desc := in.derive(t)

		// A registration that landed during derive makes desc stale.
		in.mu.RLock()
		if in.gen.Load() == gen {
			actual, _ := in.cache.LoadOrStore(t, desc)
			in.mu.RUnlock()
			return actual.(*Type)
		}
		in.mu.RUnlock()
	}
}

// Registration attaches operations and static fields to a type.
// Obtain one with Inspector.Register.
type Registration struct {
	in      *Inspector
	typ     reflect.Type
	ops     []registeredOp
	statics []registeredStatic
}

type registeredOp struct {
	name string
	fn   reflect.Value
}

type registeredStatic struct {
	name string
	ptr  reflect.Value
}

// Register returns the registration for t, creating it on first use.
// Calling Register again for the same type extends the same registration.
//
// Example:
//
//	in.Register(reflect.TypeFor[Base]()).
//	    Operation("describe", (*Base).describe).
//	    Static("prefix", &prefix)
func (in *Inspector) Register(t reflect.Type) *Registration {
	t = indirect(t)
	if t == nil {
		panic("introspect: Register called with nil type")
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	reg, ok := in.regs[t]
	if !ok {
		reg = &Registration{in: in, typ: t}
		in.regs[t] = reg
	}
	return reg
}

// Operation registers fn under name. fn must be a function whose first
// parameter is a pointer to the registered type; the remaining parameters
// are the operation's arguments. A trailing error result is reported as
// an invocation failure.
//
// Panics on a blank or duplicate name or a malformed fn. Registration is
// expected to happen during program initialization.
func (r *Registration) Operation(name string, fn any) *Registration {
	fv := reflect.ValueOf(fn)
	recv := reflect.PointerTo(r.typ)
	switch {
	case isBlank(name):
		panic("introspect: blank operation name")
	case fv.Kind() != reflect.Func || fv.IsNil():
		panic(fmt.Sprintf("introspect: operation %q: want func, got %T", name, fn))
	case fv.Type().NumIn() == 0 || fv.Type().In(0) != recv:
		panic(fmt.Sprintf("introspect: operation %q: first parameter must be %s", name, recv))
	}

	r.in.mu.Lock()
	defer r.in.mu.Unlock()

	if r.hasOperation(name) {
		panic(fmt.Sprintf("introspect: operation %q already registered on %s", name, typeName(r.typ)))
	}
	r.ops = append(r.ops, registeredOp{name: name, fn: fv})
	r.in.invalidate(r.typ, "operation", name)
	return r
}

// Static registers the variable ptr points to as a static field of the type.
// Panics on a blank or duplicate name or a nil pointer.
func (r *Registration) Static(name string, ptr any) *Registration {
	pv := reflect.ValueOf(ptr)
	switch {
	case isBlank(name):
		panic("introspect: blank static field name")
	case pv.Kind() != reflect.Pointer || pv.IsNil():
		panic(fmt.Sprintf("introspect: static %q: want non-nil pointer, got %T", name, ptr))
	}

	r.in.mu.Lock()
	defer r.in.mu.Unlock()

	for _, s := range r.statics {
		if s.name == name {
			panic(fmt.Sprintf("introspect: static %q already registered on %s", name, typeName(r.typ)))
		}
	}
	r.statics = append(r.statics, registeredStatic{name: name, ptr: pv})
	r.in.invalidate(r.typ, "static", name)
	return r
}

func (r *Registration) hasOperation(name string) bool {
	if r == nil {
		return false
	}
	for _, op := range r.ops {
		if op.name == name {
			return true
		}
	}
	return false
}

// registration returns a snapshot of t's registration, or nil.
func (in *Inspector) registration(t reflect.Type) *Registration {
	in.mu.RLock()
	defer in.mu.RUnlock()

	reg, ok := in.regs[t]
	if !ok {
		return nil
	}
	return &Registration{
		in:      in,
		typ:     reg.typ,
		ops:     append([]registeredOp(nil), reg.ops...),
		statics: append([]registeredStatic(nil), reg.statics...),
	}
}

// invalidate drops every cached descriptor. Any cached type may have t in
// its chain, so the whole cache goes. Caller holds in.mu.
func (in *Inspector) invalidate(t reflect.Type, kind, name string) {
	in.gen.Add(1)
	in.cache.Clear()
	in.logger.Debug("registered member", "type", typeName(t), "kind", kind, "name", name)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isExportedName(name string) bool {
	return token.IsExported(name)
}
