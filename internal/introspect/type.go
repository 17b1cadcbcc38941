package introspect

import (
	"reflect"
	"runtime"
	"slices"
)

// tagName is the struct tag key read by the introspector.
// `introspect:"-"` hides a field (and disqualifies an embedded struct as parent).
const tagName = "introspect"

// Type describes a record type: the members it declares itself and a link to
// its parent type.
//
// The parent of a struct is its first embedded struct (or pointer to struct).
// Further embedded fields are ordinary fields.
type Type struct {
	// Name is the Go type name, e.g. "Child".
	Name string

	// Go is the underlying (non-pointer) reflect.Type.
	Go reflect.Type

	// Fields are the fields declared directly on this type, statics last.
	Fields []Field

	// Operations are the operations declared directly on this type,
	// registered operations first.
	Operations []Operation

	// Parent is the embedded parent type, nil at the root of the chain.
	Parent *Type

	// all and ops are the flattened, most-derived-first member lists with
	// access paths relative to this type. Only populated on the type the
	// descriptor was derived for.
	all []Field
	ops []Operation
}

// Chain returns t followed by each of its ancestors, most-derived first.
func (t *Type) Chain() []*Type {
	var chain []*Type
	for cur := t; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	return chain
}

func (t *Type) field(name string) (Field, bool) {
	for _, f := range t.all {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (t *Type) operation(name string) (Operation, bool) {
	for _, op := range t.ops {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Field describes a named, typed slot.
type Field struct {
	Name     string
	Type     reflect.Type
	Owner    string
	Static   bool
	Exported bool
	Tag      reflect.StructTag

	index  int
	path   []int
	static reflect.Value
}

// Operation describes a named, invocable unit.
type Operation struct {
	Name       string
	Owner      string
	Registered bool

	// NumIn is the number of parameters, excluding the receiver.
	NumIn    int
	Variadic bool

	path []int
	fn   reflect.Value
}

// derive builds the descriptor for rt, walking the embedding chain as an
// explicit list. The walk stops at the first type seen twice, so cyclic
// embedding through pointers terminates.
func (in *Inspector) derive(rt reflect.Type) *Type {
	visited := make(map[reflect.Type]bool)

	var (
		levels []*Type
		all    []Field
		ops    []Operation
		prefix []int
	)

	for cur := rt; cur != nil && !visited[cur]; {
		visited[cur] = true

		lvl, parent := in.declared(cur)
		levels = append(levels, lvl)

		for _, f := range lvl.Fields {
			if !f.Static {
				f.path = append(slices.Clone(prefix), f.index)
			}
			all = append(all, f)
		}
		for _, op := range lvl.Operations {
			op.path = slices.Clone(prefix)
			ops = append(ops, op)
		}

		if parent == nil {
			break
		}
		prefix = append(prefix, parent.Index...)
		cur = indirect(parent.Type)
	}

	for i := 0; i+1 < len(levels); i++ {
		levels[i].Parent = levels[i+1]
	}

	root := levels[0]
	root.all = all
	if root.all == nil {
		root.all = []Field{}
	}
	root.ops = ops
	if root.ops == nil {
		root.ops = []Operation{}
	}

	in.logger.Debug("derived type descriptor",
		"type", root.Name,
		"depth", len(levels),
		"fields", len(all),
		"operations", len(ops),
	)
	return root
}

// declared returns the members declared directly on t and the embedded
// parent field, if any.
func (in *Inspector) declared(t reflect.Type) (*Type, *reflect.StructField) {
	lvl := &Type{Name: typeName(t), Go: t}
	reg := in.registration(t)

	var parent *reflect.StructField
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.Name == "_" || sf.Tag.Get(tagName) == "-" {
				continue
			}
			if parent == nil && sf.Anonymous && indirect(sf.Type).Kind() == reflect.Struct {
				parent = &sf
				continue
			}
			lvl.Fields = append(lvl.Fields, Field{
				Name:     sf.Name,
				Type:     sf.Type,
				Owner:    lvl.Name,
				Exported: sf.IsExported(),
				Tag:      sf.Tag,
				index:    i,
			})
		}
	}

	if reg != nil {
		for _, s := range reg.statics {
			lvl.Fields = append(lvl.Fields, Field{
				Name:     s.name,
				Type:     s.ptr.Type().Elem(),
				Owner:    lvl.Name,
				Static:   true,
				Exported: isExportedName(s.name),
				static:   s.ptr.Elem(),
			})
		}
		for _, op := range reg.ops {
			ft := op.fn.Type()
			lvl.Operations = append(lvl.Operations, Operation{
				Name:       op.name,
				Owner:      lvl.Name,
				Registered: true,
				NumIn:      ft.NumIn() - 1,
				Variadic:   ft.IsVariadic(),
				fn:         op.fn,
			})
		}
	}

	// Methods promoted from the parent belong to the parent's level. A method
	// the type redeclares stays on this level.
	inherited := map[string]bool{}
	if parent != nil {
		pt := reflect.PointerTo(indirect(parent.Type))
		for i := 0; i < pt.NumMethod(); i++ {
			inherited[pt.Method(i).Name] = true
		}
	}
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if (inherited[m.Name] && !declaresMethod(t, m.Name)) || reg.hasOperation(m.Name) {
			continue
		}
		lvl.Operations = append(lvl.Operations, Operation{
			Name:     m.Name,
			Owner:    lvl.Name,
			NumIn:    m.Type.NumIn() - 1,
			Variadic: m.Type.IsVariadic(),
		})
	}

	return lvl, parent
}

// declaresMethod reports whether t itself declares the method called name.
// The compiler implements promoted methods as generated wrappers, which
// have no source position.
func declaresMethod(t reflect.Type, name string) bool {
	m, ok := t.MethodByName(name)
	if !ok {
		if m, ok = reflect.PointerTo(t).MethodByName(name); !ok {
			return false
		}
	}
	fn := runtime.FuncForPC(m.Func.Pointer())
	if fn == nil {
		return false
	}
	file, _ := fn.FileLine(fn.Entry())
	return file != "<autogenerated>"
}

func indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func typeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
