// Package records holds plain data types used to exercise the introspector:
// a two-level Base/Child hierarchy, a type with a static field, and a few
// shapes for coercion and edge cases.
package records

import (
	"errors"
	"fmt"
	"time"
)

// Base is the root of the sample hierarchy. Its fields are unexported.
type Base struct {
	id   int64
	name string
	date time.Time
}

// NewBase creates a Base.
func NewBase(id int64, name string, date time.Time) *Base {
	return &Base{id: id, name: name, date: date}
}

func (b *Base) ID() int64 { return b.id }
func (b *Base) SetID(id int64) { b.id = id }
func (b *Base) Name() string { return b.name }
func (b *Base) SetName(n string) { b.name = n }
func (b *Base) Date() time.Time { return b.date }
func (b *Base) SetDate(d time.Time) { b.date = d }

func (b *Base) describe() string {
	return fmt.Sprintf("Base{id=%d, name=%q}", b.id, b.name)
}

// Child extends Base.
type Child struct {
	Base
	childName string
	age       int32
}

// NewChild creates a Child with its Base part filled in.
func NewChild(id int64, name string, date time.Time, childName string, age int32) *Child {
	return &Child{Base: Base{id: id, name: name, date: date}, childName: childName, age: age}
}

func (c *Child) ChildName() string { return c.childName }
func (c *Child) Age() int32 { return c.age }
func (c *Child) SetAge(age int32) { c.age = age }

func (c *Child) greet(greeting string) string {
	return greeting + ", " + c.childName
}

// ErrNegativeAge is returned by the validate operation.
var ErrNegativeAge = errors.New("age must not be negative")

func (c *Child) validate() error {
	if c.age < 0 {
		return ErrNegativeAge
	}
	return nil
}

// Alias redeclares Base's name field and Name method.
type Alias struct {
	Base
	name string
}

// NewAlias creates an Alias whose own name differs from its Base name.
func NewAlias(baseName, name string) *Alias {
	return &Alias{Base: Base{name: baseName}, name: name}
}

func (a *Alias) Name() string { return a.name }

// prefix is exposed as the static field PREFIX of WithStatic.
var prefix = "STAT"

// WithStatic carries a registered static field.
type WithStatic struct {
	id int64
}

func (w *WithStatic) ID() int64 { return w.id }
func (w *WithStatic) SetID(id int64) { w.id = id }

// Measures has one field per coercion target.
type Measures struct {
	someDouble float64
	ratio      float32
	flag       bool
	count      int16
	total      int64
	size       int
	hits       uint32
	score      *int64
	label      string
}

// Listing holds a slice field.
type Listing struct {
	name string
	list []string
}

// NewListing creates a Listing.
func NewListing(name string, list ...string) *Listing {
	return &Listing{name: name, list: list}
}

func (l *Listing) Name() string { return l.name }
func (l *Listing) List() []string { return l.list }

// Empty declares no fields.
type Empty struct{}
