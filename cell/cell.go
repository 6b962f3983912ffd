// Package cell provides Cell, a single-slot mutable container that never lets
// a pointer into its storage escape.
//
// Values go in by Set and come out by Get as fresh duplicates, so a caller can
// do whatever it likes with what it got without reaching the stored value.
// The duplication is the pureclone capability bound when the cell is built;
// an ordinary Clone method on the stored type is never called. That matters
// because Get runs the duplication while the value is logically still inside
// the cell: a Clone that reaches back into the cell (directly or through a
// shared handle) could observe or destroy the value being copied.
//
// A Cell is not safe for concurrent use.
package cell

import (
	"errors"

	"github.com/on-the-ground/clone_cell_go/pureclone"
)

// ErrUnbound is the panic value of Get and Update on a Cell that was not built
// with one of the constructors.
var ErrUnbound = errors.New("cell: no pure clone bound, construct with New, NewInert or NewBox")

// Cell holds exactly one T.
type Cell[T any] struct {
	v     T
	clone func(T) T
}

// New returns a cell holding v, duplicated through T's PureClone.
func New[T pureclone.PureCloner[T]](v T) *Cell[T] {
	return &Cell[T]{v: v, clone: pureclone.Clone[T]}
}

// NewInert returns a cell holding a primitive v.
func NewInert[T pureclone.Inert](v T) *Cell[T] {
	return &Cell[T]{v: v, clone: pureclone.Copy[T]}
}

// NewBox returns a cell holding an optional owned value. A nil v is the empty
// cell; Get on it returns nil.
func NewBox[T pureclone.PureCloner[T]](v *T) *Cell[*T] {
	return &Cell[*T]{v: v, clone: pureclone.Box[T]}
}

// Get returns an independent duplicate of the current value.
func (c *Cell[T]) Get() T {
	if c.clone == nil {
		panic(ErrUnbound)
	}
	// duplicate from a local copy of the slot, not from the slot itself.
	v := c.v
	return c.clone(v)
}

// Set replaces the current value with v. The cell takes ownership of v.
func (c *Cell[T]) Set(v T) {
	c.v = v
}

// Replace stores v and returns the previous value.
func (c *Cell[T]) Replace(v T) T {
	old := c.v
	c.v = v
	return old
}

// Take returns the current value and leaves the zero value in its place.
func (c *Cell[T]) Take() T {
	var zero T
	return c.Replace(zero)
}

// Swap exchanges the values of c and other.
func (c *Cell[T]) Swap(other *Cell[T]) {
	if c == other {
		return
	}
	c.v, other.v = other.v, c.v
}

// Update stores fn applied to a duplicate of the current value and returns a
// duplicate of the result.
func (c *Cell[T]) Update(fn func(T) T) T {
	next := fn(c.Get())
	c.v = next
	return c.clone(next)
}
