package pureclone

var (
	_ PureCloner[Shared[int]] = Shared[int]{}
	_ PureCloner[Ref[int]]    = Ref[int]{}
)

// Shared is a shared-ownership handle to a value that holders treat as
// immutable. Duplicating the handle yields another handle to the same value;
// the pointee is never read, so T needs no capability of its own.
type Shared[T any] struct {
	p *T
}

// Share wraps p. The caller gives up mutating *p through any path other than
// the value's own API.
func Share[T any](p *T) Shared[T] {
	return Shared[T]{p: p}
}

// Get returns the shared value. Nil for the zero handle.
func (s Shared[T]) Get() *T { return s.p }

// IsZero reports whether the handle points nowhere.
func (s Shared[T]) IsZero() bool { return s.p == nil }

// PureClone returns the same handle.
func (s Shared[T]) PureClone() Shared[T] { return s }

// Ref is a borrowed read-only view of a value owned elsewhere.
// Its duplicate is the identical reference: same target, same borrow.
type Ref[T any] struct {
	p *T
}

// Borrow returns a view of *p.
func Borrow[T any](p *T) Ref[T] {
	return Ref[T]{p: p}
}

// Get returns the borrowed target.
func (r Ref[T]) Get() *T { return r.p }

// PureClone returns the same reference.
func (r Ref[T]) PureClone() Ref[T] { return r }
