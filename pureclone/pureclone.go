package pureclone

// PureCloner is implemented by types whose PureClone returns an independent
// duplicate without side effects.
//
// Implementing it is an assertion by the author: PureClone must terminate,
// must not touch any shared mutable container other than by duplicating its
// own fields, must not read global, thread or environment state, and must be
// deterministic.
type PureCloner[T any] interface {
	PureClone() T
}

// Inert is the set of types whose plain copy is already a pure duplicate.
type Inert interface {
	~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 |
		~complex64 | ~complex128 |
		~string
}

// Clone duplicates v through the capability.
//
// Callers and generated code go through Clone rather than calling a method on
// the concrete type, so the only method that can run is the one that
// satisfies PureCloner[T].
func Clone[T PureCloner[T]](v T) T {
	// nil interface values (sealed unions) have nothing to duplicate.
	if any(v) == nil {
		return v
	}
	return v.PureClone()
}

// Copy duplicates an inert value.
func Copy[T Inert](v T) T {
	return v
}
