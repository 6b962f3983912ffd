package pureclone

// Box duplicates an owned pointer. A nil pointer stays nil, which is what
// terminates recursive types such as `type List struct{ Next *List }`.
func Box[T PureCloner[T]](p *T) *T {
	return BoxFunc(p, Clone[T])
}

// CopyBox duplicates an owned pointer by copying the pointee.
// Only pure when a plain copy of T is pure.
func CopyBox[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// BoxFunc duplicates an owned pointer, duplicating the pointee with fn.
func BoxFunc[T any](p *T, fn func(T) T) *T {
	if p == nil {
		return nil
	}
	v := fn(*p)
	return &v
}

// Slice duplicates s element by element.
func Slice[T PureCloner[T]](s []T) []T {
	return SliceFunc(s, Clone[T])
}

// CopySlice duplicates s into fresh backing storage.
// Only pure when a plain copy of T is pure.
func CopySlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// SliceFunc duplicates s, duplicating each element with fn.
// nil stays nil and empty stays empty.
func SliceFunc[T any](s []T, fn func(T) T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Map duplicates m, duplicating each value through the capability.
// Keys are copied as they are.
func Map[K comparable, V PureCloner[V]](m map[K]V) map[K]V {
	return MapFunc(m, Clone[V])
}

// CopyMap duplicates m into a fresh map.
// Only pure when a plain copy of V is pure.
func CopyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MapFunc duplicates m, duplicating each value with fn.
func MapFunc[K comparable, V any](m map[K]V, fn func(V) V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = fn(v)
	}
	return out
}
