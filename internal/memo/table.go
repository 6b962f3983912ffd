// Package memo memoizes pure functions over a bounded two-generation table.
//
// Only use it for functions whose result depends on nothing but the key.
package memo

import (
	"sync"
	"sync/atomic"
)

// Table is a bounded map. When the current generation fills up, the older
// generation is dropped and the full one becomes the fallback.
type Table[K comparable, V any] struct {
	gens    [2]*sync.Map
	headIdx atomic.Uint32
	size    atomic.Uint32
	maxSize uint32
}

// NewTable returns a table holding at most about 2*maxSize entries.
func NewTable[K comparable, V any](maxSize uint32) *Table[K, V] {
	if maxSize == 0 {
		panic("maxSize should be greater than 0")
	}
	return &Table[K, V]{
		gens:    [2]*sync.Map{{}, {}},
		maxSize: maxSize,
	}
}

// Load looks k up in the current generation, then the previous one.
func (t *Table[K, V]) Load(k K) (V, bool) {
	headIdx := t.headIdx.Load()
	v, ok := t.gens[headIdx].Load(k)
	if !ok {
		v, ok = t.gens[1-headIdx].Load(k)
		if !ok {
			var zero V
			return zero, false
		}
	}
	return v.(V), true
}

// Store puts k into the current generation.
func (t *Table[K, V]) Store(k K, v V) {
	if swapped := t.size.CompareAndSwap(t.maxSize, 0); swapped {
		next := 1 - t.headIdx.Load()
		t.gens[next] = &sync.Map{}
		t.headIdx.Store(next)
	}
	t.gens[t.headIdx.Load()].Store(k, v)
	t.size.Add(1)
}

// Tableize memoizes a pure single-argument function.
func Tableize[K comparable, V any](pureFn func(K) V, maxTableSize uint32) func(K) V {
	table := NewTable[K, V](maxTableSize)
	return func(k K) V {
		v, ok := table.Load(k)
		if !ok {
			v = pureFn(k)
			table.Store(k, v)
		}
		return v
	}
}
