// Package pureclone defines the pure duplication capability required by
// cell.Cell.
//
// PureClone is not Clone. An ordinary Clone method may do anything: log, read
// a global, or reach back into the very cell it is being copied out of.
// PureClone is a promise that it does none of that:
//
//	→ it terminates,
//	→ it reads and writes no shared mutable container,
//	→ it depends on nothing outside the value,
//	→ it returns the same result for the same value.
//
// The package cannot check that promise. What it does is keep the promise
// narrow enough to be derived mechanically (see cmd/pureclone-gen) and keep
// dispatch explicit: derived code and cell.Cell only ever reach a value's
// duplication through Clone, whose constraint binds to the PureCloner method
// set. A hand-written Clone, Copy or DeepCopy on the same type is never called.
//
// Features:
//   - PureCloner: the capability itself.
//   - Inert: primitives whose bit copy is their pure duplicate.
//   - Box, Slice, Map and their Copy/Func variants: structural duplication
//     that is pure whenever the element duplication is.
//   - Shared and Ref: handles whose duplicate is the same handle.
//
// Example:
//
//	//pureclone:derive
//	type Point struct {
//	    X, Y int
//	    Tags []string
//	}
//
//	p2 := pureclone.Clone(p) // never p.Clone()
package pureclone
