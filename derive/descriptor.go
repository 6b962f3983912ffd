package derive

import (
	"go/token"
	"go/types"
)

// Kind is the shape of a derived type.
type Kind int

const (
	// KindStruct is a struct type; fields are duplicated one by one.
	KindStruct Kind = iota
	// KindValue is a non-struct, non-interface named type such as a named slice.
	KindValue
	// KindUnion is a sealed interface. It gets no method of its own; its
	// variants do.
	KindUnion
	// KindVariant is a type sealed into a union. Its PureClone returns the union.
	KindVariant
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindValue:
		return "value"
	case KindUnion:
		return "union"
	case KindVariant:
		return "variant"
	}
	return "unknown"
}

// ParamClass is what a type parameter's constraint guarantees.
type ParamClass int

const (
	// ParamUnbounded guarantees nothing; fields may only hold it behind a
	// handle or not at all.
	ParamUnbounded ParamClass = iota
	// ParamInert restricts the parameter to inert types.
	ParamInert
	// ParamCloner requires pureclone.PureCloner of the parameter.
	ParamCloner
)

// TypeDesc describes one derived type.
type TypeDesc struct {
	Name   string
	Kind   Kind
	Pos    token.Position
	Named  *types.Named
	Params []ParamDesc
	Fields []FieldDesc
	// Value is the plan for KindValue types.
	Value *plan
	// Union is set for variants.
	Union *TypeDesc
	// Variants is set for unions, in source order.
	Variants []*TypeDesc
}

// ParamDesc describes a type parameter of a derived type.
type ParamDesc struct {
	Name  string
	Class ParamClass
}

// FieldDesc describes one struct field.
type FieldDesc struct {
	Name     string
	Type     types.Type
	Embedded bool
	plan     *plan
}
