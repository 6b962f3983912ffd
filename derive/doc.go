// Package derive generates PureClone methods.
//
// A type is selected by a doc comment line reading exactly
//
//	//pureclone:derive
//
// or by naming it in Config.Types. For a struct the generated method
// duplicates each field with that field type's own pure clone. Inert fields
// are copied and pointers, slices, maps and arrays are duplicated element by
// element. Handle types such as pureclone.Shared keep aliasing.
//
// A sealed interface that declares PureClone() returning itself is a union.
// Each type in the package whose value method set holds the interface's
// unexported methods is one of its variants, and gets a PureClone returning
// the union.
//
// Generated code names only PureClone methods, reached through
// pureclone.Clone. A Clone method on any type is never called.
//
// Every field of every derived type must be duplicable, otherwise Generate
// fails with a *CapabilityError per offending field and writes nothing.
package derive
