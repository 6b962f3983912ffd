package derive

import (
	"fmt"
	"go/types"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// defaultInert lists library types whose plain copy is a pure duplicate even
// though their fields are not all primitives.
var defaultInert = []string{
	"time.Time",
	"net/netip.Addr",
	"net/netip.AddrPort",
	"net/netip.Prefix",
}

// InertTable is the set of named types, written importpath.Name, treated as
// primitives by the generator.
type InertTable struct {
	names map[string]struct{}
}

type tableFile struct {
	Inert []string `yaml:"inert"`
}

// DefaultInertTable returns the built-in table.
func DefaultInertTable() *InertTable {
	return NewInertTable(defaultInert...)
}

// NewInertTable returns a table holding exactly names.
func NewInertTable(names ...string) *InertTable {
	t := &InertTable{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		t.names[n] = struct{}{}
	}
	return t
}

// LoadInertTable returns the built-in table extended with the entries of the
// YAML file at path.
func LoadInertTable(path string) (*InertTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inert table: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse inert table %s: %w", path, err)
	}
	t := DefaultInertTable()
	for _, n := range f.Inert {
		t.names[n] = struct{}{}
	}
	return t, nil
}

// Contains reports whether named is listed.
func (t *InertTable) Contains(named *types.Named) bool {
	obj := named.Obj()
	if obj.Pkg() == nil {
		return false
	}
	_, ok := t.names[obj.Pkg().Path()+"."+obj.Name()]
	return ok
}

// Names returns the entries in sorted order.
func (t *InertTable) Names() []string {
	out := make([]string, 0, len(t.names))
	for n := range t.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
