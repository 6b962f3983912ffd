package basic

import (
	"net/netip"

	"github.com/on-the-ground/clone_cell_go/pureclone"
)

//pureclone:derive
type Config struct {
	Name    string
	Addr    netip.Addr
	Weights map[string]float64
	Peers   []*Peer
	Meta    pureclone.Shared[Meta]
}

type Meta struct {
	Owner string
}

//pureclone:derive
type Peer struct {
	ID   uint64
	Tags [4]string
}

// Celsius is only derived when named with -type.
type Celsius float64

//pureclone:derive
type Matrix [3][]float64
