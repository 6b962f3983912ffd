package hygiene

import pc "github.com/on-the-ground/clone_cell_go/pureclone"

var pureclone = "shadowed"

var in, out, e0 = 1, 2, 3

//pureclone:derive
type Wrapper[in pc.PureCloner[in]] struct {
	Item  in
	Items []in
	Grid  [][]in
}
