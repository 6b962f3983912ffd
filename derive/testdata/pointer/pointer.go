package pointer

//pureclone:derive
type Point struct {
	X, Y int
}

//pureclone:derive
type PointRef *Point
