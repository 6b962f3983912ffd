package badunion

//pureclone:derive
type NoSeal interface {
	PureClone() NoSeal
}

//pureclone:derive
type Lonely interface {
	PureClone() Lonely
	isLonely()
}

//pureclone:derive
type Msg[T any] interface {
	PureClone() Msg[T]
	isMsg()
}

// Ping lacks Msg's type parameter.
type Ping struct{}

func (Ping) isMsg() {}

//pureclone:derive
type Shape interface {
	PureClone() Shape
	isShape()
}

// Square seals Shape by name only.
type Square struct{}

func (Square) isShape(int) {}
