package reject

//pureclone:derive
type Holder struct {
	OK    int
	Ch    chan int
	Fn    func()
	Other Opaque
}

// Opaque has no PureClone and is not derived.
type Opaque struct {
	p *int
}

//pureclone:derive
type Generic[T any] struct {
	V T
}
