package conflict

//pureclone:derive
type Hand struct {
	N int
}

func (h Hand) PureClone() Hand { return h }

//pureclone:derive
type Field struct {
	PureClone int
}
