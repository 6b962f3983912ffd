package write

//pureclone:derive
type Record struct {
	ID    int
	Names []string
}
