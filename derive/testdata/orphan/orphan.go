package orphan

// Record was derived once, under another name.
type Record struct {
	N int
}
