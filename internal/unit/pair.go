package unit

import "fmt"

// IndexPair drives one extraction window: Code is the mapped direction value
// and Start is the 1-based column where the window begins.
type IndexPair struct {
	Code  int
	Start int
}

// Offset converts the 1-based start into a zero-based column index.
func (p IndexPair) Offset() int {
	return p.Start - 1
}

func (p IndexPair) String() string {
	return fmt.Sprintf("(%d, %d)", p.Code, p.Start)
}
