package query

// State receives matching indices from a find operation.
type State interface {
	// Match is called with each matching index in ascending order. Returning
	// false stops the scan.
	Match(index int) bool
}

// StateFunc adapts a function to State.
type StateFunc func(index int) bool

// Match implements State.
func (f StateFunc) Match(index int) bool { return f(index) }

// Collect appends every matching index. A positive Limit stops the scan after
// that many matches.
type Collect struct {
	Indices []int
	Limit   int
}

// Match implements State.
func (c *Collect) Match(index int) bool {
	c.Indices = append(c.Indices, index)
	return c.Limit <= 0 || len(c.Indices) < c.Limit
}

// Count counts matches. A positive Limit stops the scan after that many.
type Count struct {
	N     int
	Limit int
}

// Match implements State.
func (c *Count) Match(int) bool {
	c.N++
	return c.Limit <= 0 || c.N < c.Limit
}

// First records the first match and stops.
type First struct {
	Index int
	Found bool
}

// Match implements State.
func (f *First) Match(index int) bool {
	f.Index = index
	f.Found = true
	return false
}
