// Package query defines the comparison conditions evaluated directly against
// compressed leaves, and the state sinks that receive matching positions.
//
// A find operation calls State.Match for every matching index in ascending
// order. Returning false from Match stops the scan early; this is a caller
// request, not an error. "No matches" is signalled by never calling Match.
//
//	var s query.Collect
//	arr.FindAll(query.Equal, 16388, 0, -1, 0, &s)
//	fmt.Println(s.Indices) // [0 2 3 5]
package query
