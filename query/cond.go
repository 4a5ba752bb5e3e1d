package query

import "fmt"

// Cond is a comparison between a stored value and a query operand.
type Cond uint8

const (
	// Equal matches values equal to the operand.
	Equal Cond = iota
	// NotEqual matches values different from the operand.
	NotEqual
	// Less matches values below the operand.
	Less
	// Greater matches values above the operand.
	Greater

	// NumConds is the number of conditions.
	NumConds
)

// String returns the condition name.
func (c Cond) String() string {
	switch c {
	case Equal:
		return "equal"
	case NotEqual:
		return "not_equal"
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return fmt.Sprintf("cond(%d)", uint8(c))
	}
}

// Eval reports whether stored value v satisfies the condition against operand.
func (c Cond) Eval(v, operand int64) bool {
	switch c {
	case Equal:
		return v == operand
	case NotEqual:
		return v != operand
	case Less:
		return v < operand
	case Greater:
		return v > operand
	}
	panic(fmt.Sprintf("query: unknown condition %d", c))
}

// CanMatch reports whether any value in [lo, hi] can satisfy the condition.
func (c Cond) CanMatch(operand, lo, hi int64) bool {
	switch c {
	case Equal:
		return operand >= lo && operand <= hi
	case NotEqual:
		return !(lo == hi && lo == operand)
	case Less:
		return lo < operand
	case Greater:
		return hi > operand
	}
	return false
}

// WillMatch reports whether every value in [lo, hi] satisfies the condition.
func (c Cond) WillMatch(operand, lo, hi int64) bool {
	switch c {
	case Equal:
		return lo == hi && lo == operand
	case NotEqual:
		return operand < lo || operand > hi
	case Less:
		return hi < operand
	case Greater:
		return lo > operand
	}
	return false
}
