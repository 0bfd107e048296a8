package buffer

import "fmt"

// RelationalOperator selects how a buffer occupancy is compared against a
// threshold level.
type RelationalOperator int

const (
	Greater RelationalOperator = iota
	Less
	Equal
	GreaterEqual
	LessEqual
)

// Compare reports whether value stands in the operator's relation to level.
// Unknown operators never match.
func (op RelationalOperator) Compare(value, level int) bool {
	switch op {
	case Greater:
		return value > level
	case Less:
		return value < level
	case Equal:
		return value == level
	case GreaterEqual:
		return value >= level
	case LessEqual:
		return value <= level
	}
	return false
}

func (op RelationalOperator) String() string {
	switch op {
	case Greater:
		return ">"
	case Less:
		return "<"
	case Equal:
		return "=="
	case GreaterEqual:
		return ">="
	case LessEqual:
		return "<="
	}
	return fmt.Sprintf("RelationalOperator(%d)", int(op))
}

// threshold is an attached notification. satisfied tracks whether the last
// evaluation matched so the callback only runs on the way in.
type threshold struct {
	fn        func()
	level     int
	op        RelationalOperator
	satisfied bool
}
