package parser

// State is a general state of the parser that tells a caller about current state of the
// request. It may be incomplete (Pending), complete (Completed), and completed with an
// error (Error).
type State uint8

const (
	Pending State = iota + 1
	Completed
	Error
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}
