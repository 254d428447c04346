package serve

// State is a stage of the connection lifecycle. A connection only moves forward, except that
// Parsing may return back to Reading if the request isn't complete yet.
//
// Any failure moves the connection through Errored. If an error response can still be
// written, the connection continues with Writing and ends up Closed, so Errored as the final
// state means the peer got no response at all. Conn.Failed tells whether Errored was passed.
type State uint8

const (
	Reading State = iota
	Parsing
	Routing
	Handling
	Writing
	Closed
	Errored
)

func (s State) String() string {
	switch s {
	case Reading:
		return "Reading"
	case Parsing:
		return "Parsing"
	case Routing:
		return "Routing"
	case Handling:
		return "Handling"
	case Writing:
		return "Writing"
	case Closed:
		return "Closed"
	case Errored:
		return "Errored"
	default:
		return "Unknown"
	}
}
