package audio

// State is the playback state of an Engine.
type State int32

const (
	StateIdle State = iota
	StatePlaying
	StateStopped
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// Role tags an engine with the plot it drives.
type Role int

const (
	RoleSource Role = iota
	RoleQuery
)

func (r Role) String() string {
	if r == RoleQuery {
		return "Query"
	}
	return "Source"
}
