package store

// Origin tells where a command result was persisted.
type Origin int

const (
	// OriginNone means the command matched nothing and changed nothing.
	OriginNone Origin = iota
	// OriginRemote means the remote service accepted the change.
	OriginRemote
	// OriginLocal means the change lives only in the local cache.
	OriginLocal
)

func (o Origin) String() string {
	switch o {
	case OriginRemote:
		return "remote"
	case OriginLocal:
		return "local-only"
	default:
		return "none"
	}
}

// Saved is the outcome of a store command.
type Saved[T any] struct {
	Record T
	Origin Origin
}

// Changed reports whether the command modified the collection.
func (s Saved[T]) Changed() bool { return s.Origin != OriginNone }
