package idgen

import "github.com/google/uuid"

// NewFunc returns a time-ordered identifier, so ids sort by creation. It is
// a variable so tests can stub it.
var NewFunc = func() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// New returns a new globally unique identifier.
func New() string { return NewFunc() }
