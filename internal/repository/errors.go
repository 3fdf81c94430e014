package repository

import "errors"

// Sentinel errors shared by every storage backend. Usecases translate them
// into their own domain errors; raw driver errors never cross this boundary.
var (
	ErrNotFound  = errors.New("repository: not found")
	ErrDuplicate = errors.New("repository: duplicate record")
)
