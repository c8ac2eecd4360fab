package llmqueue

import "errors"

// ErrAlreadyInProgress is returned by Submit for an AUTONOMOUS request when
// a pending or processing request of the same priority already exists
// (§4.9 "Dedup" — prevents autonomous review pileups).
var ErrAlreadyInProgress = errors.New("llmqueue: autonomous request already in progress")

// ErrNotFound is returned by WaitForResult when the request id exists in
// none of the four directories.
var ErrNotFound = errors.New("llmqueue: request not found")

// ErrTimeout is returned by WaitForResult when the deadline elapses before
// the request reaches a terminal status.
var ErrTimeout = errors.New("llmqueue: wait timed out")
