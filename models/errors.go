package models

import "fmt"

// Typed errors so handlers can map service failures to HTTP statuses
// without string matching.

type ErrorNotFound struct {
	Message string
}

func (e ErrorNotFound) Error() string {
	return e.Message
}

// ErrorConflict signals a lost renumbering or version race after the retry
// budget is spent.
type ErrorConflict struct {
	Message string
}

func (e ErrorConflict) Error() string {
	return e.Message
}

type ErrorUnauthorized struct {
	Message string
}

func (e ErrorUnauthorized) Error() string {
	return e.Message
}

type ErrorBadRequest struct {
	Message string
}

func (e ErrorBadRequest) Error() string {
	return e.Message
}

// ErrorCompile carries the compiler diagnostics back to the author. The
// canonical component source is never touched when this is returned.
type ErrorCompile struct {
	Message string
	Line    int
	Column  int
}

func (e ErrorCompile) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("compile error at line %d: %s", e.Line, e.Message)
	}
	return "compile error: " + e.Message
}
