package model

import "errors"

var (
	// ErrCircuitOpen is returned when the memory circuit breaker denies a
	// request. Callers are expected to catch and ignore or log it.
	ErrCircuitOpen = errors.New("memory_circuit_open")

	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

// IsCircuitOpen reports whether err is a circuit-open rejection.
func IsCircuitOpen(err error) bool { return errors.Is(err, ErrCircuitOpen) }
