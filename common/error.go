package common

import "errors"

// ErrNotConnected .
var (
	ErrNotConnected = errors.New("not connected")
	// ErrMalformedResponse means the panel replied with a body we could not decode
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNoCredentials .
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrJobTerminal means the job already reached a terminal status
	ErrJobTerminal = errors.New("job already finished")
	// ErrJobNotFound .
	ErrJobNotFound = errors.New("job not found")
	// ErrConfirmResolved means a confirmation was answered more than once
	ErrConfirmResolved = errors.New("confirmation already resolved")
	// ErrConfirmNotFound .
	ErrConfirmNotFound = errors.New("confirmation not found")
	// ErrUnknownAction means the answer is not one of the offered actions
	ErrUnknownAction = errors.New("unknown action")
)
