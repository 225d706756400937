package ftpd

import (
	"errors"
	"fmt"
)

// commandError is a reply-code-carrying error, so that a handler can return
// one built with newCommandError(code, msg, errSandboxViolation) and have it
// surface to the client with the right code, instead of every helper
// writing the response itself.
type commandError struct {
	code int
	msg  string
	err  error
}

func newCommandError(code int, msg string, err error) *commandError {
	return &commandError{code: code, msg: msg, err: err}
}

func (e *commandError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}

	return e.msg
}

func (e *commandError) Unwrap() error {
	return e.err
}

// Error taxonomy from spec §7, each tied to its canonical reply code.
var (
	errNotAuthenticated       = errors.New("not logged in")
	errSequenceError          = errors.New("bad command sequence")
	errBadArgument            = errors.New("bad argument")
	errUnsupportedParameter   = errors.New("unsupported parameter")
	errNotFound               = errors.New("not found")
	errConflict               = errors.New("conflict")
	errSandboxViolation       = errors.New("sandbox violation")
	errDataChannelUnavailable = errors.New("data channel unavailable")
	errTransferFailed         = errors.New("transfer failed")
)

// DriverError wraps any error surfaced by the authentication or filesystem
// collaborators.
type DriverError struct {
	str string
	err error
}

func newDriverError(str string, err error) *DriverError {
	return &DriverError{str: str, err: err}
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver error: %s: %v", e.str, e.err)
}

func (e *DriverError) Unwrap() error {
	return e.err
}

// NetworkError wraps a control- or data-channel socket error.
type NetworkError struct {
	str string
	err error
}

func newNetworkError(str string, err error) *NetworkError {
	return &NetworkError{str: str, err: err}
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.str, e.err)
}

func (e *NetworkError) Unwrap() error {
	return e.err
}

// replyCodeFor maps an error (possibly wrapped) to the reply code a handler
// should send, per the taxonomy in spec §7. Unrecognised errors default to
// the caller-supplied fallback.
func replyCodeFor(err error, fallback int) int {
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return cmdErr.code
	}

	switch {
	case errors.Is(err, errNotAuthenticated):
		return statusNotLoggedIn
	case errors.Is(err, errSequenceError):
		return statusBadSequence
	case errors.Is(err, errBadArgument):
		return statusSyntaxErrorParams
	case errors.Is(err, errUnsupportedParameter):
		return statusCommandNotImplPar
	case errors.Is(err, errNotFound), errors.Is(err, errConflict), errors.Is(err, errSandboxViolation):
		return statusActionNotTakenFile
	case errors.Is(err, errDataChannelUnavailable):
		return statusCantOpenDataConn
	case errors.Is(err, errTransferFailed):
		return statusActionNotTakenFile
	default:
		return fallback
	}
}
