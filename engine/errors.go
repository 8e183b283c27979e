package engine

import "errors"

// ErrorCode classifies every validation failure the engine can return.
// All failures are synchronous and leave table state untouched.
type ErrorCode string

const (
	CodeNotHost         ErrorCode = "not_host"
	CodeInvalidPhase    ErrorCode = "invalid_phase"
	CodeNotActivePlayer ErrorCode = "not_active_player"
	CodeInvalidAction   ErrorCode = "invalid_action"
	CodeTableFull       ErrorCode = "table_full"
)

type EngineError struct {
	Code   ErrorCode
	Reason string
}

func (e *EngineError) Error() string {
	if e.Reason == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Reason
}

func errNotHost(reason string) error {
	return &EngineError{Code: CodeNotHost, Reason: reason}
}

func errInvalidPhase(reason string) error {
	return &EngineError{Code: CodeInvalidPhase, Reason: reason}
}

func errNotActivePlayer(reason string) error {
	return &EngineError{Code: CodeNotActivePlayer, Reason: reason}
}

func errInvalidAction(reason string) error {
	return &EngineError{Code: CodeInvalidAction, Reason: reason}
}

func errTableFull(reason string) error {
	return &EngineError{Code: CodeTableFull, Reason: reason}
}

// IsCode reports whether err is an EngineError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
