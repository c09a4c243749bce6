package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for propagation policy. Kinds map directly
// onto the outbound error event: validation, not_found, conflict, capacity,
// authorization and rules_rejection are surfaced to the caller; transient
// failures are logged and swallowed; fatal failures trigger rollback.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindNotFound       ErrorKind = "not_found"
	KindConflict       ErrorKind = "conflict"
	KindCapacity       ErrorKind = "capacity"
	KindAuthorization  ErrorKind = "authorization"
	KindRulesRejection ErrorKind = "rules_rejection"
	KindGameNotActive  ErrorKind = "game_not_active"
	KindTransient      ErrorKind = "transient"
	KindFatal          ErrorKind = "fatal"
)

// Error is the single error type that crosses package boundaries. Code is the
// wire-level error code sent to clients; Action names the inbound event that
// failed so clients can correlate.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Action  string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// Is matches errors by kind and code so annotated copies (WithAction) still
// compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// E constructs a new taxonomy error.
func E(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches an underlying cause to a taxonomy error.
func Wrap(kind ErrorKind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, wrapped: err}
}

// WithAction returns a copy annotated with the inbound event name.
func (e *Error) WithAction(action string) *Error {
	clone := *e
	clone.Action = action
	return &clone
}

// KindOf extracts the ErrorKind from any error chain. Unclassified errors
// are treated as fatal so invariant violations are never silently downgraded.
func KindOf(err error) ErrorKind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindFatal
}

// CodeOf extracts the wire code, defaulting to internal_error.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "internal_error"
}

// Well-known errors shared across the engine. Callers compare with
// errors.Is, or inspect Kind/Code after errors.As.
var (
	ErrRoomNotFound     = E(KindNotFound, "not_found", "room not found")
	ErrRoomClosing      = E(KindConflict, "room_closing", "room is closing")
	ErrRoomFull         = E(KindCapacity, "room_full", "room is full")
	ErrUnknownPlayer    = E(KindNotFound, "unknown_player", "player is not in this room")
	ErrUnknownGame      = E(KindNotFound, "unknown_game", "no such game is registered")
	ErrUnknownCommand   = E(KindValidation, "unknown_command", "command type is not registered")
	ErrGameNotActive    = E(KindGameNotActive, "game_not_active", "no game is running in this room")
	ErrGameAlreadyOver  = E(KindConflict, "game_already_over", "the game has ended")
	ErrGameInProgress   = E(KindConflict, "game_in_progress", "a game is already running")
	ErrAlreadyStarting  = E(KindConflict, "game_already_starting", "start already in progress")
	ErrNotHost          = E(KindAuthorization, "not_host", "only the host may do this")
	ErrUndoNotOwner     = E(KindAuthorization, "undo_not_owner", "only the issuer may undo this command")
	ErrNothingToUndo    = E(KindConflict, "nothing_to_undo", "undo stack is empty")
	ErrNotEnoughPlayers = E(KindCapacity, "not_enough_players", "not all seats are filled and ready")
	ErrRateLimited      = E(KindAuthorization, "rate_limited", "too many requests")
	ErrUnknownEvent     = E(KindValidation, "unknown_event", "unrecognized event")
)
