package perrors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
)

type ErrCode struct {
	Code   string `json:"code"`
	Status int    `json:"status"`
}

var (
	ErrCodeInvalidInput  = ErrCode{"invalid_input", http.StatusBadRequest}
	ErrCodeNotFound      = ErrCode{"not_found", http.StatusNotFound}
	ErrCodeUnauthorized  = ErrCode{"unauthorized", http.StatusUnauthorized}
	ErrCodeForbidden     = ErrCode{"forbidden", http.StatusForbidden}
	ErrCodeAlreadyMember = ErrCode{"already_member", http.StatusBadRequest}
	ErrCodeNotAMember    = ErrCode{"not_a_member", http.StatusBadRequest}
	ErrCodeProtectedRole = ErrCode{"protected_role", http.StatusBadRequest}
	ErrCodeEmailTaken    = ErrCode{"email_taken", http.StatusBadRequest}
	ErrCodeUnexpected    = ErrCode{"unexpected", http.StatusInternalServerError}
)

// Kind sentinels for errors.Is. Two errors match when their codes match.
var (
	ErrInvalidInput  = &Err{Code: ErrCodeInvalidInput}
	ErrNotFound      = &Err{Code: ErrCodeNotFound}
	ErrUnauthorized  = &Err{Code: ErrCodeUnauthorized}
	ErrForbidden     = &Err{Code: ErrCodeForbidden}
	ErrAlreadyMember = &Err{Code: ErrCodeAlreadyMember}
	ErrNotAMember    = &Err{Code: ErrCodeNotAMember}
	ErrProtectedRole = &Err{Code: ErrCodeProtectedRole}
	ErrEmailTaken    = &Err{Code: ErrCodeEmailTaken}
	ErrUnexpected    = &Err{Code: ErrCodeUnexpected}
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Err struct {
	Code       ErrCode
	Message    string
	Fields     []FieldError
	Cause      error
	Stacktrace []string
}

func (e *Err) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.Code
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Err) Unwrap() error {
	return e.Cause
}

func (e *Err) Is(target error) bool {
	t, ok := target.(*Err)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *Err) HttpStatus() int {
	return e.Code.Status
}

// Print logs the error with its cause and the stack captured at creation.
func (e *Err) Print(ctx context.Context, args ...any) {
	args = append(args,
		slog.String("code", e.Code.Code),
		slog.Any("error", e.Cause),
		slog.Any("stacktrace", e.Stacktrace),
	)
	slog.ErrorContext(ctx, e.Message, args...)
}

func New(code ErrCode, msg string, cause error) error {
	return &Err{
		Code:    code,
		Message: msg,
		Cause:   cause,
	}
}

func NewErrInvalidInput(msg string, fields ...FieldError) error {
	return &Err{Code: ErrCodeInvalidInput, Message: msg, Fields: fields}
}

func NewErrNotFound(msg string) error {
	return New(ErrCodeNotFound, msg, nil)
}

func NewErrUnauthorized(msg string) error {
	return New(ErrCodeUnauthorized, msg, nil)
}

func NewErrForbidden(msg string) error {
	return New(ErrCodeForbidden, msg, nil)
}

func NewErrAlreadyMember(msg string) error {
	return New(ErrCodeAlreadyMember, msg, nil)
}

func NewErrNotAMember(msg string) error {
	return New(ErrCodeNotAMember, msg, nil)
}

func NewErrProtectedRole(msg string) error {
	return New(ErrCodeProtectedRole, msg, nil)
}

func NewErrEmailTaken(msg string) error {
	return New(ErrCodeEmailTaken, msg, nil)
}

// NewErrUnexpected wraps a store or internal failure. The caller only ever sees
// msg; the cause and stack are kept for the server log.
func NewErrUnexpected(msg string, cause error) error {
	pc := make([]uintptr, 20)
	count := runtime.Callers(2, pc)
	frames := runtime.CallersFrames(pc[:count])

	var stacktrace []string
	for frame, hasMore := frames.Next(); hasMore; frame, hasMore = frames.Next() {
		stacktrace = append(stacktrace, fmt.Sprintf("%s:%d", frame.File, frame.Line))
	}

	return &Err{
		Code:       ErrCodeUnexpected,
		Message:    msg,
		Cause:      cause,
		Stacktrace: stacktrace,
	}
}

// From returns err as an *Err. Anything that is not already classified is
// treated as unexpected.
func From(err error) *Err {
	if err == nil {
		return nil
	}

	var perr *Err
	if errors.As(err, &perr) {
		return perr
	}

	return NewErrUnexpected("Internal server error", err).(*Err)
}

// CodeOf returns the code of err, or ErrCodeUnexpected for unclassified errors.
func CodeOf(err error) ErrCode {
	return From(err).Code
}
