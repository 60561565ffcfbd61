package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jask/warehousedash/internal/session"
)

// Kind classifies a failed backend call.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// User-facing messages. They are stable: screens and tests compare against them.
const (
	MsgUnauthorized      = "Your session has expired. Please log in again."
	MsgNotFound          = "The record no longer exists."
	MsgValidation        = "The server rejected the submitted data."
	MsgRetry             = "Something went wrong. Please try again."
	MsgPasswordIncorrect = "Current password is incorrect"
)

// Error is a failed backend call.
type Error struct {
	Op     string
	Kind   Kind
	Status int
	// Detail is the server-supplied explanation, if any.
	Detail string
	// RequiredRole is the role the endpoint demands; used for Forbidden messages.
	RequiredRole session.Role
	Err          error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an Error of the given kind; fakes and the dev server use it.
func NewError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, Status: statusForKind(kind)}
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindUnknown
	}
}

func statusForKind(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return 0
	}
}

// Message maps err to the text shown next to the control that triggered it.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return MsgRetry
	}
	switch apiErr.Kind {
	case KindUnauthorized:
		return MsgUnauthorized
	case KindForbidden:
		return ForbiddenMessage(apiErr.RequiredRole)
	case KindNotFound:
		return MsgNotFound
	case KindValidation:
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return MsgValidation
	case KindNetwork:
		return MsgRetry
	default:
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return MsgRetry
	}
}

// PasswordMessage is Message for the change-password call, where a bare 400
// means the current password did not match.
func PasswordMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindValidation && apiErr.Detail == "" {
		return MsgPasswordIncorrect
	}
	return Message(err)
}

// ForbiddenMessage names the role an action needs.
func ForbiddenMessage(role session.Role) string {
	if !role.Valid() {
		role = session.RoleAdmin
	}
	return fmt.Sprintf("You don't have permission to do this. %s access required.", role.Title())
}
