// pkg/common/errors/user_errors.go

/*
  - Usage
    // wrong:
    if err.(*hzte.Error).Meta != nil { // may panic
    // ...
    }

    // right:
    if kind := errors.KindOf(err); kind == errors.KindNotFound {
    // ...
    }
*/
package errors

import (
	"errors"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// Kind classifies a failure for the HTTP layer. It travels as the Meta of a
// Hertz error.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindDuplicateValue
	KindNotFound
	KindInvalidCredentials
	KindUnauthenticated
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindDuplicateValue:
		return "duplicate_value"
	case KindNotFound:
		return "not_found"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Client visible messages.
const (
	MsgServerError         = "An error occurred on the server. Please try again later."
	MsgWrongCredentials    = "Wrong credentials"
	MsgAccessDenied        = "Access denied you need to be logged in"
	MsgUsernameUsed        = "Username is already used!"
	MsgEmailUsed           = "Email is already used!"
	MsgUserNotFound        = "User does not exist"
	MsgUpdateTargetMissing = "User does not exist."
	MsgDeleteNotPerformed  = "Registry deletion was not performed"
)

var (
	ErrWrongCredentials = New(KindInvalidCredentials, MsgWrongCredentials)
	ErrAccessDenied     = New(KindUnauthenticated, MsgAccessDenied)
	ErrUsernameUsed     = New(KindDuplicateValue, MsgUsernameUsed)
	ErrEmailUsed        = New(KindDuplicateValue, MsgEmailUsed)
)

// New builds a public error: its message is shown to the client as-is.
func New(kind Kind, msg string) *hzte.Error {
	return hzte.New(errors.New(msg), hzte.ErrorTypePublic, kind)
}

// Wrap builds a private error around an internal cause. Clients only ever see
// MsgServerError for it.
func Wrap(kind Kind, cause error) *hzte.Error {
	return hzte.New(cause, hzte.ErrorTypePrivate, kind)
}

// KindOf reports the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var hzteErr *hzte.Error
	if errors.As(err, &hzteErr) {
		if kind, ok := hzteErr.Meta.(Kind); ok {
			return kind
		}
	}
	return KindUnknown
}
