package apperr

import "fmt"

// Kind classifies an error for the API layer. Kinds map 1:1 to the
// GraphQL error entries the handler emits; none of them are transport
// failures.
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindUpstream      Kind = "upstream"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions lets the GraphQL layer surface the kind without importing
// this package's internals. Matches gqlerrors.ExtendedError.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"kind": string(e.Kind)}
}

func Authorization(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Upstream(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindUpstream, Message: fmt.Sprintf(format, args...), Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return KindInternal
	}
	return e.Kind
}
