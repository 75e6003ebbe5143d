// Package apierr carries an HTTP status and a stable machine code
// across the service/handler boundary alongside the wrapped cause.
package apierr

import "strconv"

type Error struct {
	Status int
	Code   string
	Err    error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	case e.Status != 0:
		return "api error (" + strconv.Itoa(e.Status) + ")"
	default:
		return "api error"
	}
}

func (e *Error) Unwrap() error { return e.Err }
