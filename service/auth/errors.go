package authsvc

import "errors"

type ErrCode string

const (
	ErrEmailTaken   ErrCode = "EMAIL_TAKEN"
	ErrBadInput     ErrCode = "BAD_INPUT"
	ErrInvalidCreds ErrCode = "INVALID_CREDENTIALS"
	ErrNotFound     ErrCode = "NOT_FOUND"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() ErrCode { return e.code }

func wrap(code ErrCode, msg string) error { return &codedError{code: code, msg: msg} }

// Code extracts the ErrCode from err, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return ""
}
