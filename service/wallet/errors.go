package walletsvc

import "errors"

type ErrCode string

const (
	ErrInvalidAmount     ErrCode = "INVALID_AMOUNT"
	ErrInsufficientFunds ErrCode = "INSUFFICIENT_FUNDS"
	ErrNotFound          ErrCode = "NOT_FOUND"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e *codedError) Error() string { return e.msg }

func wrap(code ErrCode, msg string) error { return &codedError{code: code, msg: msg} }

func Code(err error) ErrCode {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return ""
}
