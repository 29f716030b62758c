package bookingsvc

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrForbidden    ErrCode = "FORBIDDEN"
	ErrInvalidState ErrCode = "INVALID_STATE"
	ErrInvalidRange ErrCode = "INVALID_RANGE"
	ErrInvalidOTP   ErrCode = "INVALID_OTP"
	ErrSettlement   ErrCode = "SETTLEMENT_FAILED"
)

type codedError struct {
	code  ErrCode
	msg   string
	cause error
}

func (e *codedError) Error() string {
	switch {
	case e.msg != "" && e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.cause)
	case e.msg != "":
		return fmt.Sprintf("%s: %s", e.code, e.msg)
	case e.cause != nil:
		return fmt.Sprintf("%s: %v", e.code, e.cause)
	}
	return string(e.code)
}

func (e *codedError) Code() ErrCode { return e.code }
func (e *codedError) Unwrap() error { return e.cause }

func makeErr(c ErrCode, msg string) error { return &codedError{code: c, msg: msg} }

func wrapErr(c ErrCode, msg string, cause error) error {
	return &codedError{code: c, msg: msg, cause: cause}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// malformedID reports whether postgres refused an id that is not a uuid.
// Such an id cannot name any row.
func malformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
