package errs

import "errors"

// 错误码直接基于 HTTP 语义
const (
	CodeValidation   = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeInternal     = 500
	CodeUnavailable  = 503
)

// Error 业务层统一错误，由 response.Fail 翻译成一次 HTTP 响应
type Error struct {
	Code int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "error"
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error   { return &Error{Code: CodeValidation, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Code: CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &Error{Code: CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &Error{Code: CodeNotFound, Msg: msg} }
func Conflict(msg string) error     { return &Error{Code: CodeConflict, Msg: msg} }

func Unavailable(msg string, err error) error {
	return &Error{Code: CodeUnavailable, Msg: msg, Err: err}
}

func Internal(msg string, err error) error {
	return &Error{Code: CodeInternal, Msg: msg, Err: err}
}

// CodeOf 非 *Error 一律视为 500
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func Is(err error, code int) bool { return err != nil && CodeOf(err) == code }
