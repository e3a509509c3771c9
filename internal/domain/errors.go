package domain

import "errors"

// 业务错误统一在这里定义，transport 层映射成对应的响应码
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
)

// Invalid 包装一条带说明的校验错误
func Invalid(msg string) error { return &workflowErr{kind: ErrValidation, msg: msg} }

// Forbid 包装一条带说明的越权错误
func Forbid(msg string) error { return &workflowErr{kind: ErrForbidden, msg: msg} }

type workflowErr struct {
	kind error
	msg  string
}

func (e *workflowErr) Error() string { return e.msg }
func (e *workflowErr) Unwrap() error { return e.kind }
