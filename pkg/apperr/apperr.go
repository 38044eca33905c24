// Package apperr 定义业务错误分类，handler 按 Kind 映射 HTTP 状态码.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别.
type Kind string

const (
	KindBadRequest      Kind = "BadRequest"
	KindUnauthorized    Kind = "Unauthorized"
	KindForbidden       Kind = "Forbidden"
	KindNotFound        Kind = "NotFound"
	KindConflict        Kind = "Conflict"
	KindUpstreamAuth    Kind = "UpstreamAuthError"
	KindUpstreamRequest Kind = "UpstreamRequestError"
	KindInternal        Kind = "InternalError"
)

// Status 返回类别对应的 HTTP 状态码，上游错误对调用方表现为 500.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error 业务错误，Message 可直接返回给调用方，Err 为内部原因.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, apperr.NotFound("")) 之类的比较按类别匹配.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && t.Message == ""
	}

	return false
}

// New 创建指定类别的错误.
func New(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func BadRequest(msg string) *Error { return New(KindBadRequest, msg, nil) }

func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg, nil) }

func Forbidden(msg string) *Error { return New(KindForbidden, msg, nil) }

func NotFound(msg string) *Error { return New(KindNotFound, msg, nil) }

func Conflict(msg string) *Error { return New(KindConflict, msg, nil) }

func UpstreamAuth(msg string, err error) *Error { return New(KindUpstreamAuth, msg, err) }

func UpstreamRequest(msg string, err error) *Error { return New(KindUpstreamRequest, msg, err) }

func Internal(msg string, err error) *Error { return New(KindInternal, msg, err) }

// KindOf 返回错误类别，非 *Error 一律视为 InternalError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// From 把任意错误转换为 *Error，已分类的原样返回.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return Internal("internal server error", err)
}
