package proto

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	ErrUnknown             ErrorCode = -1
	ErrStatusBadRequest    ErrorCode = 400
	ErrStatusNotFound      ErrorCode = 404
	ErrInternalServerError ErrorCode = 500
	ErrNotImplemented      ErrorCode = 501
)

type ResponseError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
	cause   error
}

func (e *ResponseError) Unwrap() error {
	return e.cause
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, cause error) *ResponseError {
	return &ResponseError{
		cause:   cause,
		Code:    code,
		Message: cause.Error(),
	}
}

func NewBadRequestError(cause error) *ResponseError {
	return NewError(ErrStatusBadRequest, cause)
}

func NewNotFoundError(cause error) *ResponseError {
	return NewError(ErrStatusNotFound, cause)
}

// ToResponseError converts any error into a ResponseError, defaulting to
// an internal server error.
func ToResponseError(err error) *ResponseError {
	var re *ResponseError
	if errors.As(err, &re) {
		return re
	}
	return NewError(ErrInternalServerError, err)
}
