package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorKind classifies failures so the REST layer can map them to a status
// code without string matching.
type ErrorKind string

const (
	ErrorKindNotFound          ErrorKind = "NotFound"
	ErrorKindInvalidState      ErrorKind = "InvalidState"
	ErrorKindOverDelivery      ErrorKind = "OverDelivery"
	ErrorKindInsufficientStock ErrorKind = "InsufficientStock"
	ErrorKindValidation        ErrorKind = "ValidationError"
	ErrorKindForbidden         ErrorKind = "Forbidden"
)

type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: ErrorKindNotFound, Message: message}
}

func NewInvalidStateError(message string) *AppError {
	return &AppError{Kind: ErrorKindInvalidState, Message: message}
}

func NewOverDeliveryError(message string) *AppError {
	return &AppError{Kind: ErrorKindOverDelivery, Message: message}
}

func NewInsufficientStockError(message string) *AppError {
	return &AppError{Kind: ErrorKindInsufficientStock, Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: ErrorKindValidation, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: ErrorKindForbidden, Message: message}
}

// KindOf returns the error's kind, defaulting to ValidationError for plain
// errors (legacy validate() paths return errors.New).
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, ErrorRecordNotFound) {
		return ErrorKindNotFound
	}
	return ErrorKindValidation
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
