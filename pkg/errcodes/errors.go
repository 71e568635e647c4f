package errcodes

import (
	"fmt"
	"net/http"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found.",
		"not_found",
	}
}

// BookUnavailable is returned when a borrow request finds no available
// copies of the book.
func BookUnavailable() error {
	return &Error{
		http.StatusConflict,
		"No copies of this book are available.",
		"book_unavailable",
	}
}

// DuplicateActiveLoan is returned when a user tries to borrow a book they
// currently have on loan.
func DuplicateActiveLoan() error {
	return &Error{
		http.StatusConflict,
		"This book is already on loan to this user.",
		"duplicate_active_loan",
	}
}

// AlreadyReturned is returned when a returned loan is returned or renewed a
// second time. The fine was finalized on the first return and never changes.
func AlreadyReturned() error {
	return &Error{
		http.StatusConflict,
		"This loan has already been returned.",
		"already_returned",
	}
}

// AlreadyOverdue is returned when an overdue loan is renewed.
func AlreadyOverdue() error {
	return &Error{
		http.StatusUnprocessableEntity,
		"Overdue loans can't be renewed. Return the book to settle the fine.",
		"already_overdue",
	}
}

// MaxRenewalsReached is returned when a loan is renewed past the renewal cap.
func MaxRenewalsReached() error {
	return &Error{
		http.StatusUnprocessableEntity,
		"This loan has reached the renewal limit.",
		"max_renewals_reached",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"Unsupported Media Type",
		"unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Unknown Parameter %q", param),
		"unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_type_error",
	}
}

func ValidationError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_error",
	}
}

func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"empty_request_body",
	}
}
