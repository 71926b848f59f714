package dc311

import (
	"github.com/civic311/dc311/internal/coerce"
	"github.com/civic311/dc311/internal/httpx"
)

// RequestError is the error returned when the API responds with
// a status other than 200. It contains the request URL and body and
// the response headers and body.
type RequestError = httpx.RequestError

var (
	// ErrRequestFailed matches any *RequestError.
	ErrRequestFailed = httpx.ErrRequestFailed

	// ErrInvalidBoolean indicates a field that should be a boolean is not.
	ErrInvalidBoolean = coerce.ErrInvalidBoolean

	// ErrInvalidInteger indicates a field that should be an integer is not.
	ErrInvalidInteger = coerce.ErrInvalidInteger

	// ErrInvalidDate indicates a field that should be a date is not.
	ErrInvalidDate = coerce.ErrInvalidDate

	// ErrShapeAssertion indicates the response does not have the
	// structure we expect, which means the API changed.
	ErrShapeAssertion = coerce.ErrUnexpectedShape
)
