package model

import "context"

// ResponseHeaders contains the headers of an API response. Keys
// are lowercase. The "status" key contains the numeric HTTP status
// code as text (e.g., "200").
type ResponseHeaders map[string]string

// ResponseHeaderStatus is the ResponseHeaders key holding the status code.
const ResponseHeaderStatus = "status"

// Status returns the raw value of the status entry.
func (rh ResponseHeaders) Status() string {
	return rh[ResponseHeaderStatus]
}

// Transport performs a single API round trip.
//
// Implementations MAY add caching, connection pooling, or any
// other transparent behavior, as long as they honor this contract.
type Transport interface {
	// Request sends a request to URL using the given method and
	// headers. A nil body means the request has no body. On success,
	// it returns the response headers (including "status") and the
	// raw response body, regardless of the status code. The error
	// is only for failures to complete the round trip.
	Request(ctx context.Context, URL, method string,
		headers map[string]string, body []byte) (ResponseHeaders, []byte, error)
}
