package model

//
// Common HTTP definitions.
//

import "net/http"

const (
	// HTTPHeaderAccept is the Accept header sent with every API call.
	HTTPHeaderAccept = "application/json"

	// HTTPHeaderContentTypeForm is the Content-Type of POST bodies.
	HTTPHeaderContentTypeForm = "application/x-www-form-urlencoded"
)

// HTTPClient is the interface of a generic HTTP client. The
// stdlib's *http.Client implements this interface.
type HTTPClient interface {
	// Do should work like http.Client.Do.
	Do(req *http.Request) (*http.Response, error)

	// CloseIdleConnections should work like http.Client.CloseIdleConnections.
	CloseIdleConnections()
}
