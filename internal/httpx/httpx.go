// Package httpx contains the request dispatcher for the Open311 API.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/civic311/dc311/internal/model"
	"github.com/civic311/dc311/internal/scrubber"
)

const (
	// FormatSuffix is appended to every method name to request JSON.
	FormatSuffix = ".json"

	// APIKeyParam is the name of the query parameter carrying the API key.
	APIKeyParam = "apikey"
)

// APIClient calls methods of the Open311 API. To construct this
// APIClient, make sure you initialize all fields marked as MANDATORY.
type APIClient struct {
	// APIKey is the OPTIONAL API key to attach to every request.
	APIKey string

	// BaseURL is the MANDATORY base URL of the API.
	BaseURL string

	// Logger is the MANDATORY logger to use.
	Logger model.DebugLogger

	// Transport is the MANDATORY transport to use.
	Transport model.Transport
}

// ErrRequestFailed indicates that the server did not return 200.
var ErrRequestFailed = errors.New("httpx: request failed")

// RequestError is the error returned when the status is not 200. It
// contains everything we know about the failed request.
type RequestError struct {
	// Message is a short description of the failure.
	Message string

	// URL is the request URL, including the query string.
	URL string

	// RequestBody is the request body or nil.
	RequestBody []byte

	// Headers contains the response headers.
	Headers model.ResponseHeaders

	// Body is the response body.
	Body []byte
}

var _ error = &RequestError{}

// Error implements error. The API key is scrubbed from the URL.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s in request to %s: %s\n%s",
		e.Message, scrubber.Scrub(e.URL), e.Headers.Status(), strings.TrimSpace(string(e.Body)))
}

// Unwrap allows matching a RequestError with ErrRequestFailed.
func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}

// request is a request ready to be sent using the transport.
type request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte
}

// EndpointURL returns the URL of the given API method, resolved
// relative to the BaseURL.
func (c *APIClient) EndpointURL(methodName string) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(methodName + FormatSuffix)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// withAPIKey returns a copy of params including the API key, unless
// the caller already provided a value for APIKeyParam.
func (c *APIClient) withAPIKey(params url.Values) url.Values {
	out := url.Values{}
	for key, values := range params {
		out[key] = append([]string{}, values...)
	}
	if c.APIKey != "" && !out.Has(APIKeyParam) {
		out.Set(APIKeyParam, c.APIKey)
	}
	return out
}

// newRequest creates a new request.
func (c *APIClient) newRequest(methodName, httpMethod string, params url.Values) (*request, error) {
	URL, err := c.EndpointURL(methodName)
	if err != nil {
		return nil, err
	}
	req := &request{
		URL:    URL,
		Method: httpMethod,
		Headers: map[string]string{
			"Accept": model.HTTPHeaderAccept,
		},
	}
	params = c.withAPIKey(params)
	if len(params) <= 0 {
		return req, nil
	}
	encoded := params.Encode() // sorted by key
	if httpMethod == http.MethodGet {
		if strings.Contains(req.URL, "?") {
			req.URL += "&"
		} else {
			req.URL += "?"
		}
		req.URL += encoded
		return req, nil
	}
	req.Body = []byte(encoded)
	req.Headers["Content-Type"] = model.HTTPHeaderContentTypeForm
	return req, nil
}

// CallMethod calls the given API method and returns the parsed JSON
// response. Params are sent in the query string for GET and in a form
// encoded body otherwise. Transport and JSON errors are returned as is;
// a status other than 200 causes a *RequestError.
func (c *APIClient) CallMethod(ctx context.Context,
	methodName, httpMethod string, params url.Values) (any, error) {
	req, err := c.newRequest(methodName, httpMethod, params)
	if err != nil {
		return nil, err
	}
	c.Logger.Debugf("httpx: method: %s", req.Method)
	c.Logger.Debugf("httpx: URL: %s", req.URL)
	if req.Body != nil {
		c.Logger.Debugf("httpx: request body: %d bytes", len(req.Body))
	}
	headers, body, err := c.Transport.Request(ctx, req.URL, req.Method, req.Headers, req.Body)
	if err != nil {
		return nil, err
	}
	status, err := strconv.Atoi(headers.Status())
	if err != nil {
		return nil, &RequestError{
			Message:     "Malformed status",
			URL:         req.URL,
			RequestBody: req.Body,
			Headers:     headers,
			Body:        body,
		}
	}
	if status != http.StatusOK {
		return nil, &RequestError{
			Message:     "Error",
			URL:         req.URL,
			RequestBody: req.Body,
			Headers:     headers,
			Body:        body,
		}
	}
	c.Logger.Debugf("httpx: response body: %d bytes", len(body))
	var output any
	if err := json.Unmarshal(body, &output); err != nil {
		return nil, err
	}
	return output, nil
}
