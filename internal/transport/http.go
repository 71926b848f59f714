// Package transport contains implementations of model.Transport.
package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/civic311/dc311/internal/model"
	"github.com/civic311/dc311/internal/version"
)

// DefaultTimeout is the timeout of the default HTTP client.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBodySize is the default maximum size of a response body.
const DefaultMaxBodySize = 1 << 24

// HTTP is a model.Transport using an HTTP client. To construct this
// struct, initialize all the fields marked as MANDATORY or use NewHTTP.
type HTTP struct {
	// Client is the MANDATORY HTTP client to use.
	Client model.HTTPClient

	// Logger is the MANDATORY logger to use.
	Logger model.DebugLogger

	// MaxBodySize is the OPTIONAL maximum body size. If zero, we
	// use the DefaultMaxBodySize value.
	MaxBodySize int64

	// UserAgent is the OPTIONAL User-Agent header to send.
	UserAgent string
}

var _ model.Transport = &HTTP{}

// NewHTTP creates a new HTTP transport using a stdlib client
// with DefaultTimeout and the default User-Agent.
func NewHTTP(logger model.DebugLogger) *HTTP {
	if logger == nil {
		logger = model.DiscardLogger
	}
	return &HTTP{
		Client:    &http.Client{Timeout: DefaultTimeout},
		Logger:    logger,
		UserAgent: version.UserAgent,
	}
}

// ErrBodyTooLarge indicates the response body exceeds MaxBodySize.
var ErrBodyTooLarge = errors.New("transport: response body too large")

// Request implements model.Transport.
func (txp *HTTP) Request(ctx context.Context, URL, method string,
	headers map[string]string, body []byte) (model.ResponseHeaders, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, URL, reader)
	if err != nil {
		return nil, nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if txp.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", txp.UserAgent)
	}
	txp.Logger.Debugf("transport: %s %s", method, URL)
	resp, err := txp.Client.Do(req)
	if err != nil {
		txp.Logger.Debugf("transport: %s %s: %s", method, URL, err.Error())
		return nil, nil, err
	}
	defer resp.Body.Close()
	maxSize := txp.MaxBodySize
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, nil, ErrBodyTooLarge
	}
	txp.Logger.Debugf("transport: %s %s: %d (%d bytes)", method, URL, resp.StatusCode, len(data))
	return responseHeaders(resp), data, nil
}

// responseHeaders flattens the response headers into lowercase
// keys, joining repeated values, and adds the status.
func responseHeaders(resp *http.Response) model.ResponseHeaders {
	out := model.ResponseHeaders{}
	for key, values := range resp.Header {
		out[strings.ToLower(key)] = strings.Join(values, ", ")
	}
	out[model.ResponseHeaderStatus] = strconv.Itoa(resp.StatusCode)
	return out
}
