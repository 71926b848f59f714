// Package dc311 is a client for the DC Open311 service request API.
//
// The API returns loosely typed JSON. This package turns it into typed
// records: the catalog of service types, the questions to answer to
// submit a request of a given type, and the status of a request.
package dc311

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/civic311/dc311/internal/httpx"
	"github.com/civic311/dc311/internal/model"
	"github.com/civic311/dc311/internal/scrubber"
	"github.com/civic311/dc311/internal/transport"
)

// DefaultBaseURL is the base URL of the public API.
const DefaultBaseURL = "http://api.dc.gov/open311/v1/"

// Transport performs a single API round trip.
type Transport = model.Transport

// ResponseHeaders contains the headers returned by a Transport.
type ResponseHeaders = model.ResponseHeaders

// Logger is the logger used by Service.
type Logger = model.Logger

// KeyValueStore is where a caching transport saves responses.
type KeyValueStore = model.KeyValueStore

// Config contains the configuration of a Service. The zero
// value connects to DefaultBaseURL without an API key.
type Config struct {
	// APIKey is the OPTIONAL API key. Most methods work without it.
	APIKey string

	// BaseURL is the OPTIONAL base URL. If empty, we use DefaultBaseURL.
	BaseURL string

	// Logger is the OPTIONAL logger. If nil, we discard logs. The
	// API key is scrubbed from every message.
	Logger Logger

	// Transport is the OPTIONAL transport. If nil, we create a
	// new HTTP transport using NewHTTPTransport.
	Transport Transport
}

// Service is the client handle. It is immutable once created.
type Service struct {
	client           *httpx.APIClient
	defaultTransport bool
	logger           model.Logger
}

// NewService creates a new Service. A missing trailing slash is
// added to the base URL, so that method names are resolved relative
// to the last path segment.
func NewService(config Config) *Service {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	logger := scrubbedLogger(config.Logger)
	txp := config.Transport
	defaultTransport := txp == nil
	if defaultTransport {
		txp = transport.NewHTTP(logger)
	}
	return &Service{
		client: &httpx.APIClient{
			APIKey:    config.APIKey,
			BaseURL:   baseURL,
			Logger:    logger,
			Transport: txp,
		},
		defaultTransport: defaultTransport,
		logger:           logger,
	}
}

// scrubbedLogger wraps logger such that it never emits the API key.
func scrubbedLogger(logger Logger) model.Logger {
	if logger == nil {
		return model.DiscardLogger
	}
	return &scrubber.Logger{Logger: logger}
}

// BaseURL returns the base URL, which always ends with a slash.
func (s *Service) BaseURL() string {
	return s.client.BaseURL
}

// APIKey returns the API key or an empty string.
func (s *Service) APIKey() string {
	return s.client.APIKey
}

// IsDefault returns true when the service uses DefaultBaseURL, no
// API key, and the transport created by NewService.
func (s *Service) IsDefault() bool {
	return s.client.BaseURL == DefaultBaseURL && s.client.APIKey == "" && s.defaultTransport
}

// String implements fmt.Stringer. Only the non-default settings
// are included and the API key value is never shown.
func (s *Service) String() string {
	var args []string
	if s.client.BaseURL != DefaultBaseURL {
		args = append(args, " base_url="+s.client.BaseURL)
	}
	if s.client.APIKey != "" {
		args = append(args, " apikey="+scrubber.Redacted)
	}
	if !s.defaultTransport {
		args = append(args, fmt.Sprintf(" transport=%T", s.client.Transport))
	}
	return "<Service" + strings.Join(args, "") + ">"
}

// callMethod calls the given method and makes sure the response is
// a JSON object, which is what every method returns.
func (s *Service) callMethod(ctx context.Context,
	methodName, httpMethod string, params url.Values) (map[string]any, error) {
	s.logger.Debugf("dc311: calling %s", methodName)
	output, err := s.client.CallMethod(ctx, methodName, httpMethod, params)
	if err != nil {
		return nil, err
	}
	return asObject(output, methodName)
}
