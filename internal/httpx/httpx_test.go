package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/civic311/dc311/internal/mocks"
	"github.com/civic311/dc311/internal/model"
	"github.com/civic311/dc311/internal/testingx"
	"github.com/google/go-cmp/cmp"
)

// capturedRequest is what the mocked transport received.
type capturedRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte
}

// newClientWithResponse returns a client whose transport saves the request
// into the given capture and returns the given status and body.
func newClientWithResponse(
	capture *capturedRequest, status string, body string) (*APIClient, *testingx.Logger) {
	logger := &testingx.Logger{}
	client := &APIClient{
		APIKey:  "KEY",
		BaseURL: "http://api.dc.gov/open311/v1/",
		Logger:  logger,
		Transport: &mocks.Transport{
			MockRequest: func(ctx context.Context, URL, method string,
				headers map[string]string, reqBody []byte) (model.ResponseHeaders, []byte, error) {
				*capture = capturedRequest{
					URL:     URL,
					Method:  method,
					Headers: headers,
					Body:    reqBody,
				}
				respHeaders := model.ResponseHeaders{
					"status":       status,
					"content-type": "application/json",
				}
				return respHeaders, []byte(body), nil
			},
		},
	}
	return client, logger
}

func TestEndpointURL(t *testing.T) {
	t.Run("with trailing slash", func(t *testing.T) {
		client := &APIClient{BaseURL: "http://api.dc.gov/open311/v1/"}
		URL, err := client.EndpointURL("getFromToken")
		if err != nil {
			t.Fatal(err)
		}
		if URL != "http://api.dc.gov/open311/v1/getFromToken.json" {
			t.Fatal("unexpected URL", URL)
		}
	})

	t.Run("without trailing slash the last segment is replaced", func(t *testing.T) {
		client := &APIClient{BaseURL: "http://api.dc.gov/open311/v1"}
		URL, err := client.EndpointURL("meta")
		if err != nil {
			t.Fatal(err)
		}
		if URL != "http://api.dc.gov/open311/meta.json" {
			t.Fatal("unexpected URL", URL)
		}
	})

	t.Run("with invalid base URL", func(t *testing.T) {
		client := &APIClient{BaseURL: "\t\t\t"}
		URL, err := client.EndpointURL("meta")
		if err == nil || !strings.HasSuffix(err.Error(), "invalid control character in URL") {
			t.Fatal("not the error we expected", err)
		}
		if URL != "" {
			t.Fatal("expected empty URL")
		}
	})
}

func TestCallMethod(t *testing.T) {
	t.Run("GET puts sorted params in the query string", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "200", `{"a":1}`)
		params := url.Values{}
		params.Set("servicerequestid", "11-00000001")
		params.Set("b", "x y")
		output, err := client.CallMethod(context.Background(), "get", http.MethodGet, params)
		if err != nil {
			t.Fatal(err)
		}
		expectURL := "http://api.dc.gov/open311/v1/get.json?apikey=KEY&b=x+y&servicerequestid=11-00000001"
		if capture.URL != expectURL {
			t.Fatal("unexpected URL", capture.URL)
		}
		if capture.Method != "GET" {
			t.Fatal("unexpected method", capture.Method)
		}
		if capture.Body != nil {
			t.Fatal("expected nil body")
		}
		if diff := cmp.Diff(map[string]string{"Accept": "application/json"}, capture.Headers); diff != "" {
			t.Fatal(diff)
		}
		if diff := cmp.Diff(map[string]any{"a": float64(1)}, output); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("POST puts params in a form encoded body", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "200", `{"token":"T"}`)
		params := url.Values{}
		params.Set("description", "pothole & more")
		params.Set("aid", "1234")
		params.Set("SR-ADDRESS", "x")
		_, err := client.CallMethod(context.Background(), "submit", http.MethodPost, params)
		if err != nil {
			t.Fatal(err)
		}
		if capture.URL != "http://api.dc.gov/open311/v1/submit.json" {
			t.Fatal("unexpected URL", capture.URL)
		}
		expectBody := "SR-ADDRESS=x&aid=1234&apikey=KEY&description=pothole+%26+more"
		if string(capture.Body) != expectBody {
			t.Fatal("unexpected body", string(capture.Body))
		}
		expectHeaders := map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/x-www-form-urlencoded",
		}
		if diff := cmp.Diff(expectHeaders, capture.Headers); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("caller provided apikey is not overridden", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "200", `{}`)
		params := url.Values{}
		params.Set("apikey", "OTHER")
		_, err := client.CallMethod(context.Background(), "meta", http.MethodGet, params)
		if err != nil {
			t.Fatal(err)
		}
		if capture.URL != "http://api.dc.gov/open311/v1/meta.json?apikey=OTHER" {
			t.Fatal("unexpected URL", capture.URL)
		}
		// make sure we did not modify the caller's params
		if params.Get("apikey") != "OTHER" || len(params) != 1 {
			t.Fatal("params were modified")
		}
	})

	t.Run("params are not mutated when adding the apikey", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "200", `{}`)
		params := url.Values{}
		params.Set("x", "y")
		_, err := client.CallMethod(context.Background(), "meta", http.MethodGet, params)
		if err != nil {
			t.Fatal(err)
		}
		if params.Has("apikey") {
			t.Fatal("the apikey leaked into the caller's params")
		}
	})

	t.Run("no params and no apikey means no query string", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "200", `[]`)
		client.APIKey = ""
		output, err := client.CallMethod(context.Background(), "meta", http.MethodGet, nil)
		if err != nil {
			t.Fatal(err)
		}
		if capture.URL != "http://api.dc.gov/open311/v1/meta.json" {
			t.Fatal("unexpected URL", capture.URL)
		}
		if diff := cmp.Diff([]any{}, output); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("GET with a base URL containing a query string", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "200", `{}`)
		client.APIKey = ""
		params := url.Values{}
		params.Set("a", "b")
		_, err := client.CallMethod(context.Background(), "meta?x=1", http.MethodGet, params)
		if err != nil {
			t.Fatal(err)
		}
		// the method name ends before the format suffix, so the suffix
		// ends up inside the query; we only check the separator here
		if !strings.HasSuffix(capture.URL, "&a=b") {
			t.Fatal("unexpected URL", capture.URL)
		}
	})

	t.Run("non-200 status yields a RequestError", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "500", "  internal failure\n")
		params := url.Values{}
		params.Set("aid", "1")
		output, err := client.CallMethod(context.Background(), "submit", http.MethodPost, params)
		if !errors.Is(err, ErrRequestFailed) {
			t.Fatal("not the error we expected", err)
		}
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatal("expected a RequestError")
		}
		if reqErr.Message != "Error" {
			t.Fatal("unexpected message", reqErr.Message)
		}
		if reqErr.URL != "http://api.dc.gov/open311/v1/submit.json" {
			t.Fatal("unexpected URL", reqErr.URL)
		}
		if string(reqErr.RequestBody) != "aid=1&apikey=KEY" {
			t.Fatal("unexpected request body", string(reqErr.RequestBody))
		}
		if reqErr.Headers.Status() != "500" {
			t.Fatal("unexpected status", reqErr.Headers.Status())
		}
		if !strings.Contains(err.Error(), "internal failure") {
			t.Fatal("the error should contain the body", err.Error())
		}
		if !strings.Contains(err.Error(), reqErr.URL) {
			t.Fatal("the error should contain the URL", err.Error())
		}
		if output != nil {
			t.Fatal("expected nil output")
		}
	})

	t.Run("404 with a JSON body is still an error", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "404", `{"error":"not found"}`)
		_, err := client.CallMethod(context.Background(), "get", http.MethodGet, nil)
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatal("expected a RequestError", err)
		}
		if string(reqErr.Body) != `{"error":"not found"}` {
			t.Fatal("unexpected body", string(reqErr.Body))
		}
	})

	t.Run("malformed status yields a RequestError", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "OK", `{}`)
		_, err := client.CallMethod(context.Background(), "meta", http.MethodGet, nil)
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatal("expected a RequestError", err)
		}
		if reqErr.Message != "Malformed status" {
			t.Fatal("unexpected message", reqErr.Message)
		}
	})

	t.Run("transport errors are returned unchanged", func(t *testing.T) {
		client := &APIClient{
			BaseURL: "http://api.dc.gov/open311/v1/",
			Logger:  model.DiscardLogger,
			Transport: &mocks.Transport{
				MockRequest: func(ctx context.Context, URL, method string,
					headers map[string]string, body []byte) (model.ResponseHeaders, []byte, error) {
					return nil, nil, io.EOF
				},
			},
		}
		_, err := client.CallMethod(context.Background(), "meta", http.MethodGet, nil)
		if !errors.Is(err, io.EOF) {
			t.Fatal("not the error we expected", err)
		}
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "200", `{`)
		_, err := client.CallMethod(context.Background(), "meta", http.MethodGet, nil)
		if err == nil || err.Error() != "unexpected end of JSON input" {
			t.Fatal("not the error we expected", err)
		}
	})

	t.Run("invalid base URL", func(t *testing.T) {
		var capture capturedRequest
		client, _ := newClientWithResponse(&capture, "200", `{}`)
		client.BaseURL = "\t"
		_, err := client.CallMethod(context.Background(), "meta", http.MethodGet, nil)
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("we emit debug messages", func(t *testing.T) {
		var capture capturedRequest
		client, logger := newClientWithResponse(&capture, "200", `{}`)
		_, err := client.CallMethod(context.Background(), "submit", http.MethodPost, url.Values{})
		if err != nil {
			t.Fatal(err)
		}
		expect := []string{
			"httpx: method: POST",
			"httpx: URL: http://api.dc.gov/open311/v1/submit.json",
			"httpx: request body: 10 bytes",
			"httpx: response body: 2 bytes",
		}
		if diff := cmp.Diff(expect, logger.DebugLines()); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestRequestError(t *testing.T) {
	err := &RequestError{
		Message: "Error",
		URL:     "http://example.com/get.json",
		Headers: model.ResponseHeaders{"status": "503"},
		Body:    []byte("\nunavailable\n"),
	}
	expect := "Error in request to http://example.com/get.json: 503\nunavailable"
	if err.Error() != expect {
		t.Fatal("unexpected error string", err.Error())
	}
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatal("should unwrap to ErrRequestFailed")
	}
}

func TestRequestErrorScrubsTheAPIKey(t *testing.T) {
	err := &RequestError{
		Message: "Error",
		URL:     "http://example.com/get.json?apikey=SECRET&servicerequestid=1",
		Headers: model.ResponseHeaders{"status": "404"},
	}
	expect := "Error in request to http://example.com/get.json?apikey=<redacted>&servicerequestid=1: 404\n"
	if err.Error() != expect {
		t.Fatal("unexpected error string", err.Error())
	}
}
