package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/civic311/dc311/internal/mocks"
	"github.com/civic311/dc311/internal/model"
	"github.com/civic311/dc311/internal/version"
)

func TestHTTP(t *testing.T) {
	t.Run("NewHTTP sets the defaults", func(t *testing.T) {
		txp := NewHTTP(nil)
		if txp.Logger != model.DiscardLogger {
			t.Fatal("unexpected logger")
		}
		if txp.UserAgent != version.UserAgent {
			t.Fatal("unexpected user agent")
		}
		client := txp.Client.(*http.Client)
		if client.Timeout != DefaultTimeout {
			t.Fatal("unexpected timeout")
		}
	})

	t.Run("GET round trip", func(t *testing.T) {
		var gotAccept, gotUA, gotMethod string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAccept = r.Header.Get("Accept")
			gotUA = r.Header.Get("User-Agent")
			gotMethod = r.Method
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Custom", "value")
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()
		txp := NewHTTP(model.DiscardLogger)
		headers, body, err := txp.Request(context.Background(), srv.URL+"/meta.json",
			"GET", map[string]string{"Accept": "application/json"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if headers.Status() != "200" {
			t.Fatal("unexpected status", headers.Status())
		}
		if headers["x-custom"] != "value" {
			t.Fatal("headers keys should be lowercase")
		}
		if string(body) != `{"ok":true}` {
			t.Fatal("unexpected body", string(body))
		}
		if gotAccept != "application/json" || gotMethod != "GET" {
			t.Fatal("unexpected request", gotAccept, gotMethod)
		}
		if gotUA != version.UserAgent {
			t.Fatal("unexpected user agent", gotUA)
		}
	})

	t.Run("POST sends the body and non-200 is not an error", func(t *testing.T) {
		var gotBody, gotContentType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			gotBody = string(data)
			gotContentType = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("bad"))
		}))
		defer srv.Close()
		txp := NewHTTP(model.DiscardLogger)
		headers, body, err := txp.Request(context.Background(), srv.URL, "POST",
			map[string]string{"Content-Type": model.HTTPHeaderContentTypeForm}, []byte("a=b"))
		if err != nil {
			t.Fatal(err)
		}
		if headers.Status() != "400" || string(body) != "bad" {
			t.Fatal("unexpected response", headers.Status(), string(body))
		}
		if gotBody != "a=b" || gotContentType != model.HTTPHeaderContentTypeForm {
			t.Fatal("unexpected request", gotBody, gotContentType)
		}
	})

	t.Run("body too large", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(strings.Repeat("x", 64)))
		}))
		defer srv.Close()
		txp := NewHTTP(model.DiscardLogger)
		txp.MaxBodySize = 16
		_, _, err := txp.Request(context.Background(), srv.URL, "GET", nil, nil)
		if !errors.Is(err, ErrBodyTooLarge) {
			t.Fatal("not the error we expected", err)
		}
	})

	t.Run("invalid method", func(t *testing.T) {
		txp := NewHTTP(model.DiscardLogger)
		_, _, err := txp.Request(context.Background(), "http://x.org", "\t", nil, nil)
		if err == nil || !strings.HasPrefix(err.Error(), "net/http: invalid method") {
			t.Fatal("not the error we expected", err)
		}
	})

	t.Run("client failure", func(t *testing.T) {
		expected := errors.New("mocked error")
		txp := &HTTP{
			Client: &mocks.HTTPClient{
				MockDo: func(req *http.Request) (*http.Response, error) {
					return nil, expected
				},
			},
			Logger: model.DiscardLogger,
		}
		_, _, err := txp.Request(context.Background(), "http://x.org", "GET", nil, nil)
		if !errors.Is(err, expected) {
			t.Fatal("not the error we expected", err)
		}
	})
}
