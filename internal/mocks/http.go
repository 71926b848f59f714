package mocks

import (
	"net/http"

	"github.com/civic311/dc311/internal/model"
)

// HTTPClient allows mocking model.HTTPClient.
type HTTPClient struct {
	MockDo func(req *http.Request) (*http.Response, error)

	MockCloseIdleConnections func()
}

var _ model.HTTPClient = &HTTPClient{}

// Do calls MockDo.
func (clnt *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return clnt.MockDo(req)
}

// CloseIdleConnections calls MockCloseIdleConnections.
func (clnt *HTTPClient) CloseIdleConnections() {
	clnt.MockCloseIdleConnections()
}
