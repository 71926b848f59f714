package mocks

import (
	"context"

	"github.com/civic311/dc311/internal/model"
)

// Transport allows mocking model.Transport.
type Transport struct {
	MockRequest func(ctx context.Context, URL, method string,
		headers map[string]string, body []byte) (model.ResponseHeaders, []byte, error)
}

var _ model.Transport = &Transport{}

// Request calls MockRequest.
func (txp *Transport) Request(ctx context.Context, URL, method string,
	headers map[string]string, body []byte) (model.ResponseHeaders, []byte, error) {
	return txp.MockRequest(ctx, URL, method, headers, body)
}
