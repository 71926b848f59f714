package dc311

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/civic311/dc311/internal/mocks"
	"github.com/civic311/dc311/internal/model"
	"github.com/civic311/dc311/internal/runtimex"
)

// fakeResponse is the response of the fake API for a given method.
type fakeResponse struct {
	Status string
	Body   string
}

// roundTrip is a request received by the fake API.
type roundTrip struct {
	Method     string
	MethodName string
	URL        *url.URL
	Headers    map[string]string
	Body       string
}

// fakeAPI is a Transport answering with canned responses keyed
// by method name (e.g., "get" for ".../get.json").
type fakeAPI struct {
	responses map[string]fakeResponse
	trips     []roundTrip
	mu        sync.Mutex
}

func (fa *fakeAPI) transport() Transport {
	return &mocks.Transport{
		MockRequest: func(ctx context.Context, URL, method string,
			headers map[string]string, body []byte) (model.ResponseHeaders, []byte, error) {
			parsed := runtimex.Try1(url.Parse(URL))
			name := strings.TrimSuffix(path.Base(parsed.Path), ".json")
			fa.mu.Lock()
			fa.trips = append(fa.trips, roundTrip{
				Method:     method,
				MethodName: name,
				URL:        parsed,
				Headers:    headers,
				Body:       string(body),
			})
			fa.mu.Unlock()
			resp, found := fa.responses[name]
			if !found {
				return model.ResponseHeaders{"status": "404"}, []byte("no such method: " + name), nil
			}
			return model.ResponseHeaders{"status": resp.Status}, []byte(resp.Body), nil
		},
	}
}

func (fa *fakeAPI) roundTrips() []roundTrip {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return append([]roundTrip{}, fa.trips...)
}

// newFakeService returns a service using a fakeAPI with the given responses.
func newFakeService(t *testing.T, responses map[string]fakeResponse) (*Service, *fakeAPI) {
	api := &fakeAPI{responses: responses}
	svc := NewService(Config{Transport: api.transport()})
	return svc, api
}

const typesListBody = `{"servicetypeslist": [
	{"servicetype": [{"servicetype": "Pothole"}, {"servicecode": "S0301"}]},
	{"servicetype": [{"servicetype": "Graffiti Removal"}, {"servicecode": "S0046"}]}
]}`

const typeDefinitionBody = `{"servicetypedefinition": [
	{"servicetype": [
		{"servicetype": "Pothole"},
		{"name": "SR_ADDRESS"},
		{"prompt": "Street address"},
		{"required": "Y"},
		{"type": " TEXT "},
		{"width": "40"},
		{"itemlist": ""}
	]},
	{"servicetype": [
		{"servicetype": "Pothole"},
		{"name": " NULL "},
		{"prompt": "NULL"},
		{"required": "N"},
		{"type": "NULL"}
	]},
	{"servicetype": [
		{"servicetype": "Pothole"},
		{"name": "SIZE"},
		{"prompt": "How big is it?"},
		{"required": "false"},
		{"type": "SINGLE SELECT"},
		{"width": "NULL"},
		{"itemlist": "small,medium, large"}
	]}
]}`

const serviceRequestBody = `{"servicerequest": [
	{"aid": "12345"},
	{"servicecode": "S0301"},
	{"servicecodedescription": "Pothole"},
	{"servicetypeocode": "STREETS"},
	{"servicetypecodedescription": "Street Repair"},
	{"servicepriority": "NO VALUE ASSIGNED"},
	{"serviceorderstatus": "OPEN"},
	{"agencyabbreviation": "DDOT"},
	{"servicenotes": " first line\r\nsecond line "},
	{"resolutiondate": "NULL"},
	{"serviceorderdate": "2010-04-09 11:32:47"},
	{"serviceduedate": ""},
	{"servicerequestid": "10-00123456"},
	{"resolution": "NULL"}
]}`
