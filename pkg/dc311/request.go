package dc311

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/civic311/dc311/internal/coerce"
)

// Get returns the service request with the given ID.
func (s *Service) Get(ctx context.Context, requestID string) (*ServiceRequest, error) {
	params := url.Values{}
	params.Set("servicerequestid", requestID)
	response, err := s.callMethod(ctx, "get", http.MethodGet, params)
	if err != nil {
		return nil, err
	}
	record, err := mergeField(response, "servicerequest", "get")
	if err != nil {
		return nil, err
	}
	return newServiceRequest(record)
}

// newServiceRequest builds a ServiceRequest from the merged record. The
// API spells the type code key "servicetypeocode" but we also accept
// the "servicetypecode" spelling.
func newServiceRequest(record map[string]any) (*ServiceRequest, error) {
	const path = "servicerequest"
	code, err := mustGetString(record, "servicecode", path)
	if err != nil {
		return nil, err
	}
	requestID, err := mustGetString(record, "servicerequestid", path)
	if err != nil {
		return nil, err
	}
	typeCode, found := record["servicetypeocode"]
	if !found {
		typeCode = record["servicetypecode"]
	}
	sr := &ServiceRequest{
		Code:                code,
		CodeDescription:     coerce.CleanString(record["servicecodedescription"]).Ptr(),
		TypeCode:            coerce.AsString(typeCode).UnwrapOr(""),
		TypeCodeDescription: coerce.CleanString(record["servicetypecodedescription"]).Ptr(),
		Priority:            coerce.CleanString(record["servicepriority"]).Ptr(),
		OrderStatus:         coerce.CleanString(record["serviceorderstatus"]).Ptr(),
		AgencyAbbreviation:  coerce.CleanString(record["agencyabbreviation"]).Ptr(),
		Notes:               coerce.CleanString(record["servicenotes"]).Ptr(),
		AID:                 coerce.AsString(record["aid"]).UnwrapOr(""),
		RequestID:           requestID,
		Resolution:          coerce.CleanString(record["resolution"]).Ptr(),
	}
	dates := []struct {
		key  string
		dest **time.Time
	}{
		{"resolutiondate", &sr.ResolutionDate},
		{"serviceorderdate", &sr.OrderDate},
		{"serviceduedate", &sr.DueDate},
	}
	for _, entry := range dates {
		value, err := coerce.AsDate(record[entry.key])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", path, entry.key, err)
		}
		*entry.dest = value.Ptr()
	}
	return sr, nil
}

// Param is an extra parameter for Submit.
type Param struct {
	Name  string
	Value string
}

// SubmitParamName returns the name under which a Submit parameter is
// sent. Names without lowercase letters (e.g., SR_ADDRESS) have their
// underscores replaced by hyphens (e.g., SR-ADDRESS), which is the
// convention the API uses for those fields.
func SubmitParamName(name string) string {
	if strings.ToUpper(name) == name {
		return strings.ReplaceAll(name, "_", "-")
	}
	return name
}

// Submit submits a new service request and returns a token that you
// can later exchange for the request ID using GetFromToken. The aid
// and description arguments override extra params with the same name.
// Use the questions of the type's Definition to know which extra
// params you need.
func (s *Service) Submit(ctx context.Context, aid, description string, extra []Param) (string, error) {
	params := url.Values{}
	for _, p := range extra {
		params.Set(SubmitParamName(p.Name), p.Value)
	}
	params.Set("aid", aid)
	params.Set("description", description)
	response, err := s.callMethod(ctx, "submit", http.MethodPost, params)
	if err != nil {
		return "", err
	}
	return mustGetString(response, "token", "submit")
}

// GetFromToken returns the ID of the service request created by the
// Submit call that returned token.
func (s *Service) GetFromToken(ctx context.Context, token string) (string, error) {
	params := url.Values{}
	params.Set("token", token)
	response, err := s.callMethod(ctx, "getFromToken", http.MethodGet, params)
	if err != nil {
		return "", err
	}
	return mustGetString(response, "servicerequestid", "getFromToken")
}
