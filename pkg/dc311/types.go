package dc311

import (
	"fmt"
	"strings"
	"time"

	"github.com/civic311/dc311/internal/coerce"
)

// ServiceType is a category of service request (e.g., a pothole).
// Call Definition to get the questions for this type.
type ServiceType struct {
	// Type is the display name.
	Type string `json:"type"`

	// Code identifies the type in subsequent calls.
	Code string `json:"code"`

	// service is the service that created this type.
	service *Service

	// definition caches the result of Definition.
	definition *Definition
}

// String implements fmt.Stringer.
func (st *ServiceType) String() string {
	var suffix string
	if st.service != nil && !st.service.IsDefault() {
		suffix = fmt.Sprintf(" (for %s)", st.service)
	}
	return fmt.Sprintf("<ServiceType %s:%s%s>", st.Type, st.Code, suffix)
}

// ServiceTypeQuestion is a question that may need to be answered
// to submit a service request of a given type.
type ServiceTypeQuestion struct {
	// Name is the name of the submit parameter.
	Name string `json:"name"`

	// Prompt is the human readable label.
	Prompt string `json:"prompt"`

	// Required indicates whether an answer is required.
	Required bool `json:"required"`

	// Type is the kind of answer (e.g., text or single select) or nil.
	Type *string `json:"type"`

	// Width is the display width or nil.
	Width *int64 `json:"width"`

	// ItemList contains the allowed values for select questions or is nil.
	ItemList []string `json:"itemlist"`
}

// String implements fmt.Stringer.
func (q *ServiceTypeQuestion) String() string {
	args := []string{
		"name=" + q.Name,
		fmt.Sprintf("prompt=%q", q.Prompt),
	}
	if q.Required {
		args = append(args, "required")
	}
	args = append(args, "type="+stringOrNil(q.Type))
	if q.Width != nil && *q.Width != 0 {
		args = append(args, fmt.Sprintf("width=%d", *q.Width))
	}
	if len(q.ItemList) > 0 {
		args = append(args, "itemlist="+strings.Join(q.ItemList, ","))
	}
	return "<ServiceTypeQuestion " + strings.Join(args, " ") + ">"
}

// Definition contains the questions of a ServiceType.
type Definition struct {
	// Type is the display name of the type.
	Type string `json:"type"`

	// Code is the code of the type.
	Code string `json:"code"`

	// Questions contains the questions in the order used by the API.
	Questions []*ServiceTypeQuestion `json:"questions"`
}

// String implements fmt.Stringer.
func (d *Definition) String() string {
	questions := make([]string, 0, len(d.Questions))
	for _, q := range d.Questions {
		questions = append(questions, q.String())
	}
	return fmt.Sprintf("<Definition %s:%s q=[%s]>", d.Type, d.Code, strings.Join(questions, ", "))
}

// ServiceRequest is a read-only view of a service request as it was
// when we fetched it. Nil fields are absent.
type ServiceRequest struct {
	Code                string     `json:"code"`
	CodeDescription     *string    `json:"codedescription"`
	TypeCode            string     `json:"typecode"`
	TypeCodeDescription *string    `json:"typecodedescription"`
	Priority            *string    `json:"priority"`
	OrderStatus         *string    `json:"orderstatus"`
	AgencyAbbreviation  *string    `json:"agencyabbreviation"`
	Notes               *string    `json:"notes"`
	ResolutionDate      *time.Time `json:"resolutiondate"`
	OrderDate           *time.Time `json:"orderdate"`
	DueDate             *time.Time `json:"duedate"`
	AID                 string     `json:"aid"`
	RequestID           string     `json:"request_id"`
	Resolution          *string    `json:"resolution"`
}

// String implements fmt.Stringer.
func (sr *ServiceRequest) String() string {
	args := []string{
		fmt.Sprintf("code=%q", sr.Code),
		"codedescription=" + quoteOrNil(sr.CodeDescription),
		fmt.Sprintf("typecode=%q", sr.TypeCode),
		"typecodedescription=" + quoteOrNil(sr.TypeCodeDescription),
		"priority=" + quoteOrNil(sr.Priority),
		"orderstatus=" + quoteOrNil(sr.OrderStatus),
		"agencyabbreviation=" + quoteOrNil(sr.AgencyAbbreviation),
		"notes=" + quoteOrNil(sr.Notes),
		"resolutiondate=" + dateOrNil(sr.ResolutionDate),
		"orderdate=" + dateOrNil(sr.OrderDate),
		"duedate=" + dateOrNil(sr.DueDate),
		fmt.Sprintf("aid=%q", sr.AID),
		"resolution=" + quoteOrNil(sr.Resolution),
	}
	return fmt.Sprintf("<ServiceRequest %s %s>", sr.RequestID, strings.Join(args, " "))
}

func stringOrNil(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func quoteOrNil(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q", *s)
}

func dateOrNil(t *time.Time) string {
	if t == nil {
		return "<nil>"
	}
	return t.Format(coerce.DateLayout)
}
