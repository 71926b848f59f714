package dc311

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/civic311/dc311/internal/coerce"
)

// GetTypes returns all the service request types indexed by code.
//
// Each entry of the response must be {"servicetype": [{"servicetype":
// NAME}, {"servicecode": CODE}]}. Anything else means the API changed
// and we return an error matching ErrShapeAssertion.
func (s *Service) GetTypes(ctx context.Context) (map[string]*ServiceType, error) {
	response, err := s.callMethod(ctx, "meta_getTypesList", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	value, err := mustGet(response, "servicetypeslist", "meta_getTypesList")
	if err != nil {
		return nil, err
	}
	list, err := asArray(value, "servicetypeslist")
	if err != nil {
		return nil, err
	}
	result := make(map[string]*ServiceType, len(list))
	for idx, entry := range list {
		st, err := s.newServiceType(entry, fmt.Sprintf("servicetypeslist[%d]", idx))
		if err != nil {
			return nil, err
		}
		result[st.Code] = st
	}
	return result, nil
}

func (s *Service) newServiceType(entry any, path string) (*ServiceType, error) {
	wrapper, err := asObject(entry, path)
	if err != nil {
		return nil, err
	}
	if len(wrapper) != 1 {
		return nil, fmt.Errorf("%w: %s: expected one key, got %d", ErrShapeAssertion, path, len(wrapper))
	}
	value, err := mustGet(wrapper, "servicetype", path)
	if err != nil {
		return nil, err
	}
	path += ".servicetype"
	pair, err := asArray(value, path)
	if err != nil {
		return nil, err
	}
	if len(pair) != 2 {
		return nil, fmt.Errorf("%w: %s: expected two elements, got %d", ErrShapeAssertion, path, len(pair))
	}
	first, err := asObject(pair[0], path+"[0]")
	if err != nil {
		return nil, err
	}
	name, err := mustGetString(first, "servicetype", path+"[0]")
	if err != nil {
		return nil, err
	}
	second, err := asObject(pair[1], path+"[1]")
	if err != nil {
		return nil, err
	}
	code, err := mustGetString(second, "servicecode", path+"[1]")
	if err != nil {
		return nil, err
	}
	return &ServiceType{Type: name, Code: code, service: s}, nil
}

// GetTypeDefinition returns the Definition of the given type code.
func (s *Service) GetTypeDefinition(ctx context.Context, code string) (*Definition, error) {
	params := url.Values{}
	params.Set("servicecode", code)
	response, err := s.callMethod(ctx, "meta_getTypeDefinition", http.MethodGet, params)
	if err != nil {
		return nil, err
	}
	value, err := mustGet(response, "servicetypedefinition", "meta_getTypeDefinition")
	if err != nil {
		return nil, err
	}
	list, err := asArray(value, "servicetypedefinition")
	if err != nil {
		return nil, err
	}
	definition := &Definition{Code: code, Questions: []*ServiceTypeQuestion{}}
	for idx, entry := range list {
		path := fmt.Sprintf("servicetypedefinition[%d]", idx)
		wrapper, err := asObject(entry, path)
		if err != nil {
			return nil, err
		}
		item, err := mergeField(wrapper, "servicetype", path)
		if err != nil {
			return nil, err
		}
		path += ".servicetype"
		definition.Type = coerce.AsString(item["servicetype"]).UnwrapOr(definition.Type)
		name, err := mustGetString(item, "name", path)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(name) == coerce.SentinelNull {
			continue
		}
		question, err := newQuestion(item, name, path)
		if err != nil {
			return nil, err
		}
		definition.Questions = append(definition.Questions, question)
	}
	return definition, nil
}

func newQuestion(item map[string]any, name, path string) (*ServiceTypeQuestion, error) {
	prompt, err := mustGet(item, "prompt", path)
	if err != nil {
		return nil, err
	}
	rawRequired, err := mustGet(item, "required", path)
	if err != nil {
		return nil, err
	}
	required, err := coerce.AsBoolean(rawRequired)
	if err != nil {
		return nil, fmt.Errorf("%s.required: %w", path, err)
	}
	rawType, err := mustGet(item, "type", path)
	if err != nil {
		return nil, err
	}
	width, err := coerce.AsInt(item["width"])
	if err != nil {
		return nil, fmt.Errorf("%s.width: %w", path, err)
	}
	return &ServiceTypeQuestion{
		Name:     name,
		Prompt:   coerce.AsString(prompt).UnwrapOr(""),
		Required: required,
		Type:     coerce.CleanString(rawType).Ptr(),
		Width:    width.Ptr(),
		ItemList: coerce.AsList(item["itemlist"]).UnwrapOr(nil),
	}, nil
}

// Definition returns the Definition of this type. The first successful
// call fetches it and later calls return the same value without any I/O.
// Errors are not cached.
func (st *ServiceType) Definition(ctx context.Context) (*Definition, error) {
	if st.definition != nil {
		return st.definition, nil
	}
	definition, err := st.service.GetTypeDefinition(ctx, st.Code)
	if err != nil {
		return nil, err
	}
	st.definition = definition
	return definition, nil
}
