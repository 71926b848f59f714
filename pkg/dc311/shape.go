package dc311

import (
	"fmt"

	"github.com/civic311/dc311/internal/coerce"
)

// asObject returns value as a JSON object.
func asObject(value any, path string) (map[string]any, error) {
	obj, good := value.(map[string]any)
	if !good {
		return nil, fmt.Errorf("%w: %s: expected an object, got %T", ErrShapeAssertion, path, value)
	}
	return obj, nil
}

// asArray returns value as a JSON array.
func asArray(value any, path string) ([]any, error) {
	list, good := value.([]any)
	if !good {
		return nil, fmt.Errorf("%w: %s: expected a list, got %T", ErrShapeAssertion, path, value)
	}
	return list, nil
}

// mustGet returns the value of a field that must exist.
func mustGet(obj map[string]any, key, path string) (any, error) {
	value, found := obj[key]
	if !found {
		return nil, fmt.Errorf("%w: %s: missing %q", ErrShapeAssertion, path, key)
	}
	return value, nil
}

// mustGetString returns the value of a field that must exist and
// must not be null, rendered as a string.
func mustGetString(obj map[string]any, key, path string) (string, error) {
	value, err := mustGet(obj, key, path)
	if err != nil {
		return "", err
	}
	str := coerce.AsString(value)
	if str.IsNone() {
		return "", fmt.Errorf("%w: %s: %q is null", ErrShapeAssertion, path, key)
	}
	return str.Unwrap(), nil
}

// mergeField merges the list of single-key records at obj[key].
func mergeField(obj map[string]any, key, path string) (map[string]any, error) {
	value, err := mustGet(obj, key, path)
	if err != nil {
		return nil, err
	}
	merged, err := coerce.MergeRecords(value)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", path, key, err)
	}
	return merged, nil
}
