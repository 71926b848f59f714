// Package coerce converts the loosely typed JSON values returned by
// the Open311 API into Go values.
//
// The API encodes nulls, booleans, integers, and lists as plain strings
// using ad hoc conventions. This package is the only place where we know
// about those conventions: the domain mappers call one function per
// scalar kind and never check for sentinel strings themselves.
//
// All functions accept already typed input (e.g., a JSON bool or number)
// and handle it as a no-op conversion where that makes sense.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/civic311/dc311/internal/optional"
)

const (
	// SentinelNull is the string the API uses in place of null.
	SentinelNull = "NULL"

	// SentinelNoValue is the string the API uses for unset text fields.
	SentinelNoValue = "NO VALUE ASSIGNED"

	// DateLayout is the layout of the API timestamps, which carry no zone.
	DateLayout = "2006-01-02 15:04:05"
)

var (
	// ErrInvalidBoolean indicates a string outside the boolean vocabulary.
	ErrInvalidBoolean = errors.New("coerce: invalid boolean")

	// ErrInvalidInteger indicates a value we cannot parse as an integer.
	ErrInvalidInteger = errors.New("coerce: invalid integer")

	// ErrInvalidDate indicates a timestamp not matching DateLayout.
	ErrInvalidDate = errors.New("coerce: invalid date")

	// ErrUnexpectedShape indicates the JSON does not have the structure
	// we expect, which usually means the API changed incompatibly.
	ErrUnexpectedShape = errors.New("coerce: unexpected shape")
)

// AsBoolean converts value to bool. Strings are trimmed and compared
// case-insensitively against 1/y/yes/t/true/on and 0/n/no/f/false/off/null.
// Any other string yields ErrInvalidBoolean. Other values are converted
// according to their truthiness.
func AsBoolean(value any) (bool, error) {
	s, ok := value.(string)
	if !ok {
		return truthy(value), nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "y", "yes", "t", "true", "on":
		return true, nil
	case "0", "n", "no", "f", "false", "off", "null":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBoolean, s)
	}
}

// truthy implements truthiness for non-string JSON values.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// AsInt converts value to an integer. A nil value, the empty string, and
// SentinelNull are None. Strings are parsed as base-10 integers; integral
// JSON numbers are accepted as is. Everything else yields ErrInvalidInteger.
func AsInt(value any) (optional.Value[int64], error) {
	switch v := value.(type) {
	case nil:
		return optional.None[int64](), nil
	case string:
		if v == "" || v == SentinelNull {
			return optional.None[int64](), nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return optional.None[int64](), fmt.Errorf("%w: %q", ErrInvalidInteger, v)
		}
		return optional.Some(n), nil
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit
		if math.Trunc(v) != v || v >= math.MaxInt64 || v < math.MinInt64 {
			return optional.None[int64](), fmt.Errorf("%w: %v", ErrInvalidInteger, v)
		}
		return optional.Some(int64(v)), nil
	case int:
		return optional.Some(int64(v)), nil
	case int64:
		return optional.Some(v), nil
	default:
		return optional.None[int64](), fmt.Errorf("%w: %v (%T)", ErrInvalidInteger, value, value)
	}
}

// AsList converts a comma separated string to a list. The string is
// trimmed first and an empty string is None. Elements are NOT trimmed.
func AsList(value any) optional.Value[[]string] {
	switch v := value.(type) {
	case []string:
		if len(v) <= 0 {
			return optional.None[[]string]()
		}
		return optional.Some(v)
	case []any:
		if len(v) <= 0 {
			return optional.None[[]string]()
		}
		out := make([]string, 0, len(v))
		for _, entry := range v {
			out = append(out, AsString(entry).UnwrapOr(""))
		}
		return optional.Some(out)
	}
	s := AsString(value)
	if s.IsNone() {
		return optional.None[[]string]()
	}
	trimmed := strings.TrimSpace(s.Unwrap())
	if trimmed == "" {
		return optional.None[[]string]()
	}
	return optional.Some(strings.Split(trimmed, ","))
}

// CleanString maps nil, SentinelNull, and SentinelNoValue to None and
// otherwise returns the trimmed string with CRLF line endings turned to LF.
func CleanString(value any) optional.Value[string] {
	s := AsString(value)
	if s.IsNone() {
		return s
	}
	switch v := s.Unwrap(); v {
	case SentinelNoValue, SentinelNull:
		return optional.None[string]()
	default:
		return optional.Some(strings.ReplaceAll(strings.TrimSpace(v), "\r\n", "\n"))
	}
}

// AsDate parses a DateLayout timestamp in local time. A nil value, the
// empty string, and SentinelNull are None.
func AsDate(value any) (optional.Value[time.Time], error) {
	s := AsString(value)
	if s.IsNone() || s.Unwrap() == "" || s.Unwrap() == SentinelNull {
		return optional.None[time.Time](), nil
	}
	t, err := time.ParseInLocation(DateLayout, s.Unwrap(), time.Local)
	if err != nil {
		return optional.None[time.Time](), fmt.Errorf("%w: %q", ErrInvalidDate, s.Unwrap())
	}
	return optional.Some(t), nil
}

// AsString renders a JSON scalar as a string without any cleaning. We
// use it for identifiers, which the API sends either as strings or as
// numbers. A nil value is None.
func AsString(value any) optional.Value[string] {
	switch v := value.(type) {
	case nil:
		return optional.None[string]()
	case string:
		return optional.Some(v)
	case float64:
		return optional.Some(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		return optional.Some(strconv.FormatBool(v))
	default:
		return optional.Some(fmt.Sprint(v))
	}
}

// MergeRecords flattens a list of (usually single-key) objects into a
// single object. The API uses such lists to encode the fields of an
// object in order. Later keys overwrite earlier ones.
func MergeRecords(value any) (map[string]any, error) {
	switch v := value.(type) {
	case []map[string]any:
		out := make(map[string]any)
		for _, record := range v {
			for key, entry := range record {
				out[key] = entry
			}
		}
		return out, nil
	case []any:
		out := make(map[string]any)
		for idx, entry := range v {
			record, good := entry.(map[string]any)
			if !good {
				return nil, fmt.Errorf("%w: record #%d is %T, not an object", ErrUnexpectedShape, idx, entry)
			}
			for key, field := range record {
				out[key] = field
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list of records, got %T", ErrUnexpectedShape, value)
	}
}
