package apiutil

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/codr1/quadras/internal/booking"
)

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, FieldError{Field: field, Reason: "must be greater than 0"}
	}
	return value, nil
}

// PathID parses the named path value as a positive id.
func PathID(r *http.Request, name string) (int64, error) {
	return ParsePositiveInt64Field(r.PathValue(name), name)
}

// OptionalInt64Query returns 0 when the parameter is absent.
func OptionalInt64Query(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	return ParsePositiveInt64Field(raw, key)
}

// OptionalDateQuery returns "" when the parameter is absent and rejects
// anything that is not a YYYY-MM-DD calendar date.
func OptionalDateQuery(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", nil
	}
	date, err := booking.ParseDate(raw)
	if err != nil {
		return "", FieldError{Field: key, Reason: "must be a YYYY-MM-DD date"}
	}
	return date.String(), nil
}
