package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/bancore/backend/pkg/errors"
	"github.com/google/uuid"
)

const dateOnlyLayout = "2006-01-02"

// queryDateLayouts are accepted formats for date filters; date-only values
// resolve to midnight UTC.
var queryDateLayouts = []string{time.RFC3339, dateOnlyLayout}

// ParseQueryDate returns nil when the parameter is absent.
func ParseQueryDate(r *http.Request, key string) (*time.Time, error) {
	value, _, err := parseQueryDate(r, key)
	return value, err
}

// ParseQueryEndDate parses an upper range bound. A date-only value is widened
// to the last instant of that day so the whole end day stays inside an
// inclusive window; timestamped values pass through unchanged.
func ParseQueryEndDate(r *http.Request, key string) (*time.Time, error) {
	value, layout, err := parseQueryDate(r, key)
	if err != nil || value == nil {
		return value, err
	}
	if layout == dateOnlyLayout {
		endOfDay := value.AddDate(0, 0, 1).Add(-time.Nanosecond)
		return &endOfDay, nil
	}
	return value, nil
}

func parseQueryDate(r *http.Request, key string) (*time.Time, string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, "", nil
	}
	for _, layout := range queryDateLayouts {
		if value, err := time.Parse(layout, raw); err == nil {
			utc := value.UTC()
			return &utc, layout, nil
		}
	}
	return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a date").
		WithDetails(map[string]any{"field": key, "formats": queryDateLayouts})
}

// ParseQueryUUID returns nil when the parameter is absent.
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").
			WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// ParseQueryBool returns defaultVal when the parameter is absent.
func ParseQueryBool(r *http.Request, key string, defaultVal bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a boolean").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParsePathUUID validates a uuid taken from the URL path.
func ParsePathUUID(raw, field string) (uuid.UUID, error) {
	value, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").
			WithDetails(map[string]any{"field": field})
	}
	return value, nil
}
