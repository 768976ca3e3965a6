package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// parseLimitOffset reads the limit and offset query parameters, applying
// the default and clamping to max.
func parseLimitOffset(r *http.Request, def, max int) (int, int, error) {
	limit := def
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, 0, fmt.Errorf("invalid limit %q", raw)
		}
		limit = parsed
	}
	if limit > max {
		limit = max
	}
	offset := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("invalid offset %q", raw)
		}
		offset = parsed
	}
	return limit, offset, nil
}
