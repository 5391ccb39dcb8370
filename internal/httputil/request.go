package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// maxBodyBytes bounds request bodies; a whole-document import is the largest
const maxBodyBytes = 8 << 20

// ParseJSON decodes the request body into dest, rejecting unknown fields
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// QueryInt reads an integer query parameter, returning def when absent
func QueryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer", key)
	}
	return n, nil
}
