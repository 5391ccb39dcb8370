package httputil

import (
	"encoding/json"
	"net/http"
)

const (
	jsonContentType    = "application/json"
	problemContentType = "application/problem+json"
)

// encodeFailure is sent when a payload cannot be marshaled. It is
// pre-encoded so this path cannot fail again.
var encodeFailure = []byte(`{"type":"` + problemTypes[http.StatusInternalServerError] +
	`","title":"Internal Server Error","status":500,"detail":"failed to encode response"}`)

// RespondJSON writes a JSON response with the given status code
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	respond(w, status, jsonContentType, data)
}

// respond marshals v before any header goes out, so an encoding failure
// still produces a clean 500 problem instead of a truncated body.
func respond(w http.ResponseWriter, status int, contentType string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		status, contentType, payload = http.StatusInternalServerError, problemContentType, encodeFailure
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// ProblemDetail represents an RFC 7807 Problem Details response
type ProblemDetail struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Extra    map[string]interface{} `json:"-"`
}

// MarshalJSON flattens Extra into the top level object
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	for k, v := range p.Extra {
		m[k] = v
	}
	return json.Marshal(m)
}

// RespondError writes an RFC 7807 Problem Details error response
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondErrorWithExtras(w, status, detail, nil)
}

// RespondErrorWithExtras writes an RFC 7807 error with additional fields
func RespondErrorWithExtras(w http.ResponseWriter, status int, detail string, extras map[string]interface{}) {
	respond(w, status, problemContentType, ProblemDetail{
		Type:   errorTypeFromStatus(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Extra:  extras,
	})
}

// problemTypes maps status codes to their RFC 7807 type URI
var problemTypes = map[int]string{
	http.StatusBadRequest:            "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.1",
	http.StatusUnauthorized:          "https://datatracker.ietf.org/doc/html/rfc7235#section-3.1",
	http.StatusForbidden:             "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.3",
	http.StatusNotFound:              "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.4",
	http.StatusConflict:              "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.8",
	http.StatusRequestEntityTooLarge: "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.11",
	http.StatusInternalServerError:   "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.1",
}

func errorTypeFromStatus(status int) string {
	if uri, ok := problemTypes[status]; ok {
		return uri
	}
	return "about:blank"
}
