package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// genericFailure is used when an error response carries nothing readable.
const genericFailure = "prediction failed"

// ServerError is returned when the endpoint answers with a non-2xx status, or
// with a 2xx body that cannot be decoded.
type ServerError struct {
	Status    int
	Detail    string
	RequestID string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Detail)
}

// NetworkError wraps a transport-level failure: DNS, refused connection,
// timeout or context cancellation. The request may never have reached the
// endpoint.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// rawDetail holds the "detail" field of an error body verbatim.
type rawDetail json.RawMessage

func (d *rawDetail) UnmarshalJSON(b []byte) error {
	*d = append((*d)[:0], b...)
	return nil
}

// String renders the detail for humans: strings unquoted, objects and arrays
// as compact JSON, null or absent as "".
func (d rawDetail) String() string {
	b := bytes.TrimSpace(d)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return string(b)
	}
	return buf.String()
}

// extractDetail picks the human-readable message out of an error body.
// Order: "detail" field, then the raw body text, then a generic message.
func extractDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if s := eb.Detail.String(); s != "" {
			return s
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return truncate([]byte(s), 500)
	}
	return genericFailure
}
