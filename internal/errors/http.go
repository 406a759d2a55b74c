package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// maxMessageBytes caps how much of a response body ends up on the status line.
const maxMessageBytes = 512

// FromHTTPStatus maps a non-2xx response onto the browser's error taxonomy.
// The response body text becomes the message; an empty body yields "HTTP <code>".
func FromHTTPStatus(status int, body []byte) *AppError {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMessageBytes {
		msg = msg[:maxMessageBytes]
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}

	switch status {
	case http.StatusUnauthorized:
		return AuthExpired(msg)
	case http.StatusNotFound:
		return NotFound(msg)
	default:
		return RequestFailed(status, msg)
	}
}
