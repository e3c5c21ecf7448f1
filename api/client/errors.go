/* errors.go
 * Contains the error type returned by every client call. Errors carry a human readable message intended for direct
 * display, the Kind only tells callers where the failure happened
 */

package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies where a request failed
type Kind string

const (
	KindTransport Kind = "transport" // the request never got a response (network, cancelled context, rate limiter)
	KindServer    Kind = "server"    // the server answered with a non 2xx status
	KindDecode    Kind = "decode"    // the response body could not be decoded
)

// Error is the normalized error returned by the client
type Error struct {
	Kind    Kind
	Status  int    // http status, zero for transport errors
	Message string // display message
	Err     error  // underlying error, if any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errorPayload covers both error shapes the api uses: {"message": "..."} and {"error": "..."}
type errorPayload struct {
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// serverError builds an Error from a non 2xx response. `message` wins over `error` when both are present, and the
// status text is used when the body carries neither
func serverError(status int, body []byte) *Error {
	msg := extractMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("request failed: %d %s", status, http.StatusText(status))
	}
	return &Error{Kind: KindServer, Status: status, Message: msg}
}

func extractMessage(body []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, raw := range []json.RawMessage{payload.Message, payload.Error} {
		if msg := rawString(raw); msg != "" {
			return msg
		}
	}
	return ""
}

// rawString returns the value of a json string, or the message field of a nested object ({"error": {"message": ""}})
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: fmt.Sprintf("network error: %v", err), Err: err}
}

func decodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: fmt.Sprintf("invalid response from server: %v", err), Err: err}
}
