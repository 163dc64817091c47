package whatsapp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies why a send failed.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindInvalid means the request was rejected before any network call.
	KindInvalid
	KindEncode
	// KindTransport covers dial errors, timeouts and cancelled contexts.
	KindTransport
	// KindAPI means the Graph API answered with status >= 400.
	KindAPI
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindEncode:
		return "encode"
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// SendError is returned by every Client send method.
type SendError struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	// APICode and Body are only set for KindAPI.
	APICode int
	Body    string
	Err     error
}

func (e *SendError) Error() string {
	if e.Kind == KindAPI {
		return fmt.Sprintf("whatsapp %s: API error %d (code %d): %s", e.Op, e.StatusCode, e.APICode, e.Body)
	}
	return fmt.Sprintf("whatsapp %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Kind
	}
	return KindUnknown
}

type graphError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func newAPIError(op string, status int, body []byte) *SendError {
	sendErr := &SendError{
		Op:         op,
		Kind:       KindAPI,
		StatusCode: status,
		Body:       string(body),
	}
	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Message != "" {
		sendErr.APICode = ge.Error.Code
		sendErr.Err = errors.New(ge.Error.Message)
	} else {
		sendErr.Err = fmt.Errorf("status %d", status)
	}
	return sendErr
}
