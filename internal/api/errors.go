package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"
)

// ErrJobAlreadyExists indicates a job with the requested id already exists.
var ErrJobAlreadyExists = errors.New("job already exists")

// ResponseError is a non-2xx response from Kibana.
type ResponseError struct {
	Method string
	Path   string
	Status int
	Body   []byte

	// Properties extracted from Body
	Properties ErrorProperties
}

// ErrorProperties is what ExtractErrorProperties finds in an error body.
type ErrorProperties struct {
	Message    string
	StatusCode int
	Type       string // Elasticsearch exception type, e.g. resource_already_exists_exception
}

func newResponseError(method, path string, status int, body []byte) *ResponseError {
	props := ExtractErrorProperties(body)
	if props.StatusCode == 0 {
		props.StatusCode = status
	}
	return &ResponseError{
		Method:     method,
		Path:       path,
		Status:     status,
		Body:       body,
		Properties: props,
	}
}

func (e *ResponseError) Error() string {
	msg := e.Properties.Message
	if msg == "" {
		msg = nethttp.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s failed: status %d: %s", e.Method, e.Path, e.Status, msg)
}

// StatusCode returns the HTTP status of the response.
func (e *ResponseError) StatusCode() int { return e.Status }

// Is lets errors.Is(err, ErrJobAlreadyExists) match a conflict on create.
func (e *ResponseError) Is(target error) bool {
	if target != ErrJobAlreadyExists {
		return false
	}
	return e.Status == nethttp.StatusConflict ||
		e.Properties.Type == "resource_already_exists_exception"
}

// ExtractErrorMessage returns the text a user should see for err. Response
// errors yield the message found in the body; anything else yields
// err.Error().
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *ResponseError
	if errors.As(err, &re) {
		if re.Properties.Message != "" {
			return re.Properties.Message
		}
		return fmt.Sprintf("%d %s", re.Status, nethttp.StatusText(re.Status))
	}
	return err.Error()
}

// ExtractErrorProperties pulls the message out of a raw error value. It
// understands Kibana error bodies ({"statusCode", "error", "message"}),
// Elasticsearch error bodies ({"error": {"reason", "root_cause"}, "status"}),
// client errors that wrap one of those under "meta.body" or "body", and
// plain JSON strings. Unrecognised input is returned compacted as the message.
func ExtractErrorProperties(raw []byte) ErrorProperties {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ErrorProperties{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ErrorProperties{Message: s}
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ErrorProperties{Message: string(raw)}
	}

	if props, ok := propertiesFromObject(obj); ok {
		return props
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return ErrorProperties{Message: string(raw)}
	}
	return ErrorProperties{Message: compact.String()}
}

func propertiesFromObject(obj map[string]any) (ErrorProperties, bool) {
	// Wrapped client errors
	if meta, ok := obj["meta"].(map[string]any); ok {
		if body, ok := meta["body"].(map[string]any); ok {
			if props, ok := propertiesFromObject(body); ok {
				if props.StatusCode == 0 {
					props.StatusCode = intValue(meta["statusCode"])
				}
				return props, true
			}
		}
	}
	if body, ok := obj["body"].(map[string]any); ok {
		if props, ok := propertiesFromObject(body); ok {
			return props, true
		}
	}

	var props ErrorProperties
	props.StatusCode = intValue(obj["statusCode"])
	if props.StatusCode == 0 {
		props.StatusCode = intValue(obj["status"])
	}

	// Kibana bodies carry a human message next to a short "error" label.
	if msg, ok := obj["message"].(string); ok && msg != "" {
		props.Message = msg
		if attrs, ok := obj["attributes"].(map[string]any); ok {
			if inner, ok := attrs["body"].(map[string]any); ok {
				if innerProps, ok := propertiesFromObject(inner); ok {
					props.Type = innerProps.Type
				}
			}
		}
		return props, true
	}

	// Elasticsearch bodies
	if esErr, ok := obj["error"].(map[string]any); ok {
		props.Type, _ = esErr["type"].(string)
		if reason, ok := esErr["reason"].(string); ok && reason != "" {
			props.Message = reason
			return props, true
		}
		if causes, ok := esErr["root_cause"].([]any); ok && len(causes) > 0 {
			if cause, ok := causes[0].(map[string]any); ok {
				if reason, ok := cause["reason"].(string); ok && reason != "" {
					props.Message = reason
					if props.Type == "" {
						props.Type, _ = cause["type"].(string)
					}
					return props, true
				}
			}
		}
		if props.Type != "" {
			props.Message = props.Type
			return props, true
		}
	}
	if msg, ok := obj["error"].(string); ok && msg != "" {
		props.Message = msg
		return props, true
	}
	if reason, ok := obj["reason"].(string); ok && reason != "" {
		props.Type, _ = obj["type"].(string)
		props.Message = reason
		return props, true
	}

	return ErrorProperties{}, false
}

func intValue(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}

// IsNotFound reports whether err is a 404 from Kibana.
func IsNotFound(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Status == nethttp.StatusNotFound
}

// IsJobExistsError checks if an error indicates a duplicate job id.
//
// This function detects duplicate errors from multiple sources:
//  1. Wrapped ErrJobAlreadyExists or a 409 Conflict response
//  2. Error messages from per-job creation errors
func IsJobExistsError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrJobAlreadyExists) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{"resource_already_exists_exception", "already exists"} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}
