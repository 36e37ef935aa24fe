package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractErrorProperties(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ErrorProperties
	}{
		{"empty", ``, ErrorProperties{}},
		{"json string", `"plain failure"`, ErrorProperties{Message: "plain failure"}},
		{"not json", `<html>bad gateway</html>`, ErrorProperties{Message: "<html>bad gateway</html>"}},
		{
			"kibana body",
			`{"statusCode":400,"error":"Bad Request","message":"[request body.source]: expected value of type [object]"}`,
			ErrorProperties{Message: "[request body.source]: expected value of type [object]", StatusCode: 400},
		},
		{
			"elasticsearch body",
			`{"error":{"root_cause":[{"type":"index_not_found_exception","reason":"no such index [x]"}],"type":"index_not_found_exception","reason":"no such index [x]"},"status":404}`,
			ErrorProperties{Message: "no such index [x]", StatusCode: 404, Type: "index_not_found_exception"},
		},
		{
			"root cause only",
			`{"error":{"root_cause":[{"type":"parse_exception","reason":"failed to parse"}]},"status":400}`,
			ErrorProperties{Message: "failed to parse", StatusCode: 400, Type: "parse_exception"},
		},
		{
			"client error with meta body",
			`{"name":"ResponseError","meta":{"body":{"error":{"type":"status_exception","reason":"dest index must not be the source"}},"statusCode":400}}`,
			ErrorProperties{Message: "dest index must not be the source", StatusCode: 400, Type: "status_exception"},
		},
		{
			"wrapped body",
			`{"statusCode":409,"body":{"error":{"type":"resource_already_exists_exception","reason":"exists"},"status":409}}`,
			ErrorProperties{Message: "exists", StatusCode: 409, Type: "resource_already_exists_exception"},
		},
		{
			"bare reason",
			`{"type":"illegal_argument_exception","reason":"bad field"}`,
			ErrorProperties{Message: "bad field", Type: "illegal_argument_exception"},
		},
		{"unknown object", `{ "foo" : 1 }`, ErrorProperties{Message: `{"foo":1}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractErrorProperties([]byte(tt.raw)))
		})
	}
}

func TestExtractErrorMessage(t *testing.T) {
	assert.Equal(t, "", ExtractErrorMessage(nil))
	assert.Equal(t, "dial tcp: refused", ExtractErrorMessage(errors.New("dial tcp: refused")))

	re := newResponseError("GET", "/x", 502, nil)
	assert.Equal(t, "502 Bad Gateway", ExtractErrorMessage(fmt.Errorf("wrapped: %w", re)))

	re = newResponseError("GET", "/x", 400, []byte(`{"message":"nope"}`))
	assert.Equal(t, "nope", ExtractErrorMessage(re))
	assert.Equal(t, "GET /x failed: status 400: nope", re.Error())
	assert.Equal(t, 400, re.Properties.StatusCode)
}

func TestIsJobExistsError(t *testing.T) {
	assert.False(t, IsJobExistsError(nil))
	assert.True(t, IsJobExistsError(newResponseError("PUT", "/j", 409, nil)))
	assert.True(t, IsJobExistsError(errors.New("resource_already_exists_exception: j")))
	assert.True(t, IsJobExistsError(fmt.Errorf("create: %w", ErrJobAlreadyExists)))
	assert.False(t, IsJobExistsError(newResponseError("PUT", "/j", 400, []byte(`{"message":"bad"}`))))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", newResponseError("GET", "/j", 404, nil))))
	assert.False(t, IsNotFound(errors.New("404")))
}
