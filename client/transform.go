package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
)

// TransformFunc reshapes a payload. It may mutate headers and must return
// the, possibly new-typed, data.
type TransformFunc func(data any, headers Header) (any, error)

// Transform threads data through fns in order. The first error aborts the
// transformation and is returned as is.
func Transform(data any, headers Header, fns []TransformFunc) (any, error) {
	for _, fn := range fns {
		var err error
		if data, err = fn(data, headers); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// DefaultTransformRequest returns the default request transform list.
func DefaultTransformRequest() []TransformFunc {
	return []TransformFunc{transformRequest}
}

// DefaultTransformResponse returns the default response transform list.
func DefaultTransformResponse() []TransformFunc {
	return []TransformFunc{transformResponse}
}

func transformRequest(data any, headers Header) (any, error) {
	headers.Normalize("Accept")
	headers.Normalize("Content-Type")

	switch v := data.(type) {
	case nil, string, []byte, io.Reader:
		return data, nil
	case url.Values:
		setContentTypeIfUnset(headers, "application/x-www-form-urlencoded;charset=utf-8")
		return v.Encode(), nil
	}

	setContentTypeIfUnset(headers, "application/json;charset=utf-8")
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding request data: %w", err)
	}

	return string(b), nil
}

// transformResponse decodes JSON text. Strings that are not valid JSON
// are returned untouched.
func transformResponse(data any, _ Header) (any, error) {
	s, ok := data.(string)
	if !ok {
		return data, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return data, nil
	}

	return parsed, nil
}

func setContentTypeIfUnset(headers Header, value string) {
	if headers != nil && !headers.Has("Content-Type") {
		headers["Content-Type"] = value
	}
}
