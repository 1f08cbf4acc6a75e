package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/schema"
	"github.com/spf13/cast"
)

var absoluteURL = regexp.MustCompile(`(?i)^([a-z][a-z\d+\-.]*:)?//`)

var paramsEncoder = schema.NewEncoder()

// encodeReplacer restores the characters kept literal in query strings.
var encodeReplacer = strings.NewReplacer(
	"%3A", ":", "%3a", ":",
	"%24", "$",
	"%2C", ",", "%2c", ",",
	"%5B", "[", "%5b", "[",
	"%5D", "]", "%5d", "]",
	"%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*",
)

// IsAbsoluteURL reports whether u starts with "<scheme>://" or "//".
func IsAbsoluteURL(u string) bool {
	return absoluteURL.MatchString(u)
}

// CombineURLs joins baseURL and relativeURL with exactly one slash.
func CombineURLs(baseURL, relativeURL string) string {
	if relativeURL == "" {
		return baseURL
	}

	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(relativeURL, "/")
}

// BuildFullPath prefixes requestedURL with baseURL unless requestedURL is
// already absolute.
func BuildFullPath(baseURL, requestedURL string) string {
	if baseURL != "" && !IsAbsoluteURL(requestedURL) {
		return CombineURLs(baseURL, requestedURL)
	}

	return requestedURL
}

// BuildURL appends the serialized params to rawURL. A custom serializer
// takes precedence over the built-in encoding.
func BuildURL(rawURL string, params any, serializer func(any) (string, error)) (string, error) {
	if isNil(params) {
		return rawURL, nil
	}

	var (
		serialized string
		err        error
	)
	switch {
	case serializer != nil:
		serialized, err = serializer(params)
	default:
		serialized, err = SerializeParams(params)
	}
	if err != nil {
		return "", fmt.Errorf("serializing params: %w", err)
	}

	if serialized == "" {
		return rawURL, nil
	}

	if i := strings.IndexByte(rawURL, '#'); i != -1 {
		rawURL = rawURL[:i]
	}

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}

	return rawURL + sep + serialized, nil
}

// SerializeParams encodes params as a query string. Map keys are emitted in
// sorted order, nil values are skipped and slices repeat the key with a
// "[]" suffix.
func SerializeParams(params any) (string, error) {
	switch p := params.(type) {
	case url.Values:
		return p.Encode(), nil
	case map[string]string:
		m := make(map[string]any, len(p))
		for k, v := range p {
			m[k] = v
		}
		return serializeMap(m)
	case map[string]any:
		return serializeMap(p)
	}

	v := reflect.Indirect(reflect.ValueOf(params))
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("unsupported params type %T", params)
	}

	values := url.Values{}
	if err := paramsEncoder.Encode(v.Interface(), values); err != nil {
		return "", fmt.Errorf("encoding struct params: %w", err)
	}

	return values.Encode(), nil
}

func serializeMap(params map[string]any) (string, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		val := params[key]
		if isNil(val) {
			continue
		}

		var vals []any
		rv := reflect.ValueOf(val)
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
			key += "[]"
			for i := range rv.Len() {
				vals = append(vals, rv.Index(i).Interface())
			}
		} else {
			vals = []any{val}
		}

		for _, v := range vals {
			s, err := paramString(v)
			if err != nil {
				return "", fmt.Errorf("param %q: %w", key, err)
			}
			parts = append(parts, encode(key)+"="+encode(s))
		}
	}

	return strings.Join(parts, "&"), nil
}

func paramString(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format("2006-01-02T15:04:05.000Z"), nil
	case fmt.Stringer:
		return t.String(), nil
	}

	switch reflect.Indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	return cast.ToStringE(v)
}

func encode(s string) string {
	return encodeReplacer.Replace(url.QueryEscape(s))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}

	return false
}
