package client

import (
	"net/http"
	"sort"
	"strings"
)

// Header is a set of header values. Keys are stored as given, lookups
// through the methods are case-insensitive.
type Header map[string]string

// Get returns the value stored under any casing of name.
func (h Header) Get(name string) string {
	if v, ok := h[name]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}

	return ""
}

// Has reports whether any casing of name is present.
func (h Header) Has(name string) bool {
	if _, ok := h[name]; ok {
		return true
	}
	for k := range h {
		if strings.EqualFold(k, name) {
			return true
		}
	}

	return false
}

// Set stores value under name, replacing every other casing of name.
func (h Header) Set(name, value string) {
	h.Del(name)
	h[name] = value
}

// Del removes every casing of name.
func (h Header) Del(name string) {
	for k := range h {
		if strings.EqualFold(k, name) {
			delete(h, k)
		}
	}
}

// Normalize collapses every casing variant of canonical into canonical.
// When several variants exist the lexically last one wins.
func (h Header) Normalize(canonical string) {
	var variants []string
	for k := range h {
		if k != canonical && strings.EqualFold(k, canonical) {
			variants = append(variants, k)
		}
	}
	if len(variants) == 0 {
		return
	}

	sort.Strings(variants)
	for _, k := range variants {
		h[canonical] = h[k]
		delete(h, k)
	}
}

// Clone returns a copy of h. A nil Header clones to nil.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}

	cpy := make(Header, len(h))
	for k, v := range h {
		cpy[k] = v
	}

	return cpy
}

// merge copies every entry of srcs into h. A later source replaces every
// casing of a name set by an earlier one.
func (h Header) merge(srcs ...Header) Header {
	for _, src := range srcs {
		keys := make([]string, 0, len(src))
		for k := range src {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			h.Set(k, src[k])
		}
	}

	return h
}

// toHTTP converts h into an http.Header.
func (h Header) toHTTP() http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		out.Set(k, v)
	}

	return out
}

// headerFromHTTP flattens an http.Header, lowercasing names and joining
// repeated values.
func headerFromHTTP(src http.Header) Header {
	out := make(Header, len(src))
	for k, v := range src {
		if len(v) == 0 {
			continue
		}
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}

	return out
}
