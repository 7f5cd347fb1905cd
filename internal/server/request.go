package server

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"
)

// Request is the request line of one inbound connection.
type Request struct {
	Method   string
	Path     string
	Query    map[string]string
	RawQuery string
}

// Has reports whether key was present in the query string, with or without a value.
func (r *Request) Has(key string) bool {
	_, ok := r.Query[key]
	return ok
}

// ParseRequest reads and decodes the request line from br.
//
// The line may not exceed the reader's buffer size. Headers are left unread.
// A fragment in the target is dropped.
func ParseRequest(br *bufio.Reader) (*Request, error) {
	line, isPrefix, err := br.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	if isPrefix {
		return nil, fmt.Errorf("%w: request line too long", ErrMalformedRequest)
	}

	parts := strings.Split(string(line), " ")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequest, line)
	}
	method, target, version := parts[0], parts[1], parts[2]
	if method == "" || !strings.HasPrefix(version, "HTTP/1.") {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequest, line)
	}
	if !strings.HasPrefix(target, "/") {
		return nil, fmt.Errorf("%w: target %q", ErrMalformedRequest, target)
	}

	target, _, _ = strings.Cut(target, "#")
	rawPath, rawQuery, _ := strings.Cut(target, "?")

	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, fmt.Errorf("%w: path: %v", ErrMalformedRequest, err)
	}

	query, err := parseQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:   method,
		Path:     path,
		Query:    query,
		RawQuery: rawQuery,
	}, nil
}

// parseQuery splits on '&' then on the first '='. Later duplicates replace earlier ones.
func parseQuery(raw string) (map[string]string, error) {
	query := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("%w: query key: %v", ErrMalformedRequest, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("%w: query value for %q: %v", ErrMalformedRequest, key, err)
		}
		query[key] = value
	}
	return query, nil
}
