package server

import (
	_ "embed"
	"fmt"
	"os"
)

var (
	//go:embed views/authorize.html
	defaultAuthPage []byte
	//go:embed views/authorize-failure.html
	defaultFailurePage []byte
	//go:embed views/authorize-success.html
	defaultSuccessPage []byte
)

// Role identifies which of the three pages is served.
type Role int

const (
	AuthPage Role = iota
	FailurePage
	SuccessPage
)

func (r Role) String() string {
	switch r {
	case AuthPage:
		return "auth"
	case FailurePage:
		return "failure"
	case SuccessPage:
		return "success"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Pages holds the bytes served for each [Role]. A nil field falls back to the built-in page.
//
// Content is served verbatim. A custom Auth page must move the URL fragment into
// the query string of the same path, otherwise the callback never arrives.
type Pages struct {
	Auth    []byte
	Failure []byte
	Success []byte
}

// DefaultPages returns the built-in pages.
func DefaultPages() Pages {
	return Pages{
		Auth:    clone(defaultAuthPage),
		Failure: clone(defaultFailurePage),
		Success: clone(defaultSuccessPage),
	}
}

// LoadPages reads caller supplied pages from disk. An empty path keeps the built-in page.
func LoadPages(auth, failure, success string) (Pages, error) {
	var pages Pages
	for _, p := range []struct {
		path string
		dst  *[]byte
	}{
		{auth, &pages.Auth},
		{failure, &pages.Failure},
		{success, &pages.Success},
	} {
		if p.path == "" {
			continue
		}
		data, err := os.ReadFile(p.path)
		if err != nil {
			return Pages{}, fmt.Errorf("failed to read page %s: %w", p.path, err)
		}
		*p.dst = data
	}
	return pages.withDefaults(), nil
}

// Resolve returns the content served for role.
func (p Pages) Resolve(role Role) []byte {
	switch role {
	case AuthPage:
		return fallback(p.Auth, defaultAuthPage)
	case FailurePage:
		return fallback(p.Failure, defaultFailurePage)
	case SuccessPage:
		return fallback(p.Success, defaultSuccessPage)
	default:
		return nil
	}
}

// withDefaults returns a private copy with every role filled in.
func (p Pages) withDefaults() Pages {
	return Pages{
		Auth:    clone(p.Resolve(AuthPage)),
		Failure: clone(p.Resolve(FailurePage)),
		Success: clone(p.Resolve(SuccessPage)),
	}
}

func fallback(b, def []byte) []byte {
	if b == nil {
		return def
	}
	return b
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
