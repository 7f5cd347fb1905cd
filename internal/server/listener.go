package server

// Listener receives the terminal outcome of an implicit grant flow.
//
// Methods are called from a connection goroutine, at most once per server and
// only for the first terminal callback.
type Listener interface {
	OnAccessTokenReceived(token string)
	OnAuthenticationError(code, description string)
}

// ListenerFuncs adapts a pair of functions to [Listener]. Nil fields are skipped.
type ListenerFuncs struct {
	Token func(token string)
	Error func(code, description string)
}

func (l ListenerFuncs) OnAccessTokenReceived(token string) {
	if l.Token != nil {
		l.Token(token)
	}
}

func (l ListenerFuncs) OnAuthenticationError(code, description string) {
	if l.Error != nil {
		l.Error(code, description)
	}
}

// ResultKind tells which outcome a [Result] holds.
type ResultKind int

const (
	ResultUnset ResultKind = iota
	ResultToken
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultToken:
		return "token"
	case ResultError:
		return "error"
	default:
		return "unset"
	}
}

// Result is the single-use outcome captured by a [Server].
type Result struct {
	Kind  ResultKind
	Token string
	Err   *AuthError
}

// IsSet reports whether a terminal callback has been handled.
func (r Result) IsSet() bool {
	return r.Kind != ResultUnset
}

// notify forwards the result to l.
func (r Result) notify(l Listener) {
	if l == nil {
		return
	}
	switch r.Kind {
	case ResultToken:
		l.OnAccessTokenReceived(r.Token)
	case ResultError:
		l.OnAuthenticationError(r.Err.Code, r.Err.Description)
	}
}
