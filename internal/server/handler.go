package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	maxRequestLine = 8 << 10
	maxHeaderLines = 100

	paramAccessToken      = "access_token"
	paramError            = "error"
	paramErrorDescription = "error_description"
)

var errTooManyHeaders = errors.New("too many header lines")

// outcome is the classification of a parsed request.
type outcome int

const (
	outcomeLanding outcome = iota
	outcomeToken
	outcomeError
	outcomeNotFound
	outcomeMethodNotAllowed
)

func (o outcome) String() string {
	switch o {
	case outcomeLanding:
		return "landing"
	case outcomeToken:
		return "callback-success"
	case outcomeError:
		return "callback-failure"
	case outcomeNotFound:
		return "not-found"
	case outcomeMethodNotAllowed:
		return "method-not-allowed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// classify applies the landing/callback rule. An error key wins over an access token.
func classify(req *Request, path string) outcome {
	switch {
	case req.Path != path:
		return outcomeNotFound
	case req.Method != http.MethodGet:
		return outcomeMethodNotAllowed
	case req.Has(paramError):
		return outcomeError
	case req.Has(paramAccessToken):
		return outcomeToken
	default:
		return outcomeLanding
	}
}

// handle serves one connection and closes it.
func (s *Server) handle(conn net.Conn) {
	defer s.handlers.Done()
	defer func() {
		s.untrack(conn)
		conn.Close()
	}()

	logger := s.logger.With("conn", uuid.NewString(), "remote", conn.RemoteAddr())

	br := bufio.NewReaderSize(conn, maxRequestLine)
	req, err := ParseRequest(br)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrDeadlineExceeded) {
			logger.Debug("connection closed without a request", "error", err)
			return
		}
		logger.Warn("rejecting malformed request", "error", err)
		s.reply(conn, logger, http.StatusBadRequest, errorPage(http.StatusBadRequest))
		return
	}
	if err := discardHeaders(br); err != nil {
		logger.Debug("failed to read request headers", "error", err)
	}

	o := classify(req, s.cfg.Path)
	logger = logger.With("method", req.Method, "path", req.Path, "outcome", o)

	switch o {
	case outcomeLanding:
		logger.Info("serving auth page")
		s.reply(conn, logger, http.StatusOK, s.cfg.Pages.Resolve(AuthPage))
	case outcomeToken:
		if !s.complete(Result{Kind: ResultToken, Token: req.Query[paramAccessToken]}) {
			logger.Warn("duplicate callback ignored")
		} else {
			logger.Info("access token received")
		}
		s.reply(conn, logger, http.StatusOK, s.cfg.Pages.Resolve(SuccessPage))
	case outcomeError:
		authErr := &AuthError{Code: req.Query[paramError], Description: req.Query[paramErrorDescription]}
		if !s.complete(Result{Kind: ResultError, Err: authErr}) {
			logger.Warn("duplicate callback ignored")
		} else {
			logger.Info("authentication error received", "code", authErr.Code, "description", authErr.Description)
		}
		s.reply(conn, logger, http.StatusOK, s.cfg.Pages.Resolve(FailurePage))
	case outcomeNotFound:
		logger.Warn("unexpected path")
		s.reply(conn, logger, http.StatusNotFound, errorPage(http.StatusNotFound))
	case outcomeMethodNotAllowed:
		logger.Warn("unexpected method")
		s.reply(conn, logger, http.StatusMethodNotAllowed, errorPage(http.StatusMethodNotAllowed))
	}
}

func (s *Server) reply(w io.Writer, logger *log.Logger, status int, body []byte) {
	if err := writeResponse(w, status, body); err != nil {
		logger.Warn("failed to write response", "status", status, "error", err)
	}
}

// writeResponse writes a complete HTTP/1.1 response that ends the connection.
func writeResponse(w io.Writer, status int, body []byte) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", status, http.StatusText(status))
	fmt.Fprintf(bw, "Content-Type: text/html\r\n")
	fmt.Fprintf(bw, "Content-Length: %d\r\n", len(body))
	fmt.Fprintf(bw, "Cache-Control: no-store\r\n")
	fmt.Fprintf(bw, "Connection: close\r\n\r\n")
	if _, err := bw.Write(body); err != nil {
		return err
	}
	return bw.Flush()
}

// discardHeaders consumes header lines up to the blank line.
// Unread bytes left in the socket would turn the close into a reset.
func discardHeaders(br *bufio.Reader) error {
	for i := 0; i < maxHeaderLines; i++ {
		line, isPrefix, err := br.ReadLine()
		if err != nil {
			return err
		}
		if !isPrefix && len(line) == 0 {
			return nil
		}
	}
	return errTooManyHeaders
}

func errorPage(status int) []byte {
	text := http.StatusText(status)
	return fmt.Appendf(nil, "<!DOCTYPE html>\n<html><head><title>%d %s</title></head><body><h1>%d %s</h1></body></html>\n",
		status, text, status, text)
}
