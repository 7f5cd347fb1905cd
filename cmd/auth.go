package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/twx/internal/server"
	"github.com/desertthunder/twx/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultLoginTimeout = 2 * time.Minute

// loginOpts are the per-invocation settings of [Runner.login].
type loginOpts struct {
	port      int
	noBrowser bool
	tui       bool
}

// AuthURL prints the implicit grant authorize URL for the configured redirect URI.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	srv, err := r.service()
	if err != nil {
		return err
	}

	redirect := fmt.Sprintf("http://127.0.0.1:%d%s", r.config.Server.Port, r.config.Server.Path)
	return r.writePlain("%s\n", srv.AuthURL(redirect, cmd.String("state")))
}

// AuthLogin runs the loopback callback server, opens the browser and prints the received token.
//
// The token is never written to disk.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	opts := loginOpts{
		port:      r.config.Server.Port,
		noBrowser: cmd.Bool("no-browser"),
		tui:       cmd.Bool("tui"),
	}
	if cmd.IsSet("port") {
		opts.port = int(cmd.Int("port"))
	}

	token, err := r.login(ctx, opts)
	if err != nil {
		return err
	}

	if err := r.twitch.Authenticate(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.logger.Info("authorization successful", "token", shared.MaskToken(token))

	r.writePlain("✓ Authorization successful\n")
	r.writePlain("Access token: %s\n", token)
	r.writePlainln("Use it with: export TWX_ACCESS_TOKEN=%s", token)
	return nil
}

// login performs the implicit grant and returns the access token.
func (r *Runner) login(ctx context.Context, opts loginOpts) (string, error) {
	svc, err := r.service()
	if err != nil {
		return "", err
	}

	pages, err := server.LoadPages(r.config.Server.AuthPage, r.config.Server.FailurePage, r.config.Server.SuccessPage)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	readTimeout, loginTimeout, err := r.config.Server.Durations()
	if err != nil {
		return "", err
	}
	if loginTimeout <= 0 {
		loginTimeout = defaultLoginTimeout
	}

	results := make(chan server.Result, 1)
	cb, err := server.New(
		server.Config{
			Port:        opts.port,
			Path:        r.config.Server.Path,
			Pages:       pages,
			ReadTimeout: readTimeout,
		},
		server.WithLogger(shared.WithLogger(r.logger, "component", "callback")),
		server.WithListener(resultListener(results)),
	)
	if err != nil {
		return "", err
	}

	if err := cb.Start(); err != nil {
		return "", err
	}

	loginCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- cb.Run(loginCtx) }()

	authURL := svc.AuthURL(cb.RedirectURL(), "")
	r.logger.Info("waiting for authorization", "redirect", cb.RedirectURL(), "timeout", loginTimeout)

	if opts.noBrowser {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	} else if !opts.tui {
		r.writePlain("→ Opening browser for Twitch authorization...\n")
	}

	var result server.Result
	if opts.tui {
		result, err = r.loginTUI(loginCtx, authURL, cb, results)
		cb.Stop()
		if runErrValue := <-runErr; err == nil && !result.IsSet() && runErrValue != nil {
			err = fmt.Errorf("callback server: %w", runErrValue)
		}
	} else {
		r.writePlain("→ Waiting for authorization (%s timeout)...\n", loginTimeout)
		result, err = awaitResult(loginCtx, cb, results, runErr)
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, loginTimeout)
		}
		return "", err
	}

	switch result.Kind {
	case server.ResultToken:
		return result.Token, nil
	case server.ResultError:
		return "", fmt.Errorf("%w: %w", shared.ErrAuthFailed, result.Err)
	default:
		return "", fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
}

// resultListener forwards the first server outcome to results without blocking.
func resultListener(results chan<- server.Result) server.Listener {
	send := func(res server.Result) {
		select {
		case results <- res:
		default:
		}
	}

	return server.ListenerFuncs{
		Token: func(token string) {
			send(server.Result{Kind: server.ResultToken, Token: token})
		},
		Error: func(code, description string) {
			send(server.Result{Kind: server.ResultError, Err: &server.AuthError{Code: code, Description: description}})
		},
	}
}

// awaitResult blocks until the listener reports or the server stops, then waits for Run to return
// so the browser has received its page.
func awaitResult(ctx context.Context, cb *server.Server, results <-chan server.Result, runErr <-chan error) (server.Result, error) {
	var res server.Result
	select {
	case res = <-results:
	case <-cb.Done():
	}

	cb.Stop()
	err := <-runErr

	// Done closes before the listener is notified; Run returning means every handler finished.
	if !res.IsSet() {
		select {
		case res = <-results:
		default:
		}
	}

	switch {
	case res.IsSet():
		return res, nil
	case err != nil:
		return res, fmt.Errorf("callback server: %w", err)
	case ctx.Err() != nil:
		return res, ctx.Err()
	default:
		return res, fmt.Errorf("%w: callback server stopped", shared.ErrAuthFailed)
	}
}
