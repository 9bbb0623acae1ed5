// Package tools holds the tool catalog exposed over MCP and the dispatcher
// that validates invocations and runs them against browser sessions.
package tools

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"authmcp/internal/credentials"
	"authmcp/internal/session"
)

// CredentialResolver resolves a named token into a credential.
type CredentialResolver interface {
	Resolve(tokenName string) (credentials.Credential, error)
}

// Dispatcher runs tool invocations one at a time against its session
// registry. It owns the registry for the lifetime of the server.
type Dispatcher struct {
	sessions *session.Registry
	creds    CredentialResolver

	// Debugf receives step-by-step tracing; nil disables it.
	Debugf func(format string, args ...interface{})

	mu sync.Mutex
}

// NewDispatcher returns a dispatcher using sessions and creds.
func NewDispatcher(sessions *session.Registry, creds CredentialResolver) *Dispatcher {
	return &Dispatcher{sessions: sessions, creds: creds}
}

// Sessions exposes the registry the dispatcher owns.
func (d *Dispatcher) Sessions() *session.Registry {
	return d.sessions
}

// Invoke runs the named tool and converts any failure, including a panic
// in the driver, into an error envelope. It never returns an error.
func (d *Dispatcher) Invoke(ctx context.Context, name string, raw map[string]interface{}) (env Envelope) {
	d.mu.Lock()
	defer d.mu.Unlock()

	log.Printf("→ tool=%s args=%s", name, formatArgs(raw))
	defer func() {
		if r := recover(); r != nil {
			env = failure(fmt.Errorf("%s panicked: %v", name, r))
		}
		if env.IsError {
			log.Printf("✗ tool=%s %s", name, env.Text)
		} else {
			log.Printf("✓ tool=%s %s", name, env.Text)
		}
	}()

	args, err := DecodeArgs(name, raw)
	if err != nil {
		return failure(err)
	}

	text, err := d.run(ctx, args)
	if err != nil {
		return failure(err)
	}
	return success(text)
}

func (d *Dispatcher) run(ctx context.Context, args Args) (string, error) {
	switch a := args.(type) {
	case ConnectArgs:
		return d.connect(ctx, a)
	case GetCredentialsArgs:
		return d.getCredentials(a)
	case FillTextArgs:
		return d.fillText(ctx, a)
	case FillCredentialsArgs:
		return d.fillCredentials(ctx, a)
	case PageInfoArgs:
		return d.pageInfo(ctx, a)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTool, args.Tool())
}

func (d *Dispatcher) connect(ctx context.Context, a ConnectArgs) (string, error) {
	d.debugf("connecting to Chrome at %s (session %q)", a.Endpoint, a.SessionID)
	if _, err := d.sessions.Connect(ctx, a.Endpoint, a.SessionID); err != nil {
		return "", fmt.Errorf("Failed to connect to Chrome: %w", err)
	}
	return fmt.Sprintf("Successfully connected to Chrome session '%s' at %s", a.SessionID, a.Endpoint), nil
}

func (d *Dispatcher) getCredentials(a GetCredentialsArgs) (string, error) {
	cred, err := d.creds.Resolve(a.TokenName)
	if err != nil {
		return "", fmt.Errorf("Failed to get credentials: %w", err)
	}
	return fmt.Sprintf("Retrieved credentials for token '%s' (username: %s)", a.TokenName, cred.Username), nil
}

func (d *Dispatcher) fillText(ctx context.Context, a FillTextArgs) (string, error) {
	s, err := d.sessions.Get(a.SessionID)
	if err != nil {
		return "", fmt.Errorf("Failed to fill text: %w", err)
	}
	d.debugf("filling %q in session %q (%d chars)", a.Selector, a.SessionID, len(a.Text))
	if err := s.Page.Fill(ctx, a.Selector, a.Text); err != nil {
		return "", fmt.Errorf("Failed to fill text: %w", err)
	}
	return fmt.Sprintf("Successfully filled text into selector '%s' in session '%s'", a.Selector, a.SessionID), nil
}

// fillCredentials resolves the token before touching the session so a bad
// token never reaches the page.
func (d *Dispatcher) fillCredentials(ctx context.Context, a FillCredentialsArgs) (string, error) {
	cred, err := d.creds.Resolve(a.TokenName)
	if err != nil {
		return "", fmt.Errorf("Failed to fill credentials: %w", err)
	}
	s, err := d.sessions.Get(a.SessionID)
	if err != nil {
		return "", fmt.Errorf("Failed to fill credentials: %w", err)
	}

	d.debugf("filling username into %q in session %q", a.UsernameSelector, a.SessionID)
	if err := s.Page.Fill(ctx, a.UsernameSelector, cred.Username); err != nil {
		return "", fmt.Errorf("Failed to fill credentials: %w", redact(err, cred.Password))
	}
	d.debugf("filling password into %q in session %q", a.PasswordSelector, a.SessionID)
	if err := s.Page.Fill(ctx, a.PasswordSelector, cred.Password); err != nil {
		return "", fmt.Errorf("Failed to fill credentials: %w", redact(err, cred.Password))
	}

	return fmt.Sprintf("Successfully filled credentials from token '%s' into username selector '%s' and password selector '%s' in session '%s'",
		a.TokenName, a.UsernameSelector, a.PasswordSelector, a.SessionID), nil
}

func (d *Dispatcher) pageInfo(ctx context.Context, a PageInfoArgs) (string, error) {
	s, err := d.sessions.Get(a.SessionID)
	if err != nil {
		return "", fmt.Errorf("Failed to get page info: %w", err)
	}
	url, err := s.Page.URL(ctx)
	if err != nil {
		return "", fmt.Errorf("Failed to get page info: %w", err)
	}
	title, err := s.Page.Title(ctx)
	if err != nil {
		return "", fmt.Errorf("Failed to get page info: %w", err)
	}
	return fmt.Sprintf("Session '%s' - URL: %s, Title: %s", a.SessionID, url, title), nil
}

func (d *Dispatcher) debugf(format string, args ...interface{}) {
	if d.Debugf != nil {
		d.Debugf(format, args...)
	}
}

// redactedError masks a secret in the text of a driver error while keeping
// the original reachable through errors.Is/As.
type redactedError struct {
	err    error
	secret string
}

func (e *redactedError) Error() string {
	return strings.ReplaceAll(e.err.Error(), e.secret, "***")
}

func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, secret string) error {
	if err == nil || secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return &redactedError{err: err, secret: secret}
}

// formatArgs renders arguments for the log, keeping only the length of
// free-form text values.
func formatArgs(raw map[string]interface{}) string {
	if len(raw) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(" ")
		}
		v := raw[k]
		if s, ok := v.(string); ok && k == "text" {
			fmt.Fprintf(&b, "%s:<%d chars>", k, len(s))
			continue
		}
		fmt.Fprintf(&b, "%s:%v", k, v)
	}
	b.WriteString("}")
	return b.String()
}
