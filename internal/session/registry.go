// Package session keeps the caller-named browser sessions the tools operate
// on. A session binds one browser, context and page obtained from a single
// connect call.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"authmcp/internal/automation"
)

// DefaultID is used when the caller does not name a session.
const DefaultID = "default"

var (
	ErrNoContextsAvailable = errors.New("no browser contexts found")
	ErrNoPagesAvailable    = errors.New("no pages found")
	ErrSessionNotFound     = errors.New("no active session found")
)

// Session is a registered browser/context/page triple. The handles are
// borrowed from the driver and are never closed by the registry.
type Session struct {
	ID          string
	Endpoint    string
	Browser     automation.Browser
	Context     automation.Context
	Page        automation.Page
	ConnectedAt time.Time
}

// Registry maps session ids to sessions.
type Registry struct {
	connector automation.Connector
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry attaching through connector.
func NewRegistry(connector automation.Connector) *Registry {
	return &Registry{
		connector: connector,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Connect attaches to endpoint, selects the first page of the first context
// and stores it under id. An existing session with the same id is replaced;
// its browser connection is left open (there is no release hook).
func (r *Registry) Connect(ctx context.Context, endpoint, id string) (*Session, error) {
	browser, err := r.connector.Connect(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	contexts, err := browser.Contexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list browser contexts: %w", err)
	}
	if len(contexts) == 0 {
		return nil, ErrNoContextsAvailable
	}
	bctx := contexts[0]

	pages, err := bctx.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, ErrNoPagesAvailable
	}

	s := &Session{
		ID:          id,
		Endpoint:    endpoint,
		Browser:     browser,
		Context:     bctx,
		Page:        pages[0],
		ConnectedAt: r.now(),
	}

	r.mu.Lock()
	prev, replaced := r.sessions[id]
	r.sessions[id] = s
	r.mu.Unlock()

	if replaced {
		log.Printf("session %q replaced (was %s, connected %s); previous browser connection is not released",
			id, prev.Endpoint, prev.ConnectedAt.Format(time.RFC3339))
	}
	return s, nil
}

// Get returns the session registered under id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w for '%s'; use connect first", ErrSessionNotFound, id)
	}
	return s, nil
}

// IDs returns the registered session ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
