// Package automationtest provides scripted, recording fakes of the
// automation capability for tests.
package automationtest

import (
	"context"
	"sync"

	"authmcp/internal/automation"
)

// FillCall records one Page.Fill invocation.
type FillCall struct {
	Selector string
	Text     string
}

// Page is a fake tab. Zero value is usable.
type Page struct {
	PageURL   string
	PageTitle string

	FillErr  error
	URLErr   error
	TitleErr error

	// FillErrFor fails Fill only for the given selector.
	FillErrFor map[string]error

	mu    sync.Mutex
	fills []FillCall
}

// Fill records the call and returns the scripted error, if any.
func (p *Page) Fill(_ context.Context, selector, text string) error {
	if err := p.FillErrFor[selector]; err != nil {
		return err
	}
	if p.FillErr != nil {
		return p.FillErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fills = append(p.fills, FillCall{Selector: selector, Text: text})
	return nil
}

// Fills returns a copy of every successful Fill call in order.
func (p *Page) Fills() []FillCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]FillCall, len(p.fills))
	copy(out, p.fills)
	return out
}

func (p *Page) URL(context.Context) (string, error) {
	if p.URLErr != nil {
		return "", p.URLErr
	}
	return p.PageURL, nil
}

func (p *Page) Title(context.Context) (string, error) {
	if p.TitleErr != nil {
		return "", p.TitleErr
	}
	return p.PageTitle, nil
}

// Context is a fake browsing context.
type Context struct {
	PageList []*Page
	Err      error
}

func (c *Context) Pages(context.Context) ([]automation.Page, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	out := make([]automation.Page, 0, len(c.PageList))
	for _, p := range c.PageList {
		out = append(out, p)
	}
	return out, nil
}

// Browser is a fake attached browser.
type Browser struct {
	ContextList []*Context
	Err         error
}

func (b *Browser) Contexts(context.Context) ([]automation.Context, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	out := make([]automation.Context, 0, len(b.ContextList))
	for _, c := range b.ContextList {
		out = append(out, c)
	}
	return out, nil
}

// NewBrowser returns a browser with one context holding the given pages.
func NewBrowser(pages ...*Page) *Browser {
	return &Browser{ContextList: []*Context{{PageList: pages}}}
}

// Connector hands out scripted browsers and records every endpoint it was
// asked to attach to.
type Connector struct {
	// Browsers are returned in order; once exhausted the last one is reused.
	Browsers []*Browser
	Err      error

	mu        sync.Mutex
	endpoints []string
}

// Connect returns the next scripted browser.
func (c *Connector) Connect(_ context.Context, endpoint string) (automation.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoints = append(c.endpoints, endpoint)
	if c.Err != nil {
		return nil, c.Err
	}
	if len(c.Browsers) == 0 {
		return &Browser{}, nil
	}
	idx := len(c.endpoints) - 1
	if idx >= len(c.Browsers) {
		idx = len(c.Browsers) - 1
	}
	return c.Browsers[idx], nil
}

// Endpoints lists the endpoints passed to Connect so far.
func (c *Connector) Endpoints() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.endpoints))
	copy(out, c.endpoints)
	return out
}
