// Package pwdriver implements the automation capability with
// playwright-go, attaching over CDP to an already-running Chromium.
package pwdriver

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"authmcp/internal/automation"
)

// Connector starts the Playwright driver on first use and attaches with
// Chromium.ConnectOverCDP.
type Connector struct {
	// Install downloads the Playwright driver before starting it.
	Install bool
	// Output receives driver install/start output; nil discards it.
	Output io.Writer

	mu             sync.Mutex
	pw             *playwright.Playwright
	connectOverCDP func(endpoint string) (playwright.Browser, error)
}

// New returns a Connector that starts Playwright lazily.
func New(install bool, output io.Writer) *Connector {
	return &Connector{Install: install, Output: output}
}

func (c *Connector) init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connectOverCDP != nil {
		return nil
	}

	out := c.Output
	if out == nil {
		out = io.Discard
	}
	opts := &playwright.RunOptions{
		Verbose:             false,
		Stdout:              out,
		Stderr:              out,
		SkipInstallBrowsers: true,
	}
	if c.Install {
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}
	c.pw = pw
	c.connectOverCDP = func(endpoint string) (playwright.Browser, error) {
		return pw.Chromium.ConnectOverCDP(endpoint)
	}
	return nil
}

// Connect attaches to endpoint. Playwright calls are not context aware;
// ctx is only checked before starting.
func (c *Connector) Connect(ctx context.Context, endpoint string) (automation.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	b, err := c.connectOverCDP(endpoint)
	if err != nil {
		return nil, fmt.Errorf("connect over CDP to %s: %w", endpoint, err)
	}
	return &Browser{browser: b}, nil
}

// Stop shuts down the Playwright driver process if it was started.
// Attached browsers are left running.
func (c *Connector) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pw == nil {
		return nil
	}
	err := c.pw.Stop()
	c.pw = nil
	c.connectOverCDP = nil
	return err
}

type Browser struct {
	browser playwright.Browser
}

func (b *Browser) Contexts(context.Context) ([]automation.Context, error) {
	contexts := b.browser.Contexts()
	out := make([]automation.Context, 0, len(contexts))
	for _, bc := range contexts {
		out = append(out, &Context{context: bc})
	}
	return out, nil
}

type Context struct {
	context playwright.BrowserContext
}

func (c *Context) Pages(context.Context) ([]automation.Page, error) {
	pages := c.context.Pages()
	out := make([]automation.Page, 0, len(pages))
	for _, p := range pages {
		out = append(out, &Page{page: p})
	}
	return out, nil
}

type Page struct {
	page playwright.Page
}

func (p *Page) Fill(_ context.Context, selector, text string) error {
	if err := p.page.Fill(selector, text); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

func (p *Page) URL(context.Context) (string, error) {
	return p.page.URL(), nil
}

func (p *Page) Title(context.Context) (string, error) {
	title, err := p.page.Title()
	if err != nil {
		return "", fmt.Errorf("read page title: %w", err)
	}
	return title, nil
}
