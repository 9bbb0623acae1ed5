// Package roddriver implements the automation capability on top of go-rod,
// attaching to a running Chrome through its DevTools endpoint.
package roddriver

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"authmcp/internal/automation"
)

// Connector attaches with rod. Zero value is ready to use.
type Connector struct {
	// Logf receives connection progress; nil discards it.
	Logf func(format string, args ...interface{})
}

// New returns a rod Connector.
func New(logf func(string, ...interface{})) *Connector {
	return &Connector{Logf: logf}
}

func (c *Connector) logf(format string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// Connect resolves endpoint to a DevTools websocket URL when it is an
// http(s) address or bare host:port, then connects.
func (c *Connector) Connect(ctx context.Context, endpoint string) (automation.Browser, error) {
	wsURL, err := resolveControlURL(endpoint)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", endpoint, err)
	}
	c.logf("connecting to DevTools websocket %s", wsURL)

	b, err := attach(rod.New().ControlURL(wsURL).Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Chrome DevTools at %s: %w", wsURL, err)
	}
	return b, nil
}

// attach connects without device emulation so the user's tabs keep their
// own viewport.
func attach(browser *rod.Browser) (*Browser, error) {
	browser = browser.NoDefaultDevice()
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return &Browser{browser: browser}, nil
}

func resolveControlURL(endpoint string) (string, error) {
	e := strings.TrimSpace(endpoint)
	if strings.HasPrefix(e, "ws://") || strings.HasPrefix(e, "wss://") {
		return e, nil
	}
	return launcher.ResolveURL(e)
}

// Browser wraps an attached rod browser.
type Browser struct {
	browser *rod.Browser
}

// Contexts returns the default browser context first, followed by contexts
// created through Target.createBrowserContext, in the order Chrome reports
// them.
func (b *Browser) Contexts(ctx context.Context) ([]automation.Context, error) {
	br := b.browser.Context(ctx)

	created, err := proto.TargetGetBrowserContexts{}.Call(br)
	if err != nil {
		return nil, fmt.Errorf("get browser contexts: %w", err)
	}
	targets, err := proto.TargetGetTargets{}.Call(br)
	if err != nil {
		return nil, fmt.Errorf("get targets: %w", err)
	}

	groups := groupPageTargets(targets.TargetInfos, created.BrowserContextIDs)
	out := make([]automation.Context, 0, len(groups))
	for _, g := range groups {
		out = append(out, &Context{browser: b.browser, targets: g})
	}
	return out, nil
}

// groupPageTargets buckets page targets by browser context. Index 0 is the
// default context; pages whose context was not created explicitly land
// there.
func groupPageTargets(infos []*proto.TargetTargetInfo, created []proto.BrowserBrowserContextID) [][]proto.TargetTargetID {
	index := make(map[proto.BrowserBrowserContextID]int, len(created))
	for i, id := range created {
		index[id] = i + 1
	}
	groups := make([][]proto.TargetTargetID, len(created)+1)
	for _, info := range infos {
		if info == nil || info.Type != proto.TargetTargetInfoTypePage {
			continue
		}
		i, ok := index[info.BrowserContextID]
		if !ok {
			i = 0
		}
		groups[i] = append(groups[i], info.TargetID)
	}
	return groups
}

// Context is a set of page targets sharing a browser context.
type Context struct {
	browser *rod.Browser
	targets []proto.TargetTargetID
}

func (c *Context) Pages(ctx context.Context) ([]automation.Page, error) {
	out := make([]automation.Page, 0, len(c.targets))
	for _, id := range c.targets {
		p, err := c.browser.Context(ctx).PageFromTarget(id)
		if err != nil {
			return nil, fmt.Errorf("attach to page %s: %w", id, err)
		}
		out = append(out, &Page{page: p})
	}
	return out, nil
}

// Page wraps a rod page.
type Page struct {
	page *rod.Page
}

// Fill waits for the element, selects its current contents and types text
// over them.
func (p *Page) Fill(ctx context.Context, selector, text string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("fill %q: select existing text: %w", selector, err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("read page url: %w", err)
	}
	return info.URL, nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(`() => document.title`)
	if err != nil {
		return "", fmt.Errorf("read page title: %w", err)
	}
	return jsonString(res.Value), nil
}

func jsonString(v gson.JSON) string {
	if v.Nil() {
		return ""
	}
	return v.Str()
}
