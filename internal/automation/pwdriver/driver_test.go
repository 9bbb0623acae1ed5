package pwdriver

import (
	"context"
	"errors"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The fakes embed the playwright interfaces and override only what the
// driver calls; anything else panics on the nil embedded value.

type fakePage struct {
	playwright.Page
	url      string
	title    string
	titleErr error
	fillErr  error
	filled   map[string]string
}

func (p *fakePage) Fill(selector, value string, _ ...playwright.PageFillOptions) error {
	if p.fillErr != nil {
		return p.fillErr
	}
	if p.filled == nil {
		p.filled = map[string]string{}
	}
	p.filled[selector] = value
	return nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Title() (string, error) { return p.title, p.titleErr }

type fakeContext struct {
	playwright.BrowserContext
	pages []playwright.Page
}

func (c *fakeContext) Pages() []playwright.Page { return c.pages }

type fakeBrowser struct {
	playwright.Browser
	contexts []playwright.BrowserContext
}

func (b *fakeBrowser) Contexts() []playwright.BrowserContext { return b.contexts }

func connectorWith(b playwright.Browser, err error) (*Connector, *[]string) {
	var endpoints []string
	c := &Connector{}
	c.connectOverCDP = func(endpoint string) (playwright.Browser, error) {
		endpoints = append(endpoints, endpoint)
		return b, err
	}
	return c, &endpoints
}

func TestConnectWalksContextsAndPages(t *testing.T) {
	page := &fakePage{url: "https://a.test/", title: "A"}
	browser := &fakeBrowser{contexts: []playwright.BrowserContext{
		&fakeContext{pages: []playwright.Page{page, &fakePage{}}},
		&fakeContext{},
	}}
	c, endpoints := connectorWith(browser, nil)
	ctx := context.Background()

	b, err := c.Connect(ctx, "http://localhost:9222")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:9222"}, *endpoints)

	contexts, err := b.Contexts(ctx)
	require.NoError(t, err)
	require.Len(t, contexts, 2)

	pages, err := contexts[0].Pages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	empty, err := contexts[1].Pages(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, pages[0].Fill(ctx, "#user", "alice"))
	assert.Equal(t, "alice", page.filled["#user"])

	url, err := pages[0].URL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://a.test/", url)

	title, err := pages[0].Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", title)
}

func TestConnectWrapsDriverErrors(t *testing.T) {
	boom := errors.New("ECONNREFUSED")
	c, _ := connectorWith(nil, boom)

	_, err := c.Connect(context.Background(), "http://localhost:9222")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "http://localhost:9222")
}

func TestConnectHonoursCancelledContext(t *testing.T) {
	c, endpoints := connectorWith(&fakeBrowser{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Connect(ctx, "http://localhost:9222")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *endpoints)
}

func TestPageErrorsAreWrapped(t *testing.T) {
	p := &Page{page: &fakePage{
		fillErr:  errors.New("Timeout 30000ms exceeded"),
		titleErr: errors.New("Target closed"),
	}}
	ctx := context.Background()

	err := p.Fill(ctx, "#missing", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `fill "#missing"`)
	assert.Contains(t, err.Error(), "Timeout 30000ms exceeded")

	_, err = p.Title(ctx)
	assert.ErrorContains(t, err, "Target closed")
}

func TestStopWithoutStart(t *testing.T) {
	assert.NoError(t, New(false, nil).Stop())
}
