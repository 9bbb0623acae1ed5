// Package automation describes the remote browser capability that sessions
// are built on. Drivers live in the roddriver and pwdriver subpackages.
package automation

import "context"

// Connector attaches to an already-running browser through its remote
// debugging endpoint.
type Connector interface {
	Connect(ctx context.Context, endpoint string) (Browser, error)
}

// Browser is an attached browser. Contexts are returned in the driver's
// natural ordering.
type Browser interface {
	Contexts(ctx context.Context) ([]Context, error)
}

// Context is a browsing context (profile) within a browser.
type Context interface {
	Pages(ctx context.Context) ([]Page, error)
}

// Page is a single tab.
type Page interface {
	// Fill replaces the value of the element matched by selector with text.
	Fill(ctx context.Context, selector, text string) error
	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
}

// ConnectorFunc adapts a plain function to a Connector.
type ConnectorFunc func(ctx context.Context, endpoint string) (Browser, error)

// Connect calls f.
func (f ConnectorFunc) Connect(ctx context.Context, endpoint string) (Browser, error) {
	return f(ctx, endpoint)
}
