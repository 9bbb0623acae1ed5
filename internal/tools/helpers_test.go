package tools_test

import (
	"context"

	"authmcp/internal/automation"
)

type singlePageBrowser struct{ page automation.Page }

func (b singlePageBrowser) Contexts(context.Context) ([]automation.Context, error) {
	return []automation.Context{b}, nil
}

func (b singlePageBrowser) Pages(context.Context) ([]automation.Page, error) {
	return []automation.Page{b.page}, nil
}

func connectorFor(p automation.Page) automation.Connector {
	return automation.ConnectorFunc(func(context.Context, string) (automation.Browser, error) {
		return singlePageBrowser{page: p}, nil
	})
}
