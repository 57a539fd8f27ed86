// Package memory is an in-process ReportPublisher for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendwise/internal/core"
	ports "spendwise/internal/sheets"
)

// Publisher keeps the rows of every published tab in memory.
type Publisher struct {
	mu   sync.Mutex
	tabs map[string][][]any
}

var _ ports.ReportPublisher = (*Publisher)(nil)

func New() *Publisher {
	return &Publisher{tabs: map[string][][]any{}}
}

// PublishReport stores the report rows under their tab name and returns
// a mem: URL naming the tab.
func (p *Publisher) PublishReport(ctx context.Context, r core.ExpenseReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tab := ports.TabName(r)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tabs[tab] = ports.Rows(r)
	return fmt.Sprintf("mem:%s", tab), nil
}

// Tab returns a copy of a published tab.
func (p *Publisher) Tab(name string) ([][]any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rows, ok := p.tabs[name]
	if !ok {
		return nil, false
	}
	return append([][]any(nil), rows...), true
}
