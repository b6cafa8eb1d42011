package listing

import (
	"context"
	"html/template"
	"log/slog"
	"sync"

	"github.com/erazemk/najdeno/internal/model"
)

// Region is a display area whose content is replaced as a whole.
type Region interface {
	Replace(content template.HTML)
}

// Pane is an in-memory Region that can be read back when a page is rendered.
type Pane struct {
	mu      sync.RWMutex
	content template.HTML
}

// NewPane returns an empty pane.
func NewPane() *Pane {
	return &Pane{}
}

// Replace discards the previous content.
func (p *Pane) Replace(content template.HTML) {
	p.mu.Lock()
	p.content = content
	p.mu.Unlock()
}

// Content returns the current content.
func (p *Pane) Content() template.HTML {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.content
}

// Board keeps the lost and found regions in sync with the store. A board is
// cheap; build one per set of regions that must show a single refresh.
type Board struct {
	store    Store
	renderer *Renderer
	regions  map[model.Kind]Region
}

// NewBoard creates a board rendering into the given regions.
func NewBoard(store Store, renderer *Renderer, lost, found Region) *Board {
	return &Board{
		store:    store,
		renderer: renderer,
		regions: map[model.Kind]Region{
			model.KindLost:  lost,
			model.KindFound: found,
		},
	}
}

// Refresh re-reads both collections and re-renders their regions. The two
// collections are fetched concurrently; a failure in one is logged and
// leaves its region as it was without affecting the other.
func (b *Board) Refresh(ctx context.Context) {
	var wg sync.WaitGroup
	for _, kind := range model.Kinds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.refreshKind(ctx, kind); err != nil {
				slog.Error("failed to fetch items", "kind", kind, "error", err)
			}
		}()
	}
	wg.Wait()
}

func (b *Board) refreshKind(ctx context.Context, kind model.Kind) error {
	records, err := b.store.Select(ctx, model.ActiveQuery(kind))
	if err != nil {
		return err
	}

	content, err := b.renderer.Render(kind, records)
	if err != nil {
		return err
	}

	b.regions[kind].Replace(content)
	return nil
}
