package listing

import (
	"context"
	"html/template"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/erazemk/najdeno/internal/model"
)

func newTestBoard(t *testing.T, store Store) (*Board, *Pane, *Pane) {
	t.Helper()
	renderer, err := NewRenderer("")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	lost, found := NewPane(), NewPane()
	return NewBoard(store, renderer, lost, found), lost, found
}

func parsePane(t *testing.T, p *Pane) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(p.Content())))
	if err != nil {
		t.Fatalf("parsing pane: %v", err)
	}
	return doc
}

func TestRefreshScenario(t *testing.T) {
	store := newFakeStore()
	store.records[model.CollectionLost] = []model.Record{{
		Title:        "Wallet",
		Category:     "Accessories",
		Location:     "Library",
		DateLost:     strPtr("2024-01-05"),
		Description:  "Brown leather",
		ContactName:  "Ana",
		ContactEmail: "ana@x.com",
		Status:       model.StatusActive,
	}}

	board, lost, found := newTestBoard(t, store)
	board.Refresh(context.Background())

	doc := parsePane(t, lost)
	cards := doc.Find(".item-card")
	if cards.Length() != 1 {
		t.Fatalf("expected 1 lost card, got %d", cards.Length())
	}
	text := cards.Text()
	for _, want := range []string{"Wallet", "Accessories", "Library", "2024-01-05", "Brown leather", "Ana (ana@x.com)"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected card to contain %q, got %q", want, text)
		}
	}
	if got := strings.TrimSpace(cards.Find(".item-date").Text()); got != "Date Lost: 2024-01-05" {
		t.Errorf("expected lost date label, got %q", got)
	}

	fdoc := parsePane(t, found)
	if n := fdoc.Find(".item-card").Length(); n != 0 {
		t.Errorf("expected no found cards, got %d", n)
	}
	if got := strings.TrimSpace(fdoc.Find("p").Text()); got != "No found items yet." {
		t.Errorf("expected found placeholder, got %q", got)
	}
}

func TestRefreshQueriesActiveNewestFirst(t *testing.T) {
	store := newFakeStore()
	board, _, _ := newTestBoard(t, store)
	board.Refresh(context.Background())

	if len(store.queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(store.queries))
	}
	seen := map[string]bool{}
	for _, q := range store.queries {
		seen[q.Collection] = true
		kind, _ := model.KindFromCollection(q.Collection)
		want := model.ActiveQuery(kind)
		if q.OrderBy != want.OrderBy || q.Descending != want.Descending || len(q.Filters) != 1 || q.Filters[0] != want.Filters[0] {
			t.Errorf("unexpected query %+v", q)
		}
	}
	if !seen[model.CollectionLost] || !seen[model.CollectionFound] {
		t.Errorf("expected both collections queried, got %v", seen)
	}
}

func TestRefreshKeepsStoreOrder(t *testing.T) {
	store := newFakeStore()
	titles := []string{"Umbrella", "Keys", "Scarf", "Phone"}
	for _, title := range titles {
		store.records[model.CollectionFound] = append(store.records[model.CollectionFound], model.Record{
			Title:     title,
			DateFound: strPtr("2024-03-01"),
		})
	}

	board, _, found := newTestBoard(t, store)
	board.Refresh(context.Background())

	var got []string
	parsePane(t, found).Find(".item-card h3").Each(func(_ int, s *goquery.Selection) {
		got = append(got, s.Text())
	})
	if strings.Join(got, ",") != strings.Join(titles, ",") {
		t.Errorf("expected order %v, got %v", titles, got)
	}
}

func TestRefreshEmptyPlaceholders(t *testing.T) {
	board, lost, found := newTestBoard(t, newFakeStore())
	board.Refresh(context.Background())

	tests := []struct {
		pane *Pane
		want string
	}{
		{lost, "No lost items yet."},
		{found, "No found items yet."},
	}
	for _, tt := range tests {
		doc := parsePane(t, tt.pane)
		if n := doc.Find(".item-card").Length(); n != 0 {
			t.Errorf("expected 0 cards, got %d", n)
		}
		ps := doc.Find("p")
		if ps.Length() != 1 || strings.TrimSpace(ps.Text()) != tt.want {
			t.Errorf("expected single placeholder %q, got %d elements %q", tt.want, ps.Length(), ps.Text())
		}
	}
}

func TestRefreshPhotoPlaceholder(t *testing.T) {
	store := newFakeStore()
	store.records[model.CollectionLost] = []model.Record{
		{Title: "With photo", PhotoURL: strPtr("https://cdn.example.com/bag.jpg")},
		{Title: "Without photo"},
	}

	board, lost, _ := newTestBoard(t, store)
	board.Refresh(context.Background())

	imgs := parsePane(t, lost).Find("img.item-img")
	if imgs.Length() != 2 {
		t.Fatalf("expected 2 images, got %d", imgs.Length())
	}
	if src, _ := imgs.Eq(0).Attr("src"); src != "https://cdn.example.com/bag.jpg" {
		t.Errorf("expected photo url, got %q", src)
	}
	if src, _ := imgs.Eq(1).Attr("src"); src != DefaultPlaceholder {
		t.Errorf("expected placeholder, got %q", src)
	}
	if alt, _ := imgs.Eq(0).Attr("alt"); alt != "With photo" {
		t.Errorf("expected alt to be the title, got %q", alt)
	}
}

func TestRefreshFailureIsolated(t *testing.T) {
	store := newFakeStore()
	store.failSelect[model.CollectionLost] = true
	store.records[model.CollectionFound] = []model.Record{{Title: "Gloves", DateFound: strPtr("2024-01-10")}}

	board, lost, found := newTestBoard(t, store)
	lost.Replace(template.HTML("<p>previous</p>"))

	board.Refresh(context.Background())

	if got := lost.Content(); got != "<p>previous</p>" {
		t.Errorf("expected failed pane to keep its content, got %q", got)
	}
	if n := parsePane(t, found).Find(".item-card").Length(); n != 1 {
		t.Errorf("expected found pane to render 1 card, got %d", n)
	}
}

func TestRefreshReplacesContent(t *testing.T) {
	store := newFakeStore()
	store.records[model.CollectionLost] = []model.Record{{Title: "First"}}

	board, lost, _ := newTestBoard(t, store)
	board.Refresh(context.Background())
	store.records[model.CollectionLost] = nil
	board.Refresh(context.Background())

	doc := parsePane(t, lost)
	if n := doc.Find(".item-card").Length(); n != 0 {
		t.Errorf("expected previous cards to be replaced, got %d", n)
	}
	if !strings.Contains(doc.Text(), "No lost items yet.") {
		t.Errorf("expected placeholder after replace, got %q", doc.Text())
	}
}

func TestRenderEscapesContent(t *testing.T) {
	renderer, err := NewRenderer("/img/none.png")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	html, err := renderer.Render(model.KindFound, []model.Record{{Title: "<script>alert(1)</script>"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Errorf("expected title to be escaped, got %s", html)
	}
	if !strings.Contains(string(html), `src="/img/none.png"`) {
		t.Errorf("expected configured placeholder, got %s", html)
	}
	if !strings.Contains(string(html), "Date Found:") {
		t.Errorf("expected found date label, got %s", html)
	}
}
