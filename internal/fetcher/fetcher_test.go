package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickiiim/newsroom/internal/model"
)

type fakeSource struct {
	items []model.Item
	err   error
}

func (s fakeSource) Fetch(context.Context) ([]model.Item, error) {
	return s.items, s.err
}

func withFakeSources(f *Fetcher, sources map[string]Source) {
	f.newSource = func(url string) Source {
		return sources[url]
	}
}

func TestFetchPreservesFeedOrder(t *testing.T) {
	f := New(5, time.Second)
	withFakeSources(f, map[string]Source{
		"a": fakeSource{items: []model.Item{{Title: "a1"}, {Title: "a2"}}},
		"b": fakeSource{items: []model.Item{{Title: "b1"}}},
		"c": fakeSource{items: []model.Item{{Title: "c1"}, {Title: "c2"}}},
	})

	items := f.Fetch(context.Background(), []string{"a", "b", "c"})

	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"a1", "a2", "b1", "c1", "c2"}, titles,
		"feed order, then entry order within feed, no cross-feed interleaving")
}

func TestFetchIsolatesFailingFeed(t *testing.T) {
	f := New(5, time.Second)
	withFakeSources(f, map[string]Source{
		"good": fakeSource{items: []model.Item{{Title: "ok"}}},
		"bad":  fakeSource{err: errors.New("connection refused")},
	})

	items := f.Fetch(context.Background(), []string{"bad", "good"})

	require.Len(t, items, 1)
	assert.Equal(t, "ok", items[0].Title)
}

func TestFetchNoFeeds(t *testing.T) {
	f := New(5, time.Second)
	assert.Empty(t, f.Fetch(context.Background(), nil))
}

func rssDocument(feedTitle string, entries int) string {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>` + feedTitle + `</title>
<link>http://example.com</link>
<description>test feed</description>
`
	for i := 1; i <= entries; i++ {
		doc += fmt.Sprintf(`<item>
<title>Item %d</title>
<link>http://example.com/%d</link>
<description>Summary %d</description>
<pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
</item>
`, i, i, i)
	}
	return doc + "</channel></rss>"
}

// End-to-end over HTTP: a malformed feed in the batch is skipped and the
// valid one still contributes items.
func TestFetchOverHTTP(t *testing.T) {
	valid := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssDocument("Example News", 7))
	}))
	defer valid.Close()

	malformed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not a feed</html>")
	}))
	defer malformed.Close()

	f := New(5, 5*time.Second)
	items := f.Fetch(context.Background(), []string{valid.URL, malformed.URL})

	require.Len(t, items, 5, "entries are capped per feed and the malformed feed contributes zero")
	for _, item := range items {
		assert.Equal(t, "Example News", item.SourceName)
		assert.NotEmpty(t, item.Title)
		assert.NotEmpty(t, item.Link)
	}
	assert.Equal(t, "Item 1", items[0].Title)
}
