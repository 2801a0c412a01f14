// Package source implements the RSSSource struct and its methods for fetching and normalizing RSS feed items.
package source

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	readability "github.com/go-shiori/go-readability"
	"github.com/samber/lo"

	"github.com/erickiiim/newsroom/internal/model"
)

const (
	unknownSource = "Unknown Source"
	noTitle       = "No Title"
	emptyLink     = "#"
)

// contextTransport injects a context into every outgoing request so that
// context cancellation and deadlines propagate through the rss library.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

type RSSSource struct {
	URL        string
	MaxEntries int
	Timeout    time.Duration
}

func NewRSSSource(url string, maxEntries int, timeout time.Duration) RSSSource {
	return RSSSource{
		URL:        url,
		MaxEntries: maxEntries,
		Timeout:    timeout,
	}
}

// Fetch loads the feed and returns its most recent entries, capped at
// MaxEntries, in document order. Missing fields never fail an entry; they
// fall back to "No Title" / "#" / empty string.
func (s RSSSource) Fetch(ctx context.Context) ([]model.Item, error) {
	feed, err := s.loadFeed(ctx, s.URL)
	if err != nil {
		return nil, err
	}

	sourceName := strings.TrimSpace(feed.Title)
	if sourceName == "" {
		sourceName = unknownSource
	}

	items := feed.Items
	if s.MaxEntries > 0 && len(items) > s.MaxEntries {
		items = items[:s.MaxEntries]
	}

	return lo.Map(items, func(item *rss.Item, _ int) model.Item {
		return model.Item{
			Title:      itemTitle(item),
			Link:       itemLink(item),
			Published:  itemPublished(item),
			Summary:    itemText(item),
			SourceName: sourceName,
		}
	}), nil
}

func itemTitle(item *rss.Item) string {
	if t := strings.TrimSpace(item.Title); t != "" {
		return t
	}
	return noTitle
}

func itemLink(item *rss.Item) string {
	if l := strings.TrimSpace(item.Link); l != "" {
		return l
	}
	return emptyLink
}

func itemPublished(item *rss.Item) string {
	if !item.DateValid || item.Date.IsZero() {
		return ""
	}
	return item.Date.Format(time.RFC1123Z)
}

// itemText returns the richest available text for an item, preferring the
// full Content over the short Summary. Feed bodies are HTML fragments; they
// are reduced to plain text so the prompt carries readable sentences
// instead of markup.
func itemText(item *rss.Item) string {
	text := strings.TrimSpace(item.Content)
	if text == "" {
		text = strings.TrimSpace(item.Summary)
	}
	if text == "" {
		return ""
	}
	return extractText(text)
}

func extractText(html string) string {
	doc, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return html
	}
	if t := strings.TrimSpace(doc.TextContent); t != "" {
		return t
	}
	return html
}

func (s RSSSource) loadFeed(ctx context.Context, url string) (*rss.Feed, error) {
	client := &http.Client{
		Transport: contextTransport{ctx: ctx, base: http.DefaultTransport},
		Timeout:   s.Timeout,
	}
	return rss.FetchByClient(url, client)
}
