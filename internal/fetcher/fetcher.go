package fetcher

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/erickiiim/newsroom/internal/model"
	"github.com/erickiiim/newsroom/internal/source"
)

// Source is a single feed that can be fetched independently.
type Source interface {
	Fetch(ctx context.Context) ([]model.Item, error)
}

type Fetcher struct {
	itemsPerFeed int
	feedTimeout  time.Duration

	// newSource is swappable in tests.
	newSource func(url string) Source
}

func New(itemsPerFeed int, feedTimeout time.Duration) *Fetcher {
	f := &Fetcher{
		itemsPerFeed: itemsPerFeed,
		feedTimeout:  feedTimeout,
	}
	f.newSource = func(url string) Source {
		return source.NewRSSSource(url, f.itemsPerFeed, f.feedTimeout)
	}
	return f
}

// Fetch retrieves every feed URL independently and returns the combined
// items in feed order, entry order within feed. A failing feed is logged
// and contributes zero items; it never aborts the batch.
func (f *Fetcher) Fetch(ctx context.Context, urls []string) []model.Item {
	perFeed := make([][]model.Item, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)

		go func(i int, url string) {
			defer wg.Done()

			items, err := f.newSource(url).Fetch(ctx)
			if err != nil {
				log.Printf("[ERROR] failed to fetch feed %s: %v", url, err)
				return
			}
			perFeed[i] = items
		}(i, url)
	}
	wg.Wait()

	var all []model.Item
	for _, items := range perFeed {
		all = append(all, items...)
	}
	return all
}
