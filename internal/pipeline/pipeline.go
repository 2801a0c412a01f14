// Package pipeline composes fetch, summarize, validate and persist into
// the per-category "run analysis" flow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/samber/lo"

	"github.com/erickiiim/newsroom/internal/digest"
	"github.com/erickiiim/newsroom/internal/model"
	"github.com/erickiiim/newsroom/internal/storage"
)

type FeedProvider interface {
	List(ctx context.Context, category model.Category) ([]model.FeedSource, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, urls []string) []model.Item
}

type Summarizer interface {
	Summarize(ctx context.Context, items []model.Item, category model.Category) string
}

type ArchiveStore interface {
	Get(ctx context.Context, date string, category model.Category) (*model.ArchiveRecord, error)
	Upsert(ctx context.Context, date string, category model.Category, content string) error
}

// Result is the outcome of one category's run, suitable for logging and
// alerting.
type Result struct {
	Category model.Category
	Outcome  model.Outcome
	Err      error
}

type Pipeline struct {
	feeds      FeedProvider
	fetcher    Fetcher
	summarizer Summarizer
	archive    ArchiveStore

	now func() time.Time
}

func New(feeds FeedProvider, fetcher Fetcher, summarizer Summarizer, archive ArchiveStore) *Pipeline {
	return &Pipeline{
		feeds:      feeds,
		fetcher:    fetcher,
		summarizer: summarizer,
		archive:    archive,
		now:        time.Now,
	}
}

// Run executes the pipeline for one category, keyed to today's date.
// Re-running for a (date, category) that is already archived is a no-op:
// no feeds are fetched and no model is called.
func (p *Pipeline) Run(ctx context.Context, category model.Category) Result {
	date := p.now().Format("2006-01-02")

	existing, err := p.archive.Get(ctx, date, category)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return Result{Category: category, Outcome: model.OutcomeFailed, Err: fmt.Errorf("check archive: %w", err)}
	}
	if existing != nil {
		log.Printf("[INFO] %s archive for %s already exists, skipping", category, date)
		return Result{Category: category, Outcome: model.OutcomeSkipped}
	}

	sources, err := p.feeds.List(ctx, category)
	if err != nil {
		return Result{Category: category, Outcome: model.OutcomeFailed, Err: fmt.Errorf("list feeds: %w", err)}
	}
	if len(sources) == 0 {
		log.Printf("[INFO] no feeds configured for %s", category)
		return Result{Category: category, Outcome: model.OutcomeNoFeeds}
	}

	urls := lo.Map(sources, func(s model.FeedSource, _ int) string { return s.URL })

	log.Printf("[INFO] fetching %d feeds for %s", len(urls), category)
	items := p.fetcher.Fetch(ctx, urls)
	if len(items) == 0 {
		log.Printf("[INFO] no news items fetched for %s", category)
		return Result{Category: category, Outcome: model.OutcomeNoNews}
	}

	log.Printf("[INFO] summarizing %d items for %s", len(items), category)
	raw := p.summarizer.Summarize(ctx, items, category)

	if d, parseErr := digest.Parse(raw); parseErr == nil {
		if digest.IsSentinel(d) {
			return Result{
				Category: category,
				Outcome:  model.OutcomeFailed,
				Err:      fmt.Errorf("all models failed: %s", d.Trends),
			}
		}
	} else {
		// Legacy-format output: archive it verbatim, the display layer
		// degrades to raw text.
		log.Printf("[ERROR] summarizer output for %s is not valid JSON, archiving as-is: %v", category, parseErr)
	}

	if err := p.archive.Upsert(ctx, date, category, raw); err != nil {
		return Result{Category: category, Outcome: model.OutcomeFailed, Err: fmt.Errorf("save archive: %w", err)}
	}

	log.Printf("[INFO] saved %s analysis for %s", category, date)
	return Result{Category: category, Outcome: model.OutcomeSaved}
}

// RunAll processes every category sequentially. A failure in one category,
// including a panic, never prevents the remaining categories from running.
func (p *Pipeline) RunAll(ctx context.Context) []Result {
	results := make([]Result, 0, len(model.Categories()))

	for _, category := range model.Categories() {
		result := p.runIsolated(ctx, category)
		if result.Err != nil {
			log.Printf("[ERROR] %s pipeline failed: %v", category, result.Err)
		}
		results = append(results, result)
	}

	return results
}

func (p *Pipeline) runIsolated(ctx context.Context, category model.Category) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				Category: category,
				Outcome:  model.OutcomeFailed,
				Err:      fmt.Errorf("panic: %v", r),
			}
		}
	}()

	return p.Run(ctx, category)
}
