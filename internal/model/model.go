// Package model defines the data structures shared across the newsroom
// pipeline: categories, feed sources, fetched news items, digests and
// archive records.
package model

import (
	"fmt"
	"time"
)

// Category is one of the configured news verticals.
type Category string

const (
	CategoryIT       Category = "IT"
	CategoryMVNO     Category = "MVNO"
	CategoryKStartup Category = "KSTARTUP"
)

// Categories returns all verticals in processing order.
func Categories() []Category {
	return []Category{CategoryIT, CategoryMVNO, CategoryKStartup}
}

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryIT, CategoryMVNO, CategoryKStartup:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type FeedSource struct {
	ID        int64
	Category  Category
	URL       string
	CreatedAt time.Time
}

// Item is a normalized feed entry. It lives only within one pipeline run
// and is never persisted standalone.
type Item struct {
	Title      string
	Link       string
	Published  string
	Summary    string
	SourceName string
}

// Digest is the three-field structured summary for one (date, category).
type Digest struct {
	Headline string `json:"headline"`
	Trends   string `json:"trends"`
	Insight  string `json:"insight"`
}

// ArchiveRecord is the persisted envelope. Content is opaque: usually a
// JSON-encoded Digest, but legacy records hold free text.
type ArchiveRecord struct {
	Date      string
	Category  Category
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Outcome is the per-category result of one pipeline invocation.
type Outcome string

const (
	OutcomeSaved   Outcome = "SAVED"
	OutcomeSkipped Outcome = "SKIPPED"
	OutcomeNoFeeds Outcome = "NO_FEEDS"
	OutcomeNoNews  Outcome = "NO_NEWS"
	OutcomeFailed  Outcome = "FAILED"
)

type Comment struct {
	ID        int64
	PageID    string
	Nickname  string
	Password  string
	Content   string
	CreatedAt time.Time
}

// ViewStats holds the site view counters consumed by the display layer.
type ViewStats struct {
	TotalViews int64
	DailyViews map[string]int64
}
