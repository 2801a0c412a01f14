package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/erickiiim/newsroom/internal/model"
)

type FeedStorage struct {
	db *sqlx.DB
}

func NewFeedStorage(db *sqlx.DB) *FeedStorage {
	return &FeedStorage{db: db}
}

type dbFeed struct {
	ID        int64     `db:"id"`
	Category  string    `db:"category"`
	URL       string    `db:"url"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *FeedStorage) List(ctx context.Context, category model.Category) ([]model.FeedSource, error) {
	var rows []dbFeed
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, category, url, created_at FROM feeds WHERE category = $1 ORDER BY id`,
		string(category),
	); err != nil {
		return nil, err
	}

	return lo.Map(rows, func(row dbFeed, _ int) model.FeedSource {
		return model.FeedSource{
			ID:        row.ID,
			Category:  model.Category(row.Category),
			URL:       row.URL,
			CreatedAt: row.CreatedAt,
		}
	}), nil
}

// Add subscribes category to url. Returns false when the pair already
// exists; (category, url) is unique at the storage layer.
func (s *FeedStorage) Add(ctx context.Context, category model.Category, url string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO feeds (category, url) VALUES ($1, $2) ON CONFLICT (category, url) DO NOTHING`,
		string(category), url,
	)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Remove unsubscribes category from url. Returns false when the pair was
// not subscribed.
func (s *FeedStorage) Remove(ctx context.Context, category model.Category, url string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM feeds WHERE category = $1 AND url = $2`,
		string(category), url,
	)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
