package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erickiiim/newsroom/internal/model"
)

type StatsStorage struct {
	db *sqlx.DB
}

func NewStatsStorage(db *sqlx.DB) *StatsStorage {
	return &StatsStorage{db: db}
}

// IncrementViews bumps today's counter in a single conflict-resolving
// statement, so concurrent page views never lose an increment.
func (s *StatsStorage) IncrementViews(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO view_stats (day, views) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET views = view_stats.views + 1`,
		time.Now().Format("2006-01-02"),
	)
	return err
}

func (s *StatsStorage) Get(ctx context.Context) (model.ViewStats, error) {
	type dbRow struct {
		Day   time.Time `db:"day"`
		Views int64     `db:"views"`
	}

	var rows []dbRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT day, views FROM view_stats ORDER BY day`,
	); err != nil {
		return model.ViewStats{}, err
	}

	stats := model.ViewStats{DailyViews: make(map[string]int64, len(rows))}
	for _, row := range rows {
		stats.DailyViews[row.Day.Format("2006-01-02")] = row.Views
		stats.TotalViews += row.Views
	}
	return stats, nil
}
