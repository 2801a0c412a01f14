package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erickiiim/newsroom/internal/model"
)

type ArchiveStorage struct {
	db *sqlx.DB
}

func NewArchiveStorage(db *sqlx.DB) *ArchiveStorage {
	return &ArchiveStorage{db: db}
}

type dbArchive struct {
	Date      time.Time `db:"archive_date"`
	Category  string    `db:"category"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Get returns the archive record for (date, category) or ErrNotFound.
// date is an ISO-8601 day, e.g. "2024-06-01".
func (s *ArchiveStorage) Get(ctx context.Context, date string, category model.Category) (*model.ArchiveRecord, error) {
	var row dbArchive
	err := s.db.GetContext(ctx, &row,
		`SELECT archive_date, category, content, created_at, updated_at
		FROM archives
		WHERE archive_date = $1 AND category = $2`,
		date, string(category),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &model.ArchiveRecord{
		Date:      row.Date.Format("2006-01-02"),
		Category:  model.Category(row.Category),
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Upsert stores content under (date, category), replacing any previous
// record for that key in one conflict-resolving statement. The previous
// content is unrecoverable afterwards.
func (s *ArchiveStorage) Upsert(ctx context.Context, date string, category model.Category, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archives (archive_date, category, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (archive_date, category)
		DO UPDATE SET content = EXCLUDED.content, updated_at = now()`,
		date, string(category), content,
	)
	return err
}
