package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/erickiiim/newsroom/internal/model"
)

type CommentStorage struct {
	db *sqlx.DB
}

func NewCommentStorage(db *sqlx.DB) *CommentStorage {
	return &CommentStorage{db: db}
}

type dbComment struct {
	ID        int64     `db:"id"`
	PageID    string    `db:"page_id"`
	Nickname  string    `db:"nickname"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// List returns the comments for one page, oldest first. Passwords are
// never read back.
func (s *CommentStorage) List(ctx context.Context, pageID string) ([]model.Comment, error) {
	var rows []dbComment
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, page_id, nickname, content, created_at
		FROM comments WHERE page_id = $1 ORDER BY id`,
		pageID,
	); err != nil {
		return nil, err
	}

	return lo.Map(rows, func(row dbComment, _ int) model.Comment {
		return model.Comment{
			ID:        row.ID,
			PageID:    row.PageID,
			Nickname:  row.Nickname,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		}
	}), nil
}

func (s *CommentStorage) Add(ctx context.Context, c model.Comment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (page_id, nickname, password, content) VALUES ($1, $2, $3, $4)`,
		c.PageID, c.Nickname, c.Password, c.Content,
	)
	return err
}

// Delete removes a comment when password matches. Returns false on a
// wrong password or unknown id.
func (s *CommentStorage) Delete(ctx context.Context, id int64, password string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1 AND password = $2`,
		id, password,
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
