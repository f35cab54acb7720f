package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/xaenox/comment-triage/internal/models"
)

// BunStorage keeps comments in a relational database through bun.
type BunStorage struct {
	db *bun.DB
}

func NewBunStorage(db *bun.DB) *BunStorage {
	return &BunStorage{db: db}
}

func (s *BunStorage) selectViews(views interface{}) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(views).
		ColumnExpr("c.id, c.text, c.status, c.translated_text").
		ColumnExpr("a.detected_language, a.topic, a.sentiment, a.urgency, a.requires_response, a.inappropriate_content").
		ColumnExpr("a.explanation_json AS explanation").
		ColumnExpr("r.text AS response_text").
		Join("LEFT JOIN analyses AS a ON a.comment_id = c.id").
		Join("LEFT JOIN responses AS r ON r.comment_id = c.id")
}

func (s *BunStorage) ListComments(ctx context.Context) ([]models.CommentView, error) {
	views := make([]models.CommentView, 0)
	if err := s.selectViews(&views).OrderExpr("c.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("error querying comments: %w", err)
	}
	return views, nil
}

func (s *BunStorage) GetComment(ctx context.Context, id int64) (*models.CommentView, error) {
	view := new(models.CommentView)
	err := s.selectViews(view).Where("c.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying comment %d: %w", id, err)
	}
	return view, nil
}

func (s *BunStorage) SaveAnalysis(ctx context.Context, commentID int64, result models.AnalysisResult) error {
	row := result.ToAnalysis(commentID)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Analysis)(nil)).
			Where("comment_id = ?", commentID).
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewInsert().Model(row).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("error saving analysis for comment %d: %w", commentID, err)
	}
	return nil
}

func (s *BunStorage) SaveAction(ctx context.Context, commentID int64, status models.Status, responseText string) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*models.Comment)(nil)).
			Set("status = ?", status).
			Where("id = ?", commentID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if err := requireAffected(result); err != nil {
			return err
		}

		if responseText == "" {
			return nil
		}

		if _, err := tx.NewDelete().
			Model((*models.Response)(nil)).
			Where("comment_id = ?", commentID).
			Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewInsert().
			Model(&models.Response{CommentID: commentID, Text: responseText}).
			Exec(ctx)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("error saving action for comment %d: %w", commentID, err)
	}
	return nil
}

func (s *BunStorage) SaveTranslation(ctx context.Context, commentID int64, translatedText string) error {
	result, err := s.db.NewUpdate().
		Model((*models.Comment)(nil)).
		Set("translated_text = ?", translatedText).
		Where("id = ?", commentID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("error saving translation for comment %d: %w", commentID, err)
	}
	return requireAffected(result)
}

func (s *BunStorage) ResetDemo(ctx context.Context) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.Analysis)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Response)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model((*models.Comment)(nil)).
			Set("status = ?", models.StatusUnreviewed).
			Set("translated_text = NULL").
			Where("1 = 1").
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("error resetting demo data: %w", err)
	}
	return nil
}

func (s *BunStorage) CountComments(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*models.Comment)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("error counting comments: %w", err)
	}
	return count, nil
}

func (s *BunStorage) InsertComments(ctx context.Context, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	comments := make([]*models.Comment, len(texts))
	for i, text := range texts {
		comments[i] = &models.Comment{Text: text, Status: models.StatusUnreviewed}
	}

	if _, err := s.db.NewInsert().Model(&comments).Exec(ctx); err != nil {
		return fmt.Errorf("error inserting comments: %w", err)
	}
	return nil
}

func (s *BunStorage) Close() error {
	return s.db.Close()
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
