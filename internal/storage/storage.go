package storage

import (
	"context"
	"errors"

	"github.com/xaenox/comment-triage/internal/models"
)

// ErrNotFound is returned when a comment id does not exist.
var ErrNotFound = errors.New("comment not found")

// Storage persists comments together with their analyses and responses.
type Storage interface {
	// ListComments returns every comment joined with its optional analysis
	// and response, ordered by id. It returns an empty slice when there are none.
	ListComments(ctx context.Context) ([]models.CommentView, error)
	GetComment(ctx context.Context, id int64) (*models.CommentView, error)

	// SaveAnalysis replaces any existing analysis of the comment.
	SaveAnalysis(ctx context.Context, commentID int64, result models.AnalysisResult) error
	// SaveAction updates the status and, when responseText is not empty,
	// replaces the response. Both changes commit together or not at all.
	SaveAction(ctx context.Context, commentID int64, status models.Status, responseText string) error
	SaveTranslation(ctx context.Context, commentID int64, translatedText string) error

	// ResetDemo drops all analyses and responses and returns every comment
	// to the unreviewed state without a translation.
	ResetDemo(ctx context.Context) error

	CountComments(ctx context.Context) (int, error)
	InsertComments(ctx context.Context, texts []string) error

	Close() error
}
