package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/xaenox/comment-triage/internal/models"
)

// MemoryStorage keeps everything in process memory. Data is lost on Close.
type MemoryStorage struct {
	mu        sync.RWMutex
	nextID    int64
	comments  map[int64]*models.Comment
	analyses  map[int64]*models.Analysis
	responses map[int64]*models.Response
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		nextID:    1,
		comments:  make(map[int64]*models.Comment),
		analyses:  make(map[int64]*models.Analysis),
		responses: make(map[int64]*models.Response),
	}
}

func (s *MemoryStorage) ListComments(ctx context.Context) ([]models.CommentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]models.CommentView, 0, len(s.comments))
	for id := range s.comments {
		views = append(views, s.view(id))
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].ID < views[j].ID
	})
	return views, nil
}

func (s *MemoryStorage) GetComment(ctx context.Context, id int64) (*models.CommentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.comments[id]; !exists {
		return nil, ErrNotFound
	}
	view := s.view(id)
	return &view, nil
}

func (s *MemoryStorage) SaveAnalysis(ctx context.Context, commentID int64, result models.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.comments[commentID]; !exists {
		return ErrNotFound
	}
	s.analyses[commentID] = result.ToAnalysis(commentID)
	return nil
}

func (s *MemoryStorage) SaveAction(ctx context.Context, commentID int64, status models.Status, responseText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, exists := s.comments[commentID]
	if !exists {
		return ErrNotFound
	}

	comment.Status = status
	if responseText != "" {
		s.responses[commentID] = &models.Response{CommentID: commentID, Text: responseText}
	}
	return nil
}

func (s *MemoryStorage) SaveTranslation(ctx context.Context, commentID int64, translatedText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, exists := s.comments[commentID]
	if !exists {
		return ErrNotFound
	}
	comment.TranslatedText = &translatedText
	return nil
}

func (s *MemoryStorage) ResetDemo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analyses = make(map[int64]*models.Analysis)
	s.responses = make(map[int64]*models.Response)
	for _, comment := range s.comments {
		comment.Status = models.StatusUnreviewed
		comment.TranslatedText = nil
	}
	return nil
}

func (s *MemoryStorage) CountComments(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.comments), nil
}

func (s *MemoryStorage) InsertComments(ctx context.Context, texts []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, text := range texts {
		s.comments[s.nextID] = &models.Comment{
			ID:     s.nextID,
			Text:   text,
			Status: models.StatusUnreviewed,
		}
		s.nextID++
	}
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

// view builds the joined record for id. Callers must hold the lock.
func (s *MemoryStorage) view(id int64) models.CommentView {
	comment := s.comments[id]
	view := models.CommentView{
		ID:     comment.ID,
		Text:   comment.Text,
		Status: comment.Status,
	}
	if comment.TranslatedText != nil {
		translated := *comment.TranslatedText
		view.TranslatedText = &translated
	}

	if a, ok := s.analyses[id]; ok {
		view.DetectedLanguage = stringPtr(a.DetectedLanguage)
		view.Topic = stringPtr(a.Topic)
		view.Sentiment = stringPtr(a.Sentiment)
		view.Urgency = stringPtr(a.Urgency)
		view.RequiresResponse = stringPtr(a.RequiresResponse)
		view.InappropriateContent = stringPtr(a.InappropriateContent)
		view.Explanation = stringPtr(a.ExplanationJSON)
	}

	if r, ok := s.responses[id]; ok {
		view.ResponseText = stringPtr(r.Text)
	}

	return view
}

func stringPtr(s string) *string {
	return &s
}
