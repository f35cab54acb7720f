package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xaenox/comment-triage/internal/models"
)

const (
	defaultResponseType = models.ResponseCustom
	defaultLanguage     = "English"
)

type analyzeRequest struct {
	ID int64 `json:"id"`
}

type generateResponseRequest struct {
	ID       int64               `json:"id"`
	Type     models.ResponseType `json:"type"`
	Language string              `json:"language"`
}

type generateResponseResponse struct {
	Response string `json:"response"`
}

type submitActionRequest struct {
	ID       int64         `json:"id"`
	Status   models.Status `json:"status"`
	Response string        `json:"response"`
}

type translateRequest struct {
	ID int64 `json:"id"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListComments(c echo.Context) error {
	return s.respondWithComments(c)
}

// handleAnalyze analyses one comment, or every comment when no id is given,
// and saves each returned analysis on its own.
func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	var inputs []models.CommentInput
	if req.ID != 0 {
		comment, err := s.store.GetComment(ctx, req.ID)
		if err != nil {
			return err
		}
		inputs = append(inputs, models.CommentInput{ID: comment.ID, Text: comment.Text})
	} else {
		comments, err := s.store.ListComments(ctx)
		if err != nil {
			return err
		}
		for _, comment := range comments {
			inputs = append(inputs, models.CommentInput{ID: comment.ID, Text: comment.Text})
		}
	}

	if len(inputs) > 0 {
		results, err := s.gateway.Analyze(ctx, inputs)
		if err != nil {
			return err
		}
		if err := s.saveAnalyses(ctx, inputs, results); err != nil {
			return err
		}
	}

	return s.respondWithComments(c)
}

func (s *Server) saveAnalyses(ctx context.Context, inputs []models.CommentInput, results map[string]models.AnalysisResult) error {
	requested := make(map[int64]models.CommentInput, len(inputs))
	for _, input := range inputs {
		requested[input.ID] = input
	}

	keys := make([]string, 0, len(results))
	for key := range results {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		id, err := strconv.ParseInt(key, 10, 64)
		input, ok := requested[id]
		if err != nil || !ok {
			s.logger.Warn("Ignoring analysis for unrequested comment", zap.String("comment_id", key))
			continue
		}

		result := results[key]
		if err := s.store.SaveAnalysis(ctx, id, result); err != nil {
			return err
		}
		s.metrics.AnalysisSaved()

		if result.Flagged() {
			err := s.notifier.NotifyFlagged(ctx, input, result)
			s.metrics.AlertSent(err)
			if err != nil {
				s.logger.Warn("Failed to notify about flagged comment",
					zap.Int64("comment_id", id),
					zap.Error(err))
			}
		}
	}

	return nil
}

func (s *Server) handleReset(c echo.Context) error {
	if err := s.store.ResetDemo(c.Request().Context()); err != nil {
		return err
	}
	s.logger.Info("Demo data reset")
	return s.respondWithComments(c)
}

func (s *Server) handleGenerateResponse(c echo.Context) error {
	var req generateResponseRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if req.ID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing comment ID")
	}
	if req.Type == "" {
		req.Type = defaultResponseType
	}
	if !req.Type.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid response type")
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}

	ctx := c.Request().Context()
	comment, err := s.store.GetComment(ctx, req.ID)
	if err != nil {
		return err
	}

	drafted, err := s.gateway.DraftResponse(ctx, comment, req.Type, req.Language)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, generateResponseResponse{Response: drafted.ResponseText})
}

func (s *Server) handleSubmitAction(c echo.Context) error {
	var req submitActionRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if req.ID == 0 || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}
	if !req.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	}

	if err := s.store.SaveAction(c.Request().Context(), req.ID, req.Status, req.Response); err != nil {
		return err
	}

	return s.respondWithComments(c)
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if req.ID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing comment ID")
	}

	ctx := c.Request().Context()
	comment, err := s.store.GetComment(ctx, req.ID)
	if err != nil {
		return err
	}

	translation, err := s.gateway.Translate(ctx, comment.Text, "")
	if err != nil {
		return err
	}
	if err := s.store.SaveTranslation(ctx, req.ID, translation.TranslatedText); err != nil {
		return err
	}

	return s.respondWithComments(c)
}

func (s *Server) respondWithComments(c echo.Context) error {
	comments, err := s.store.ListComments(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}
