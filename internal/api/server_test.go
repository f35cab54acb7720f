package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/comment-triage/internal/classifier"
	"github.com/xaenox/comment-triage/internal/metrics"
	"github.com/xaenox/comment-triage/internal/models"
	"github.com/xaenox/comment-triage/internal/storage"
)

type fakeGateway struct {
	mu sync.Mutex

	analyzeCalls   int
	translateCalls int
	draftCalls     int

	analyzed  []models.CommentInput
	draftType models.ResponseType
	draftLang string

	analyzeFn func(comments []models.CommentInput) (map[string]models.AnalysisResult, error)
	err       error
}

func (f *fakeGateway) Analyze(_ context.Context, comments []models.CommentInput) (map[string]models.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzeCalls++
	f.analyzed = comments
	if f.err != nil {
		return nil, f.err
	}
	if f.analyzeFn != nil {
		return f.analyzeFn(comments)
	}
	return map[string]models.AnalysisResult{}, nil
}

func (f *fakeGateway) Translate(_ context.Context, text, _ string) (*classifier.Translation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.translateCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &classifier.Translation{SourceLanguage: "de", TranslatedText: "EN: " + text}, nil
}

func (f *fakeGateway) DraftResponse(_ context.Context, comment *models.CommentView, responseType models.ResponseType, language string) (*classifier.DraftedResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draftCalls++
	f.draftType = responseType
	f.draftLang = language
	if f.err != nil {
		return nil, f.err
	}
	return &classifier.DraftedResponse{ResponseText: "Thank you for comment " + comment.Text}, nil
}

func (f *fakeGateway) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analyzeCalls + f.translateCalls + f.draftCalls
}

type fakeNotifier struct {
	notified []int64
	err      error
}

func (f *fakeNotifier) NotifyFlagged(_ context.Context, comment models.CommentInput, _ models.AnalysisResult) error {
	f.notified = append(f.notified, comment.ID)
	return f.err
}

type testEnv struct {
	server   *Server
	store    storage.Storage
	gateway  *fakeGateway
	notifier *fakeNotifier
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := storage.NewMemoryStorage()
	_, err := storage.Seed(context.Background(), store, zap.NewNop())
	require.NoError(t, err)

	env := &testEnv{
		store:    store,
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
		metrics:  metrics.New(),
	}
	env.server = NewServer(Config{AllowedOrigins: []string{"*"}}, store, env.gateway, env.notifier, zap.NewNop(), env.metrics)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	return list
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func findComment(t *testing.T, list []map[string]any, id int64) map[string]any {
	t.Helper()

	for _, c := range list {
		if int64(c["id"].(float64)) == id {
			return c
		}
	}
	t.Fatalf("comment %d not in list", id)
	return nil
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestListComments(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeList(t, rec)
	require.Len(t, list, 18)

	first := list[0]
	for _, field := range []string{
		"id", "text", "status", "translated_text", "detected_language", "topic", "sentiment",
		"urgency", "requires_response", "inappropriate_content", "explanation", "response_text",
	} {
		assert.Contains(t, first, field)
	}
	assert.Equal(t, "unreviewed", first["status"])
	assert.Nil(t, first["topic"])
	assert.Nil(t, first["response_text"])
}

func TestUnmatchedRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeError(t, rec))

	rec = env.do(t, http.MethodGet, "/api/analyze", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeError(t, rec))
}

func TestAnalyzeSingleComment(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.analyzeFn = func(comments []models.CommentInput) (map[string]models.AnalysisResult, error) {
		return map[string]models.AnalysisResult{
			"10": {
				DetectedLanguage:     "en",
				Topic:                string(models.TopicSuggestion),
				Sentiment:            "Neutral",
				Urgency:              "Low",
				RequiresResponse:     "Maybe",
				InappropriateContent: "None",
				Explanation:          json.RawMessage(`"Asks for a dark theme."`),
			},
			"2": {Topic: "Praise"},
		}, nil
	}

	rec := env.do(t, http.MethodPost, "/api/analyze", `{"id": 10}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, env.gateway.analyzed, 1)
	assert.Equal(t, int64(10), env.gateway.analyzed[0].ID)
	assert.Contains(t, env.gateway.analyzed[0].Text, "dark mode")

	list := decodeList(t, rec)
	comment := findComment(t, list, 10)
	assert.Equal(t, "Suggestion", comment["topic"])
	assert.Equal(t, `"Asks for a dark theme."`, comment["explanation"])

	// Only the requested comment is written.
	assert.Nil(t, findComment(t, list, 2)["topic"])
	assert.Empty(t, env.notifier.notified)
}

func TestAnalyzeAllComments(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.analyzeFn = func(comments []models.CommentInput) (map[string]models.AnalysisResult, error) {
		results := make(map[string]models.AnalysisResult)
		for _, c := range comments {
			results[strconv.FormatInt(c.ID, 10)] = models.AnalysisResult{Topic: "Other"}
		}
		return results, nil
	}

	rec := env.do(t, http.MethodPost, "/api/analyze", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.gateway.analyzed, 18)

	for _, c := range decodeList(t, rec) {
		assert.Equal(t, "Other", c["topic"])
		assert.Equal(t, "Unknown", c["urgency"])
		assert.Equal(t, "None", c["inappropriate_content"])
	}
}

func TestAnalyzeNotifiesFlaggedComments(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("telegram down")
	env.gateway.analyzeFn = func([]models.CommentInput) (map[string]models.AnalysisResult, error) {
		return map[string]models.AnalysisResult{
			"11": {Topic: "Service Complaint", Urgency: "Medium", InappropriateContent: "Personal Attack"},
		}, nil
	}

	rec := env.do(t, http.MethodPost, "/api/analyze", `{"id": 11}`)
	require.Equal(t, http.StatusOK, rec.Code, "notifier failures do not fail the request")
	assert.Equal(t, []int64{11}, env.notifier.notified)
}

func TestAnalyzeUnknownIDDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)
	before := env.do(t, http.MethodGet, "/api/comments", "").Body.String()

	rec := env.do(t, http.MethodPost, "/api/analyze", `{"id": 999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Comment not found", decodeError(t, rec))
	assert.Zero(t, env.gateway.totalCalls())

	after := env.do(t, http.MethodGet, "/api/comments", "").Body.String()
	assert.JSONEq(t, before, after)
}

func TestAnalyzeGatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.err = &classifier.ParseError{Op: "analyze", Reason: "no JSON object found", Excerpt: "I cannot"}

	rec := env.do(t, http.MethodPost, "/api/analyze", `{"id": 1}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "I cannot")
}

func TestMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/analyze", `{"id": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))
	assert.Zero(t, env.gateway.totalCalls())
}

func TestReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.SaveAnalysis(ctx, 1, models.AnalysisResult{Topic: "Praise"}))
	require.NoError(t, env.store.SaveAction(ctx, 2, models.StatusPublished, "Thanks"))
	require.NoError(t, env.store.SaveTranslation(ctx, 3, "Export does not work"))

	rec := env.do(t, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeList(t, rec)
	require.Len(t, list, 18)
	for _, c := range list {
		assert.Equal(t, "unreviewed", c["status"])
		assert.Nil(t, c["translated_text"])
		assert.Nil(t, c["topic"])
		assert.Nil(t, c["response_text"])
	}
}

func TestGenerateResponse(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generate-response", `{"id": 7}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body generateResponseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body.Response, "Thank you for comment Great job"))
	assert.Equal(t, models.ResponseCustom, env.gateway.draftType)
	assert.Equal(t, "English", env.gateway.draftLang)

	rec = env.do(t, http.MethodPost, "/api/generate-response", `{"id": 7, "type": "Redirect", "language": "German"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ResponseRedirect, env.gateway.draftType)
	assert.Equal(t, "German", env.gateway.draftLang)
}

func TestGenerateResponseValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{name: "missing id", body: `{"type": "Custom"}`, code: http.StatusBadRequest, message: "Missing comment ID"},
		{name: "empty body", body: "", code: http.StatusBadRequest, message: "Missing comment ID"},
		{name: "invalid type", body: `{"id": 1, "type": "Apology"}`, code: http.StatusBadRequest, message: "Invalid response type"},
		{name: "unknown id", body: `{"id": 999}`, code: http.StatusNotFound, message: "Comment not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/api/generate-response", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
			assert.Zero(t, env.gateway.totalCalls())
		})
	}
}

func TestSubmitAction(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/submit-action", `{"id": 4, "status": "blocked", "response": "thanks"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	comment := findComment(t, decodeList(t, rec), 4)
	assert.Equal(t, "blocked", comment["status"])
	assert.Equal(t, "thanks", comment["response_text"])

	// A status-only action keeps the existing response.
	rec = env.do(t, http.MethodPost, "/api/submit-action", `{"id": 4, "status": "published"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	comment = findComment(t, decodeList(t, rec), 4)
	assert.Equal(t, "published", comment["status"])
	assert.Equal(t, "thanks", comment["response_text"])
}

func TestSubmitActionValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{name: "missing id", body: `{"status": "published"}`, code: http.StatusBadRequest, message: "Missing required fields"},
		{name: "missing status", body: `{"id": 1}`, code: http.StatusBadRequest, message: "Missing required fields"},
		{name: "invalid status", body: `{"id": 1, "status": "archived"}`, code: http.StatusBadRequest, message: "Invalid status"},
		{name: "unknown id", body: `{"id": 999, "status": "published"}`, code: http.StatusNotFound, message: "Comment not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/api/submit-action", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
		})
	}
}

func TestTranslate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/translate", `{"id": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	comment := findComment(t, decodeList(t, rec), 3)
	assert.Equal(t, "EN: Der Export funktioniert nicht, bitte beheben.", comment["translated_text"])
	assert.Equal(t, 1, env.gateway.translateCalls)
}

func TestTranslateValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/translate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing comment ID", decodeError(t, rec))

	rec = env.do(t, http.MethodPost, "/api/translate", `{"id": 999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Zero(t, env.gateway.totalCalls())
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/comments", "")

	rec := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `comment_triage_http_requests_total{method="GET",route="/api/comments",status="200"} 1`)
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "")
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
}
