package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/xaenox/comment-triage/internal/metrics"
	"github.com/xaenox/comment-triage/internal/models"
)

const (
	analysisTemperature    = 0.1 // low for consistent analysis
	responseTemperature    = 0.7 // higher for natural-sounding replies
	translationTemperature = 0.2

	opAnalyze   = "analyze"
	opTranslate = "translate"
	opDraft     = "draft_response"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	TranslateTo string
}

// Translation is the decoded answer of a translation request.
type Translation struct {
	SourceLanguage string `json:"source_language"`
	TranslatedText string `json:"translated_text"`
}

// DraftedResponse is the decoded answer of a response-drafting request.
type DraftedResponse struct {
	ResponseText      string `json:"response_text"`
	ToneUsed          string `json:"tone_used"`
	FollowUpSuggested string `json:"follow_up_suggested"`
}

// Gateway turns triage requests into schema-constrained chat completions
// against an OpenAI-compatible endpoint such as Ollama.
type Gateway struct {
	client      *openai.Client
	model       string
	translateTo string
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

type Option func(*gatewayOptions)

type gatewayOptions struct {
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// WithHTTPClient replaces the HTTP client. Its timeout bounds every call.
func WithHTTPClient(client *http.Client) Option {
	return func(o *gatewayOptions) {
		o.httpClient = client
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *gatewayOptions) {
		o.metrics = m
	}
}

func NewGateway(cfg Config, logger *zap.Logger, opts ...Option) *Gateway {
	options := gatewayOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.httpClient == nil {
		options.httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = options.httpClient

	translateTo := cfg.TranslateTo
	if translateTo == "" {
		translateTo = "German"
	}

	return &Gateway{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		translateTo: translateTo,
		logger:      logger,
		metrics:     options.metrics,
	}
}

// Analyze classifies comments in one call. The result is keyed by comment id;
// entries the LLM returned in an unusable shape are logged and left out.
func (g *Gateway) Analyze(ctx context.Context, comments []models.CommentInput) (map[string]models.AnalysisResult, error) {
	prompt, err := buildAnalysisPrompt(comments)
	if err != nil {
		return nil, err
	}

	content, err := g.complete(ctx, opAnalyze, analysisSystemPrompt, prompt, AnalysisSchema, analysisTemperature)
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(opAnalyze, content)
	if err != nil {
		return nil, err
	}

	results := make(map[string]models.AnalysisResult, len(obj))
	for id, entry := range obj {
		var result models.AnalysisResult
		if err := json.Unmarshal(entry, &result); err != nil {
			g.logger.Warn("Skipping malformed analysis entry",
				zap.String("comment_id", id),
				zap.Error(err))
			continue
		}
		results[id] = result
	}

	return results, nil
}

// Translate translates text into targetLanguage, or into the configured
// default language when targetLanguage is empty.
func (g *Gateway) Translate(ctx context.Context, text, targetLanguage string) (*Translation, error) {
	if targetLanguage == "" {
		targetLanguage = g.translateTo
	}

	content, err := g.complete(ctx, opTranslate, translationSystemPrompt,
		buildTranslationPrompt(text, targetLanguage), TranslationSchema, translationTemperature)
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(opTranslate, content)
	if err != nil {
		return nil, err
	}

	translation := &Translation{
		SourceLanguage: stringField(obj, "source_language"),
		TranslatedText: stringField(obj, "translated_text"),
	}
	if translation.TranslatedText == "" {
		return nil, &ParseError{Op: opTranslate, Reason: "missing translated_text", Excerpt: excerpt(content)}
	}

	return translation, nil
}

// DraftResponse drafts a reply to comment for staff to review. Prior analysis
// fields are included in the prompt when the comment has been analysed.
func (g *Gateway) DraftResponse(ctx context.Context, comment *models.CommentView, responseType models.ResponseType, language string) (*DraftedResponse, error) {
	content, err := g.complete(ctx, opDraft, responseSystemPrompt,
		buildResponsePrompt(comment, responseType, language), ResponseSchema, responseTemperature)
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(opDraft, content)
	if err != nil {
		return nil, err
	}

	drafted := &DraftedResponse{
		ResponseText:      stringField(obj, "response_text"),
		ToneUsed:          stringField(obj, "tone_used"),
		FollowUpSuggested: stringField(obj, "follow_up_suggested"),
	}
	if drafted.ResponseText == "" {
		return nil, &ParseError{Op: opDraft, Reason: "missing response_text", Excerpt: excerpt(content)}
	}

	return drafted, nil
}

// complete performs a single chat completion and returns the raw message content.
func (g *Gateway) complete(ctx context.Context, op, system, user string, schema *jsonschema.Definition, temperature float32) (string, error) {
	requestID := uuid.NewString()
	logger := g.logger.With(zap.String("llm_request_id", requestID), zap.String("operation", op))

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "comment_" + op,
				Schema: schema,
			},
		},
	})
	if err == nil && len(resp.Choices) == 0 {
		err = errors.New("response contained no choices")
	}
	g.metrics.ObserveLLMCall(op, time.Since(start), err)

	if err != nil {
		logger.Error("LLM call failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return "", &UpstreamError{Op: op, Err: err}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	logger.Debug("LLM call completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return content, nil
}
