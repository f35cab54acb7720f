package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xaenox/comment-triage/internal/models"
)

const analysisSystemPrompt = `You analyze user feedback for a public institution. Detect the language first, then analyze content IN THAT LANGUAGE for inappropriate content.

Topics: Service Complaint, Information Request, Praise, Policy Feedback, Accessibility Issue, Technical Problem, Suggestion, Other
Urgency: High (safety/legal/vulnerable), Medium (needs follow-up), Low (general)`

const responseSystemPrompt = `Draft professional, empathetic responses for a public institution. Be warm but formal. Staff will review before sending.`

const translationSystemPrompt = `Translate accurately, preserving tone. If content is inappropriate, translate literally.`

func buildAnalysisPrompt(comments []models.CommentInput) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(comments); err != nil {
		return "", fmt.Errorf("failed to encode comments: %w", err)
	}

	return fmt.Sprintf(`Analyze the following user feedback comments. Each comment has an ID and text.
Return one JSON object whose keys are the comment IDs.

For each comment, provide:
- detected_language: ISO 639-1 code (e.g., "en", "de", "hr", "tr", "sr")
- topic: Category from the allowed list
- sentiment: Positive, Negative, or Neutral
- urgency: High, Medium, or Low
- requires_response: Whether this comment warrants a reply
- inappropriate_content: Type of problematic content, or "None"
- explanation: Brief reasoning for your assessment (2-3 sentences)

IMPORTANT: Detect inappropriate content in ANY language, not just English. Analyze the text in its original language before categorizing.

Comments to analyze:
%s`, strings.TrimRight(buf.String(), "\n")), nil
}

func buildResponsePrompt(comment *models.CommentView, responseType models.ResponseType, language string) string {
	var analysisContext string
	if comment.HasAnalysis() {
		analysisContext = fmt.Sprintf("Prior Analysis: Topic=%s, Sentiment=%s, Urgency=%s",
			*comment.Topic, valueOrUnknown(comment.Sentiment), valueOrUnknown(comment.Urgency))
	}

	return fmt.Sprintf(`Draft a response to this user comment.

Original Comment: "%s"
%s

Response Type: %s
- "Thank You": Acknowledge and express appreciation
- "Redirect": Politely direct to appropriate department/resource
- "Custom": Address the specific concern or question

Output Language: %s

Guidelines:
- Keep response concise but complete (2-4 sentences typically)
- Use appropriate formality for a public institution
- If the comment was negative, acknowledge the concern empathetically
- Do not make promises beyond providing information or escalating`,
		comment.Text, analysisContext, responseType, language)
}

func buildTranslationPrompt(text, targetLanguage string) string {
	return fmt.Sprintf(`Translate the following text to %s.

Original text:
"%s"

Provide the translation and detect the source language.`, targetLanguage, text)
}

func valueOrUnknown(s *string) string {
	if s == nil || *s == "" {
		return models.UnknownValue
	}
	return *s
}
