package classifier

import (
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/xaenox/comment-triage/internal/models"
)

// Output schemas sent with every request. The LLM is asked to honour them;
// decoded output is not re-validated against the enums.
var (
	// AnalysisSchema is an object keyed by comment id whose values carry
	// every analysis field.
	AnalysisSchema = &jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: map[string]jsonschema.Definition{},
		AdditionalProperties: &jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"detected_language": {
					Type:        jsonschema.String,
					Description: "ISO 639-1 language code of the comment (e.g., en, de, hr, tr, sr)",
				},
				"topic": {
					Type: jsonschema.String,
					Enum: models.StringValues(models.Topics),
				},
				"sentiment": {
					Type: jsonschema.String,
					Enum: models.StringValues(models.Sentiments),
				},
				"urgency": {
					Type: jsonschema.String,
					Enum: models.StringValues(models.Urgencies),
				},
				"requires_response": {
					Type: jsonschema.String,
					Enum: models.StringValues(models.RequiresResponseValues),
				},
				"inappropriate_content": {
					Type: jsonschema.String,
					Enum: models.StringValues(models.InappropriateContentValues),
				},
				"explanation": {
					Type: jsonschema.String,
				},
			},
			Required: []string{
				"detected_language",
				"topic",
				"sentiment",
				"urgency",
				"requires_response",
				"inappropriate_content",
				"explanation",
			},
		},
	}

	ResponseSchema = &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"response_text": {
				Type:        jsonschema.String,
				Description: "The drafted response to the user",
			},
			"tone_used": {
				Type: jsonschema.String,
				Enum: []string{"Formal", "Friendly", "Empathetic", "Neutral"},
			},
			"follow_up_suggested": {
				Type: jsonschema.String,
				Enum: []string{"Yes", "No"},
			},
		},
		Required: []string{"response_text", "tone_used", "follow_up_suggested"},
	}

	TranslationSchema = &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"source_language": {
				Type:        jsonschema.String,
				Description: "Detected source language (ISO 639-1 code)",
			},
			"translated_text": {
				Type: jsonschema.String,
			},
		},
		Required: []string{"source_language", "translated_text"},
	}
)
