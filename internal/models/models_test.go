package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisResultToAnalysisDefaults(t *testing.T) {
	row := AnalysisResult{Topic: "Praise"}.ToAnalysis(7)

	assert.Equal(t, int64(7), row.CommentID)
	assert.Equal(t, "Praise", row.Topic)
	assert.Equal(t, UnknownValue, row.DetectedLanguage)
	assert.Equal(t, UnknownValue, row.Sentiment)
	assert.Equal(t, UnknownValue, row.Urgency)
	assert.Equal(t, UnknownValue, row.RequiresResponse)
	assert.Equal(t, "None", row.InappropriateContent)
	assert.Equal(t, "[]", row.ExplanationJSON)
}

func TestAnalysisResultToAnalysisKeepsExplanation(t *testing.T) {
	var result AnalysisResult
	err := json.Unmarshal([]byte(`{"sentiment":"Negative","explanation":"Uses profanity."}`), &result)
	assert.NoError(t, err)

	row := result.ToAnalysis(1)
	assert.Equal(t, `"Uses profanity."`, row.ExplanationJSON)
	assert.Equal(t, "Negative", row.Sentiment)
}

func TestAnalysisResultFlagged(t *testing.T) {
	tests := []struct {
		name   string
		result AnalysisResult
		want   bool
	}{
		{"calm", AnalysisResult{Urgency: "Low", InappropriateContent: "None"}, false},
		{"missing", AnalysisResult{}, false},
		{"urgent", AnalysisResult{Urgency: "High", InappropriateContent: "None"}, true},
		{"profanity", AnalysisResult{Urgency: "Low", InappropriateContent: "Profanity"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Flagged())
		})
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusUnreviewed.Valid())
	assert.True(t, StatusPublished.Valid())
	assert.True(t, StatusBlocked.Valid())
	assert.False(t, Status("archived").Valid())
	assert.False(t, Status("").Valid())
}

func TestCommentViewJSONNulls(t *testing.T) {
	data, err := json.Marshal(CommentView{ID: 1, Text: "hi", Status: StatusUnreviewed})
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1, "text": "hi", "status": "unreviewed", "translated_text": null,
		"detected_language": null, "topic": null, "sentiment": null, "urgency": null,
		"requires_response": null, "inappropriate_content": null, "explanation": null,
		"response_text": null
	}`, string(data))
}
