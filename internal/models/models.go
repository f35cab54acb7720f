package models

import (
	"encoding/json"

	"github.com/uptrace/bun"
)

// Comment is a piece of citizen feedback awaiting triage.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`

	ID             int64   `bun:"id,pk,autoincrement" json:"id"`
	Text           string  `bun:"text,notnull" json:"text"`
	Status         Status  `bun:"status,notnull,default:'unreviewed'" json:"status"`
	TranslatedText *string `bun:"translated_text" json:"translated_text"`
}

// Analysis is the stored LLM triage result for a comment. A comment has at most one.
type Analysis struct {
	bun.BaseModel `bun:"table:analyses,alias:a"`

	ID                   int64  `bun:"id,pk,autoincrement" json:"id"`
	CommentID            int64  `bun:"comment_id,notnull" json:"comment_id"`
	DetectedLanguage     string `bun:"detected_language" json:"detected_language"`
	Topic                string `bun:"topic" json:"topic"`
	Sentiment            string `bun:"sentiment" json:"sentiment"`
	Urgency              string `bun:"urgency" json:"urgency"`
	RequiresResponse     string `bun:"requires_response" json:"requires_response"`
	InappropriateContent string `bun:"inappropriate_content" json:"inappropriate_content"`
	ExplanationJSON      string `bun:"explanation_json" json:"explanation_json"`

	Comment *Comment `bun:"rel:belongs-to,join:comment_id=id" json:"-"`
}

// Response is the reply submitted for a comment. A comment has at most one.
type Response struct {
	bun.BaseModel `bun:"table:responses,alias:r"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	CommentID int64  `bun:"comment_id,notnull" json:"comment_id"`
	Text      string `bun:"text,notnull" json:"text"`

	Comment *Comment `bun:"rel:belongs-to,join:comment_id=id" json:"-"`
}

// CommentView is a comment joined with its optional analysis and response.
// It is the record returned by every list endpoint; absent fields encode as null.
type CommentView struct {
	bun.BaseModel `bun:"table:comments,alias:c" json:"-"`

	ID                   int64   `bun:"id" json:"id"`
	Text                 string  `bun:"text" json:"text"`
	Status               Status  `bun:"status" json:"status"`
	TranslatedText       *string `bun:"translated_text" json:"translated_text"`
	DetectedLanguage     *string `bun:"detected_language" json:"detected_language"`
	Topic                *string `bun:"topic" json:"topic"`
	Sentiment            *string `bun:"sentiment" json:"sentiment"`
	Urgency              *string `bun:"urgency" json:"urgency"`
	RequiresResponse     *string `bun:"requires_response" json:"requires_response"`
	InappropriateContent *string `bun:"inappropriate_content" json:"inappropriate_content"`
	Explanation          *string `bun:"explanation" json:"explanation"`
	ResponseText         *string `bun:"response_text" json:"response_text"`
}

// HasAnalysis reports whether the comment carries a prior analysis.
func (v *CommentView) HasAnalysis() bool {
	return v.Topic != nil && *v.Topic != ""
}

// CommentInput is the minimal projection sent to the LLM for analysis.
type CommentInput struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// AnalysisResult is one entry of the LLM analysis output, keyed by comment id.
type AnalysisResult struct {
	DetectedLanguage     string          `json:"detected_language"`
	Topic                string          `json:"topic"`
	Sentiment            string          `json:"sentiment"`
	Urgency              string          `json:"urgency"`
	RequiresResponse     string          `json:"requires_response"`
	InappropriateContent string          `json:"inappropriate_content"`
	Explanation          json.RawMessage `json:"explanation,omitempty"`
}

// ToAnalysis converts the result into a row for commentID, filling missing
// categorical fields with UnknownValue and a missing inappropriate_content with None.
func (r AnalysisResult) ToAnalysis(commentID int64) *Analysis {
	inappropriate := r.InappropriateContent
	if inappropriate == "" {
		inappropriate = string(InappropriateNone)
	}

	explanation := "[]"
	if len(r.Explanation) > 0 && string(r.Explanation) != "null" {
		explanation = string(r.Explanation)
	}

	return &Analysis{
		CommentID:            commentID,
		DetectedLanguage:     orUnknown(r.DetectedLanguage),
		Topic:                orUnknown(r.Topic),
		Sentiment:            orUnknown(r.Sentiment),
		Urgency:              orUnknown(r.Urgency),
		RequiresResponse:     orUnknown(r.RequiresResponse),
		InappropriateContent: inappropriate,
		ExplanationJSON:      explanation,
	}
}

// Flagged reports whether staff should be alerted about the analysed comment.
func (r AnalysisResult) Flagged() bool {
	if r.Urgency == string(UrgencyHigh) {
		return true
	}
	return r.InappropriateContent != "" &&
		r.InappropriateContent != string(InappropriateNone) &&
		r.InappropriateContent != UnknownValue
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}
