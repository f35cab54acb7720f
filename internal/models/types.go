package models

// UnknownValue is stored for categorical analysis fields the LLM left out.
const UnknownValue = "Unknown"

// Status is the review state of a comment. Any status may follow any other.
type Status string

const (
	StatusUnreviewed Status = "unreviewed"
	StatusPublished  Status = "published"
	StatusBlocked    Status = "blocked"
)

// Valid reports whether s is a known review status.
func (s Status) Valid() bool {
	switch s {
	case StatusUnreviewed, StatusPublished, StatusBlocked:
		return true
	}
	return false
}

// Topic categorises what a comment is about.
type Topic string

const (
	TopicServiceComplaint   Topic = "Service Complaint"
	TopicInformationRequest Topic = "Information Request"
	TopicPraise             Topic = "Praise"
	TopicPolicyFeedback     Topic = "Policy Feedback"
	TopicAccessibility      Topic = "Accessibility Issue"
	TopicTechnicalProblem   Topic = "Technical Problem"
	TopicSuggestion         Topic = "Suggestion"
	TopicOther              Topic = "Other"
)

// Topics lists every allowed topic in schema order.
var Topics = []Topic{
	TopicServiceComplaint,
	TopicInformationRequest,
	TopicPraise,
	TopicPolicyFeedback,
	TopicAccessibility,
	TopicTechnicalProblem,
	TopicSuggestion,
	TopicOther,
}

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

// Urgency: High (safety/legal/vulnerable), Medium (needs follow-up), Low (general).
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

var Urgencies = []Urgency{UrgencyHigh, UrgencyMedium, UrgencyLow}

type RequiresResponse string

const (
	RequiresResponseYes   RequiresResponse = "Yes"
	RequiresResponseNo    RequiresResponse = "No"
	RequiresResponseMaybe RequiresResponse = "Maybe"
)

var RequiresResponseValues = []RequiresResponse{RequiresResponseYes, RequiresResponseNo, RequiresResponseMaybe}

// InappropriateContent names the kind of problematic content found, if any.
type InappropriateContent string

const (
	InappropriateNone           InappropriateContent = "None"
	InappropriateProfanity      InappropriateContent = "Profanity"
	InappropriateHateSpeech     InappropriateContent = "Hate Speech"
	InappropriateThreatening    InappropriateContent = "Threatening"
	InappropriatePersonalAttack InappropriateContent = "Personal Attack"
	InappropriateSpam           InappropriateContent = "Spam"
)

var InappropriateContentValues = []InappropriateContent{
	InappropriateNone,
	InappropriateProfanity,
	InappropriateHateSpeech,
	InappropriateThreatening,
	InappropriatePersonalAttack,
	InappropriateSpam,
}

// ResponseType selects the kind of draft reply to generate.
type ResponseType string

const (
	ResponseThankYou ResponseType = "Thank You"
	ResponseRedirect ResponseType = "Redirect"
	ResponseCustom   ResponseType = "Custom"
)

func (t ResponseType) Valid() bool {
	switch t {
	case ResponseThankYou, ResponseRedirect, ResponseCustom:
		return true
	}
	return false
}

// StringValues converts a typed enum slice for use in schemas.
func StringValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
