package classifier

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// excerptLimit bounds how much raw LLM output is carried in errors.
const excerptLimit = 200

// UpstreamError reports that the LLM could not be reached or answered with
// an error. Calls are never retried.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm %s request failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ParseError reports LLM output that could not be decoded into the
// expected structure.
type ParseError struct {
	Op      string
	Reason  string
	Excerpt string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse LLM %s response (%s): %s", e.Op, e.Reason, e.Excerpt)
}

func IsUpstream(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}

func IsParse(err error) bool {
	var parse *ParseError
	return errors.As(err, &parse)
}

// excerpt truncates s to at most excerptLimit bytes without splitting a rune.
func excerpt(s string) string {
	if len(s) <= excerptLimit {
		return s
	}
	cut := excerptLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
