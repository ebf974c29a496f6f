package utils

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidInput is returned when a message is missing, null, not a string, or empty
var ErrInvalidInput = errors.New("invalid input: message must be a non-empty string")

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, replaces every character that is neither an ASCII word
// character nor whitespace with a space, collapses whitespace runs and trims the result.
func Normalize(text string) string {
	// cases.Caser keeps state and must not be shared between goroutines
	lowered := cases.Lower(language.Und).String(text)
	cleaned := nonWordPattern.ReplaceAllString(lowered, " ")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Tokenize splits normalized text into whitespace-delimited tokens
func Tokenize(normalized string) []string {
	return strings.Fields(normalized)
}

// TextValue validates a dynamically typed message (typically decoded from JSON)
// and returns it as a string.
func TextValue(v any) (string, error) {
	if v == nil {
		return "", ErrInvalidInput
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", ErrInvalidInput
	}
	return s, nil
}
