package game

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxQuestionLength   = 200
	MaxAnswerLength     = 300
	MaxNameLength       = 64
	MaxExternalIDLength = 64
)

func validateQuestion(text string) (string, error) {
	return validateText("question", text, MaxQuestionLength)
}

func validateAnswer(text string) (string, error) {
	return validateText("answer", text, MaxAnswerLength)
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", newError(KindValidation, label+" is required")
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", newError(KindValidation, fmt.Sprintf("%s must be %d characters or fewer", label, maxLen))
	}
	return trimmed, nil
}

func validateExternalID(externalID string) (string, error) {
	trimmed := strings.TrimSpace(externalID)
	if trimmed == "" {
		return "", newError(KindValidation, "external id is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxExternalIDLength {
		return "", newError(KindValidation, fmt.Sprintf("external id must be %d characters or fewer", MaxExternalIDLength))
	}
	return trimmed, nil
}

// validateDisplayName allows an empty name; the caller decides the fallback.
func validateDisplayName(name string) (string, error) {
	normalized := normalizeText(name)
	if utf8.RuneCountInString(normalized) > MaxNameLength {
		return "", newError(KindValidation, fmt.Sprintf("name must be %d characters or fewer", MaxNameLength))
	}
	return normalized, nil
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
