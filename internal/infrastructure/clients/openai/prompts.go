package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zatekoja/feedback-insights/internal/domain/entities"
)

const classifierSystemPrompt = `You classify product feedback. Return ONLY compact JSON with keys: tag (one of: Bug Report, Feature Request, Urgent, Praise, Security, Performance, Other), sentiment (float -1..1), urgency (float 0..1), summary (<=20 words). No prose, no markdown.`

const narrativeSystemPrompt = `Summarize the key themes from the tagged feedback items you are given. Keep it short (<=120 words), plain prose, no markdown.`

const (
	maxSummaryChars = 140
	defaultUrgency  = 0.2
)

// classificationPayload is the raw model output before normalization.
type classificationPayload struct {
	Tag       string   `json:"tag"`
	Sentiment *float64 `json:"sentiment"`
	Urgency   *float64 `json:"urgency"`
	// Some models echo the column name instead of the prompt key.
	UrgencyScore *float64 `json:"urgency_score"`
	Summary      string   `json:"summary"`
}

func buildNarrativeUserPrompt(latest []entities.AnalyzedSnippet) (string, error) {
	data, err := json.Marshal(latest)
	if err != nil {
		return "", fmt.Errorf("failed to encode feedback snippets: %w", err)
	}
	return string(data), nil
}

// parseClassification normalizes raw model output into a trustworthy result:
// tag mapped into the closed enumeration, sentiment clamped to [-1, 1],
// urgency clamped to [0, 1] with a low-urgency fallback, summary truncated.
func parseClassification(data []byte) (*entities.ClassificationResult, error) {
	var payload classificationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse classification payload: %w", err)
	}

	urgency := payload.Urgency
	if urgency == nil {
		urgency = payload.UrgencyScore
	}

	return &entities.ClassificationResult{
		Tag:       normalizeTag(payload.Tag),
		Sentiment: clampFloat(payload.Sentiment, -1, 1, 0),
		Urgency:   clampFloat(urgency, 0, 1, defaultUrgency),
		Summary:   truncateSummary(payload.Summary, maxSummaryChars),
	}, nil
}

// truncateSummary cuts at a rune boundary so a multi-byte character is
// never split mid-sequence.
func truncateSummary(summary string, limit int) string {
	if len(summary) <= limit {
		return summary
	}
	end := 0
	for i := range summary {
		if i > limit {
			break
		}
		end = i
	}
	return summary[:end]
}

// normalizeTag maps free-form model output onto the closed tag enumeration
// by keyword, so a creative label like "urgent bug!!" still lands somewhere
// sensible.
func normalizeTag(raw string) entities.Tag {
	return entities.TagFromKeywords(raw)
}

func clampFloat(value *float64, min, max, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	if *value < min {
		return min
	}
	if *value > max {
		return max
	}
	return *value
}

// stripCodeFences removes a Markdown code block wrapper if the model added
// one despite the prompt.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}
