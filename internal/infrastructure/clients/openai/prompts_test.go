package openai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/zatekoja/feedback-insights/internal/domain/entities"
)

func TestParseClassification_ValidResponse(t *testing.T) {
	raw := `{
		"tag": "Bug Report",
		"sentiment": -0.6,
		"urgency": 0.7,
		"summary": "Checkout crashes when applying a coupon."
	}`

	result, err := parseClassification([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tag != entities.TagBugReport {
		t.Errorf("wrong tag: %s", result.Tag)
	}
	if result.Sentiment != -0.6 {
		t.Errorf("wrong sentiment: %f", result.Sentiment)
	}
	if result.Urgency != 0.7 {
		t.Errorf("wrong urgency: %f", result.Urgency)
	}
	if result.Summary != "Checkout crashes when applying a coupon." {
		t.Errorf("wrong summary: %s", result.Summary)
	}
}

func TestParseClassification_ClampsSentimentAndUrgency(t *testing.T) {
	raw := `{"tag": "Praise", "sentiment": 3.5, "urgency": -2, "summary": "ok"}`

	result, err := parseClassification([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sentiment != 1 {
		t.Errorf("sentiment not clamped: %f", result.Sentiment)
	}
	if result.Urgency != 0 {
		t.Errorf("urgency not clamped: %f", result.Urgency)
	}
}

func TestParseClassification_MissingFields_UsesFallbacks(t *testing.T) {
	raw := `{"tag": "something else entirely"}`

	result, err := parseClassification([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tag != entities.TagOther {
		t.Errorf("expected Other, got %s", result.Tag)
	}
	if result.Sentiment != 0 {
		t.Errorf("expected neutral sentiment fallback, got %f", result.Sentiment)
	}
	if result.Urgency != defaultUrgency {
		t.Errorf("expected urgency fallback %f, got %f", defaultUrgency, result.Urgency)
	}
}

func TestParseClassification_AcceptsUrgencyScoreKey(t *testing.T) {
	raw := `{"tag": "Urgent", "sentiment": -0.9, "urgency_score": 0.95, "summary": "Outage"}`

	result, err := parseClassification([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Urgency != 0.95 {
		t.Errorf("urgency_score key not honored: %f", result.Urgency)
	}
}

func TestParseClassification_TruncatesLongSummary(t *testing.T) {
	long := strings.Repeat("a", 500)
	raw := `{"tag": "Other", "sentiment": 0, "urgency": 0.1, "summary": "` + long + `"}`

	result, err := parseClassification([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Summary) != maxSummaryChars {
		t.Errorf("expected summary truncated to %d chars, got %d", maxSummaryChars, len(result.Summary))
	}
}

func TestParseClassification_TruncatesAtRuneBoundary(t *testing.T) {
	// One ASCII byte up front puts every following two-byte rune on an odd
	// offset, so the byte limit falls inside a rune.
	long := "x" + strings.Repeat("é", 200)
	raw := `{"tag": "Other", "sentiment": 0, "urgency": 0.1, "summary": "` + long + `"}`

	result, err := parseClassification([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(result.Summary) {
		t.Error("truncated summary is not valid UTF-8")
	}
	if len(result.Summary) > maxSummaryChars {
		t.Errorf("summary exceeds %d bytes: %d", maxSummaryChars, len(result.Summary))
	}
	if len(result.Summary) != maxSummaryChars-1 {
		t.Errorf("expected cut at the last rune boundary (%d bytes), got %d", maxSummaryChars-1, len(result.Summary))
	}
}

func TestParseClassification_InvalidJSON(t *testing.T) {
	if _, err := parseClassification([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNormalizeTag_KeywordMapping(t *testing.T) {
	cases := map[string]entities.Tag{
		"URGENT bug!!":            entities.TagUrgent,
		"feature idea":            entities.TagFeatureRequest,
		"bug":                     entities.TagBugReport,
		"praise":                  entities.TagPraise,
		"we love it":              entities.TagPraise,
		"security hole":           entities.TagSecurity,
		"auth problem":            entities.TagSecurity,
		"vulnerability report":    entities.TagSecurity,
		"performance regression":  entities.TagPerformance,
		"app is slow":             entities.TagPerformance,
		"request timeout on save": entities.TagPerformance,
		"misc":                    entities.TagOther,
		"":                        entities.TagOther,
	}

	for raw, want := range cases {
		if got := normalizeTag(raw); got != want {
			t.Errorf("normalizeTag(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	fenced := "```json\n{\"tag\": \"Other\"}\n```"
	if got := stripCodeFences(fenced); got != `{"tag": "Other"}` {
		t.Errorf("json fence not stripped: %q", got)
	}

	plain := "```\nhello\n```"
	if got := stripCodeFences(plain); got != "hello" {
		t.Errorf("bare fence not stripped: %q", got)
	}

	unfenced := `{"tag": "Other"}`
	if got := stripCodeFences(unfenced); got != unfenced {
		t.Errorf("unfenced input changed: %q", got)
	}
}

func TestBuildNarrativeUserPrompt_IncludesSnippets(t *testing.T) {
	prompt, err := buildNarrativeUserPrompt([]entities.AnalyzedSnippet{
		{Text: "Checkout broke", Tag: entities.TagBugReport, Sentiment: -0.7},
		{Text: "Love the new dashboard", Tag: entities.TagPraise, Sentiment: 0.9},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, expected := range []string{"Checkout broke", "Love the new dashboard", "Bug Report", "Praise"} {
		if !strings.Contains(prompt, expected) {
			t.Errorf("prompt should contain %q, got: %s", expected, prompt)
		}
	}
}
