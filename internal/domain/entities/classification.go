package entities

// ClassificationResult is the model's analysis of one feedback text.
// Values are already clamped/normalized by the classifier client: Sentiment
// in [-1, 1], Urgency in [0, 1], Summary at most 140 characters, Tag drawn
// from the closed Tag enumeration.
type ClassificationResult struct {
	Tag       Tag     `json:"tag"`
	Sentiment float64 `json:"sentiment"`
	Urgency   float64 `json:"urgency"`
	Summary   string  `json:"summary"`
}

// AnalyzedSnippet is the slim projection of a classified record fed to the
// narrative prompt. Keeping it small bounds the prompt size.
type AnalyzedSnippet struct {
	Text      string  `json:"text"`
	Tag       Tag     `json:"tag"`
	Sentiment float64 `json:"sentiment"`
}
