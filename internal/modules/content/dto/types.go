package dto

type UnitCountOutput struct {
	BookID string `json:"book_id"`
	Total  int    `json:"total"`
}

type UnitTextOutput struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type SegmentOutput struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

type AnalysisOutput struct {
	Segments          []SegmentOutput `json:"segments"`
	ReadingDifficulty float64         `json:"reading_difficulty"`
	ImportanceScore   float64         `json:"importance_score"`
	PrimaryType       string          `json:"primary_type"`
}

type VariantInput struct {
	BookID  string
	Index   int
	Version string
}

type VariantOutput struct {
	Version              string   `json:"version"`
	Text                 string   `json:"text"`
	HighlightedSentences []string `json:"highlighted_sentences"`
	EmphasisType         string   `json:"emphasis_type,omitempty"`
}
