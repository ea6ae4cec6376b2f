package domain

// SnapshotKeyPrefix namespaces periodic snapshots in the key-value store.
const SnapshotKeyPrefix = "bookplus:reading-session:"

// RecentScrollEvents is how many samples a snapshot carries.
const RecentScrollEvents = 10

func SnapshotKey(sessionID string) string {
	return SnapshotKeyPrefix + sessionID
}

type SectionAnalytics struct {
	ParagraphIndex    int    `json:"paragraphIndex"`
	StartTime         int64  `json:"startTime"`
	TotalTime         int64  `json:"totalTime"`
	IsVisible         bool   `json:"isVisible"`
	ViewportDwellTime int64  `json:"viewportDwellTime"`
	WPM               int    `json:"wpm"`
	Classification    Speed  `json:"classification"`
	WordCount         int    `json:"wordCount"`
	ContentType       string `json:"contentType,omitempty"`
}

type ScrollAnalytics struct {
	TotalScrollEvents int            `json:"totalScrollEvents"`
	AvgScrollSpeed    float64        `json:"avgScrollSpeed"`
	ScrollPattern     []ScrollSample `json:"scrollPattern"`
}

type Summary struct {
	TotalSections int     `json:"totalSections"`
	AvgDwellTime  float64 `json:"avgDwellTime"`
	AvgWPM        float64 `json:"avgWPM"`
}

type Report struct {
	SessionID        string             `json:"sessionId"`
	BookID           string             `json:"bookId,omitempty"`
	SessionDuration  int64              `json:"sessionDuration"`
	Timestamp        string             `json:"timestamp"`
	SectionAnalytics []SectionAnalytics `json:"sectionAnalytics"`
	ScrollAnalytics  ScrollAnalytics    `json:"scrollAnalytics"`
	Summary          Summary            `json:"summary"`
}

type Snapshot struct {
	SessionID          string         `json:"sessionId"`
	TotalSections      int            `json:"totalSections"`
	AvgDwellTime       float64        `json:"avgDwellTime"`
	AvgWPM             float64        `json:"avgWPM"`
	RecentScrollEvents []ScrollSample `json:"recentScrollEvents"`
	LastUpdate         int64          `json:"lastUpdate"`
}
