package dto

type PluginInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type AnalyzeInput struct {
	PluginName string
	Text       string
}

type SegmentOutput struct {
	Text string
	Kind string
}

type AnalyzeOutput struct {
	PluginName        string
	Segments          []SegmentOutput
	ReadingDifficulty float64
	ImportanceScore   float64
	PrimaryType       string
}

type AdaptInput struct {
	PluginName      string
	Text            string
	Version         string
	PrimaryType     string
	ImportanceScore float64
}

type AdaptOutput struct {
	PluginName           string
	Version              string
	Text                 string
	HighlightedSentences []string
	EmphasisType         string
}
