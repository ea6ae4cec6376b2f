package service

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"bookplus/internal/modules/content/domain"
	contentout "bookplus/internal/modules/content/port/out"
	"bookplus/internal/platform/textstat"
)

const summaryWordLimit = 25

var (
	listItemPattern = regexp.MustCompile(`^\s*([-*+•]|\d+[.)])\s+`)
	headingPattern  = regexp.MustCompile(`^#{1,6}\s+`)

	importanceMarkers = []string{
		"important", "key", "must", "significant", "essential", "crucial",
		"therefore", "conclusion", "in summary", "remember", "note that",
	}
	expositoryMarkers = []string{
		"because", "therefore", "thus", "however", "is defined", "refers to",
		"consists of", "for example", "in other words", "means that",
	}
	descriptiveSuffixes = []string{"ly", "ful", "ous", "ish", "ive", "less"}
)

// HeuristicAnalyzer classifies and condenses text locally from surface
// features. It never fails.
type HeuristicAnalyzer struct{}

func NewHeuristicAnalyzer() contentout.Analyzer {
	return HeuristicAnalyzer{}
}

func (HeuristicAnalyzer) Analyze(_ context.Context, text string) (domain.Analysis, error) {
	return AnalyzeText(text), nil
}

func (HeuristicAnalyzer) Adapt(_ context.Context, text string, analysis domain.Analysis, version domain.Version) (domain.Variant, error) {
	return AdaptText(text, analysis, version), nil
}

func AnalyzeText(text string) domain.Analysis {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Analysis{PrimaryType: domain.TypeUnknown}.Normalize()
	}
	if headingPattern.MatchString(text) || isBareHeading(text) {
		return domain.Analysis{
			Segments:          []domain.Segment{{Text: text, Kind: domain.TypeHeading}},
			ReadingDifficulty: 0.1,
			ImportanceScore:   0.8,
			PrimaryType:       domain.TypeHeading,
		}.Normalize()
	}
	if isList(text) {
		segments := []domain.Segment{}
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				segments = append(segments, domain.Segment{Text: line, Kind: domain.TypeList})
			}
		}
		return domain.Analysis{
			Segments:          segments,
			ReadingDifficulty: difficulty(text, len(segments)),
			ImportanceScore:   importance(text, domain.TypeList),
			PrimaryType:       domain.TypeList,
		}.Normalize()
	}

	sentences := textstat.Sentences(text)
	segments := make([]domain.Segment, 0, len(sentences))
	weights := map[domain.ContentType]int{}
	var order []domain.ContentType
	for _, sentence := range sentences {
		kind := classifySentence(sentence)
		segments = append(segments, domain.Segment{Text: sentence, Kind: kind})
		if _, seen := weights[kind]; !seen {
			order = append(order, kind)
		}
		weights[kind] += textstat.CountWords(sentence)
	}
	primary := domain.TypeUnknown
	best := -1
	for _, kind := range order {
		if weights[kind] > best {
			primary, best = kind, weights[kind]
		}
	}
	return domain.Analysis{
		Segments:          segments,
		ReadingDifficulty: difficulty(text, len(sentences)),
		ImportanceScore:   importance(text, primary),
		PrimaryType:       primary,
	}.Normalize()
}

// AdaptText renders text at version. Condensed keeps the better half of the
// sentences and summary keeps roughly a quarter, both in reading order.
func AdaptText(text string, analysis domain.Analysis, version domain.Version) domain.Variant {
	version = version.ResolveAuto(analysis.ImportanceScore)
	sentences := textstat.Sentences(text)
	variant := domain.Variant{
		Version:      version,
		Text:         text,
		EmphasisType: string(analysis.PrimaryType),
	}
	switch version {
	case domain.VersionCondensed:
		if len(sentences) > 2 {
			kept := topSentences(sentences, (len(sentences)+1)/2)
			variant.Text = strings.Join(kept, " ")
			sentences = kept
		}
	case domain.VersionSummary:
		keep := (len(sentences) + 3) / 4
		if keep < 1 {
			keep = 1
		}
		kept := topSentences(sentences, keep)
		variant.Text = truncateWords(strings.Join(kept, " "), summaryWordLimit)
		sentences = kept
	}
	variant.HighlightedSentences = highlights(sentences)
	return variant
}

func classifySentence(sentence string) domain.ContentType {
	lower := strings.ToLower(sentence)
	if strings.ContainsAny(sentence, "\"“”") {
		return domain.TypeDialogue
	}
	for _, marker := range expositoryMarkers {
		if strings.Contains(lower, marker) {
			return domain.TypeExpository
		}
	}
	words := strings.Fields(lower)
	descriptive := 0
	for _, word := range words {
		word = strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) })
		if len(word) < 5 {
			continue
		}
		for _, suffix := range descriptiveSuffixes {
			if strings.HasSuffix(word, suffix) {
				descriptive++
				break
			}
		}
	}
	if len(words) > 0 && float64(descriptive)/float64(len(words)) >= 0.2 {
		return domain.TypeDescriptive
	}
	return domain.TypeNarrative
}

// difficulty blends sentence length and word length into [0,1].
func difficulty(text string, sentences int) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	if sentences < 1 {
		sentences = 1
	}
	letters := 0
	for _, word := range words {
		for _, r := range word {
			if unicode.IsLetter(r) {
				letters++
			}
		}
	}
	perSentence := float64(len(words)) / float64(sentences)
	perWord := float64(letters) / float64(len(words))
	score := (perSentence-8)/22*0.6 + (perWord-3.5)/3*0.4
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func importance(text string, primary domain.ContentType) float64 {
	score := 0.3
	words := textstat.CountWords(text)
	length := float64(words) / 120
	if length > 1 {
		length = 1
	}
	score += 0.3 * length
	hits := markerHits(text)
	if hits > 3 {
		hits = 3
	}
	score += 0.1 * float64(hits)
	if primary == domain.TypeExpository {
		score += 0.1
	}
	return score
}

func markerHits(text string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, marker := range importanceMarkers {
		if strings.Contains(lower, marker) {
			hits++
		}
	}
	return hits
}

// topSentences keeps the n best scoring sentences in their original order.
// The opening sentence gets a bonus so summaries keep their topic sentence.
func topSentences(sentences []string, n int) []string {
	if n >= len(sentences) {
		return sentences
	}
	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, sentence := range sentences {
		score := float64(markerHits(sentence))*2 + float64(textstat.CountWords(sentence))/20
		if i == 0 {
			score += 1.5
		}
		ranked[i] = scored{index: i, score: score}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })
	keep := make([]int, 0, n)
	for _, item := range ranked[:n] {
		keep = append(keep, item.index)
	}
	sort.Ints(keep)
	out := make([]string, 0, n)
	for _, index := range keep {
		out = append(out, sentences[index])
	}
	return out
}

func highlights(sentences []string) []string {
	out := []string{}
	for _, sentence := range sentences {
		if markerHits(sentence) == 0 {
			continue
		}
		out = append(out, sentence)
		if len(out) == 3 {
			break
		}
	}
	return out
}

func truncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}
	return strings.Join(words[:limit], " ") + "..."
}

func isList(text string) bool {
	lines := 0
	items := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines++
		if listItemPattern.MatchString(line) {
			items++
		}
	}
	return lines > 0 && items*2 > lines
}

// isBareHeading matches short lines without terminal punctuation, such as
// "Chapter 3" or "PART TWO".
func isBareHeading(text string) bool {
	if strings.Contains(text, "\n") || textstat.CountWords(text) > 8 {
		return false
	}
	last := []rune(text)[len([]rune(text))-1]
	return !strings.ContainsRune(".!?:;,\"”'", last)
}
