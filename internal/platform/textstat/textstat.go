// Package textstat holds the word, sentence and paragraph arithmetic shared by
// the content module and the reading engine.
package textstat

import (
	"strings"
	"unicode"
)

// CountWords counts tokens separated by runs of whitespace.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Paragraphs splits text on blank lines. Line breaks inside a paragraph are
// folded to single spaces; empty paragraphs are dropped.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		out = append(out, strings.Join(current, " "))
		current = current[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return out
}

// Sentences splits on terminal punctuation followed by whitespace. It is an
// approximation: abbreviations such as "Mr." split too.
func Sentences(text string) []string {
	var out []string
	runes := []rune(strings.TrimSpace(text))
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}
