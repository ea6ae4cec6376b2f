package textstat

import (
	"reflect"
	"testing"
)

func TestCountWordsSplitsOnWhitespaceRuns(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want int
	}{
		{in: "", want: 0},
		{in: "   ", want: 0},
		{in: "one two three four five six", want: 6},
		{in: "one\t\ttwo\n\nthree   four ", want: 4},
	}
	for _, tc := range cases {
		if got := CountWords(tc.in); got != tc.want {
			t.Fatalf("CountWords(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParagraphsFoldsLinesAndDropsBlanks(t *testing.T) {
	t.Parallel()
	got := Paragraphs("First line\ncontinues.\n\n\n  Second.  \r\n\r\nThird")
	want := []string{"First line continues.", "Second.", "Third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected paragraphs: %q", got)
	}
}

func TestSentences(t *testing.T) {
	t.Parallel()
	got := Sentences("It was late. Was it? Yes! 3.14 is pi and trailing")
	want := []string{"It was late.", "Was it?", "Yes!", "3.14 is pi and trailing"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected sentences: %q", got)
	}
}
