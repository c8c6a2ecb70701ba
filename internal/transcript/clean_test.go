package transcript

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"caption-digest/internal/captions"
)

var digitColonDigit = regexp.MustCompile(`\d:\d`)

func TestCleanRemovesTimestamps(t *testing.T) {
	got := Clean("Hello [1:23] world (4:56) 7:08 end")
	if digitColonDigit.MatchString(got) {
		t.Fatalf("timestamp left in %q", got)
	}
	if got != "Hello world end" {
		t.Errorf("got %q, want %q", got, "Hello world end")
	}
}

func TestCleanCollapsesStutter(t *testing.T) {
	got := Clean("the the cat cat sat")
	words := strings.Fields(strings.ToLower(got))
	for i := 1; i < len(words); i++ {
		if words[i] == words[i-1] {
			t.Fatalf("repeated word %q in %q", words[i], got)
		}
	}
	if got != "The cat sat" {
		t.Errorf("got %q, want %q", got, "The cat sat")
	}
}

func TestCleanEndToEndSample(t *testing.T) {
	got := Clean("um so the the cat [0:01] sat on the mat you know")
	lower := strings.ToLower(got)

	for _, re := range []*regexp.Regexp{
		regexp.MustCompile(`\bum\b`),
		regexp.MustCompile(`\bso\b`),
		regexp.MustCompile(`\byou know\b`),
		regexp.MustCompile(`\bthe the\b`),
		digitColonDigit,
	} {
		if re.MatchString(lower) {
			t.Errorf("%q still matches %s", got, re)
		}
	}
	if got != "The cat sat on the mat" {
		t.Errorf("got %q", got)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace runs", "hello \n\n  there\tfriend", "Hello there friend"},
		{"stutter across comma", "the, the cat", "The cat"},
		{"stutter keeps last punctuation", "we sat sat. then left", "We sat. Then left"},
		{"case insensitive stutter", "The the dog", "The dog"},
		{"stutter keeps earlier terminator", "the. the", "The."},
		{"stutter across terminator", "we sat. sat then left", "We sat. Then left"},
		{"fillers with commas", "i mean, it was, basically, fine", "It was, fine"},
		{"filler inside words kept", "also likely wellness", "Also likely wellness"},
		{"repeated punctuation", "wait!!! what??", "Wait! What?"},
		{"spacing around punctuation", "hello ,world", "Hello, world"},
		{"decimal numbers kept", "it costs 3.5 dollars", "It costs 3.5 dollars"},
		{"missing sentence break", "we went home Then we slept", "We went home. Then we slept"},
		{"pronoun I is not a sentence start", "then I went home", "Then I went home"},
		{"lowercase i", "i think i can", "I think I can"},
		{"segments capitalized", "first one. second one? third", "First one. Second one? Third"},
		{"multiple periods", "done.... next", "Done. Next"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanSteps(t *testing.T) {
	tests := []struct {
		name string
		step func(string) string
		in   string
		want string
	}{
		{"acronym", joinAcronyms, "the M. C. P. server", "the MCP server"},
		{"acronym without spaces", joinAcronyms, "U.S.A. today", "USA today"},
		{"two letters untouched", joinAcronyms, "J. R. wrote", "J. R. wrote"},
		{"mixed punctuation run", collapsePunctuation, "really?!. ok", "really? ok"},
		{"comma run", collapsePunctuation, "cat, , sat", "cat, sat"},
		{"all caps first word kept", capitalizeSentences, "NASA launched. it flew", "NASA launched. It flew"},
		{"quoted first word", capitalizeSentences, `"hello" she said`, `"Hello" she said`},
		{"final tidy", finalTidy, "a.. b.   c", "a. b. c"},
		{"bracketed hour timestamp", stripTimestamps, "intro [1:02:03] body", "intro body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.step(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanPipelineOrder(t *testing.T) {
	require.Equal(t, []string{
		"collapse-whitespace",
		"strip-timestamps",
		"collapse-stutter",
		"remove-fillers",
		"join-acronyms",
		"collapse-punctuation",
		"space-punctuation",
		"insert-sentence-breaks",
		"capitalize-i",
		"capitalize-sentences",
		"final-tidy",
	}, cleanPipeline.Names())
}

func TestCleanIsTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "text")
		out := Clean(s)
		if out != strings.TrimSpace(out) {
			t.Fatalf("result not trimmed: %q", out)
		}
		if strings.Contains(out, "  ") {
			t.Fatalf("double space in %q", out)
		}
	})
}

func TestPrepare(t *testing.T) {
	items := []captions.Item{
		{Text: "so we&#39;re", OffsetMs: 0, DurationMs: 1500},
		{Text: "we&amp;#39;re going [0:04]", OffsetMs: 1500, DurationMs: 1500},
		{Text: "home", OffsetMs: 3000, DurationMs: 500},
	}
	if got := Prepare(items); got != "We're going home" {
		t.Errorf("Prepare() = %q", got)
	}
}
