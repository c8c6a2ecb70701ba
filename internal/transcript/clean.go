package transcript

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"caption-digest/internal/captions"
)

var (
	bracketTimestampRe = regexp.MustCompile(`[\[(]\s*\d+(?::\d{2}){1,2}\s*[\])]`)
	bareTimestampRe    = regexp.MustCompile(`\b\d+(?::\d{2}){1,2}\b`)
	fillerRe           = regexp.MustCompile(`(?i)\b(?:you know|i mean|um|uh|like|so|basically|actually|literally|right|okay|well)\b,?`)
	acronymRe          = regexp.MustCompile(`\b([A-Za-z])\.\s*([A-Za-z])\.\s*([A-Za-z])\.`)
	punctRunRe         = regexp.MustCompile(`[.!?,;:](?:\s*[.!?,;:])+`)
	missingStopRe      = regexp.MustCompile(`(\p{Ll}) +(\p{Lu}[\p{L}']*)`)
	lowerIRe           = regexp.MustCompile(`\bi\b`)
	segmentRe          = regexp.MustCompile(`[^.!?]+[.!?]*|[.!?]+`)
	periodRunRe        = regexp.MustCompile(`\.{2,}`)
	periodSpaceRe      = regexp.MustCompile(`\. +`)
)

var cleanPipeline = Pipeline{
	{Name: "collapse-whitespace", Apply: squeeze},
	{Name: "strip-timestamps", Apply: stripTimestamps},
	{Name: "collapse-stutter", Apply: collapseStutter},
	{Name: "remove-fillers", Apply: removeFillers},
	{Name: "join-acronyms", Apply: joinAcronyms},
	{Name: "collapse-punctuation", Apply: collapsePunctuation},
	{Name: "space-punctuation", Apply: spacePunctuation},
	{Name: "insert-sentence-breaks", Apply: insertSentenceBreaks},
	{Name: "capitalize-i", Apply: capitalizeI},
	{Name: "capitalize-sentences", Apply: capitalizeSentences},
	{Name: "final-tidy", Apply: finalTidy},
}

// Clean turns decoded caption text into readable prose. The rewrite is
// heuristic and not idempotent: re-cleaning cleaned text can shift casing
// around acronyms and inserted sentence breaks.
func Clean(text string) string {
	return cleanPipeline.Run(text)
}

// Prepare joins caption items and returns the decoded, cleaned transcript.
func Prepare(items []captions.Item) string {
	return Clean(Decode(captions.JoinText(items)))
}

func squeeze(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func stripTimestamps(text string) string {
	text = bracketTimestampRe.ReplaceAllString(text, " ")
	text = bareTimestampRe.ReplaceAllString(text, " ")
	return squeeze(text)
}

// collapseStutter folds "the the" and "the, the" into a single word. The
// first occurrence keeps its casing and takes the trailing punctuation of the
// last repeat, or keeps its own sentence terminator when the repeat has none.
func collapseStutter(text string) string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(out) > 0 {
			prevCore, prevSuffix := splitWord(out[len(out)-1])
			core, suffix := splitWord(field)
			if core != "" && strings.EqualFold(core, prevCore) &&
				isSinglePunct(prevSuffix) && isPunctOnly(suffix) {
				if suffix == "" && isTerminator(prevSuffix) {
					suffix = prevSuffix
				}
				out[len(out)-1] = prevCore + suffix
				continue
			}
		}
		out = append(out, field)
	}
	return strings.Join(out, " ")
}

func splitWord(field string) (core, suffix string) {
	for i, r := range field {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' {
			return field[:i], field[i:]
		}
	}
	return field, ""
}

func isSinglePunct(s string) bool {
	return s == "" || (utf8.RuneCountInString(s) == 1 && isPunctOnly(s))
}

func isTerminator(s string) bool {
	return s == "." || s == "!" || s == "?"
}

func isPunctOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}

func removeFillers(text string) string {
	return squeeze(fillerRe.ReplaceAllString(text, " "))
}

func joinAcronyms(text string) string {
	return acronymRe.ReplaceAllString(text, "$1$2$3")
}

// collapsePunctuation keeps one mark per run, preferring the first sentence
// terminator in the run.
func collapsePunctuation(text string) string {
	return punctRunRe.ReplaceAllStringFunc(text, func(run string) string {
		if i := strings.IndexAny(run, ".!?"); i >= 0 {
			return run[i : i+1]
		}
		return run[:1]
	})
}

func isMark(r rune) bool {
	return strings.ContainsRune(".,!?;:", r)
}

// spacePunctuation rewrites every mark as "mark + single space", leaving
// separators inside numbers such as 3.5 or 1,000 alone.
func spacePunctuation(text string) string {
	runes := []rune(text)
	out := make([]rune, 0, len(runes)+8)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !isMark(r) {
			out = append(out, r)
			continue
		}
		if r != '!' && r != '?' && r != ';' && i > 0 && i+1 < len(runes) &&
			unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			out = append(out, r)
			continue
		}
		for len(out) > 0 && out[len(out)-1] == ' ' {
			out = out[:len(out)-1]
		}
		out = append(out, r)
		for i+1 < len(runes) && runes[i+1] == ' ' {
			i++
		}
		if i+1 < len(runes) {
			out = append(out, ' ')
		}
	}
	return strings.TrimSpace(string(out))
}

// insertSentenceBreaks adds ". " between a lowercase word and a following
// capitalized word. The pronoun I never starts a sentence here.
func insertSentenceBreaks(text string) string {
	matches := missingStopRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		word := text[m[4]:m[5]]
		if word == "I" || strings.HasPrefix(word, "I'") {
			continue
		}
		b.WriteString(text[last:m[3]])
		b.WriteString(". ")
		last = m[4]
	}
	b.WriteString(text[last:])
	return b.String()
}

func capitalizeI(text string) string {
	return lowerIRe.ReplaceAllString(text, "I")
}

// capitalizeSentences re-segments on terminal punctuation and capitalizes
// each segment in place, so separators inside numbers survive.
func capitalizeSentences(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range segmentRe.FindAllStringIndex(text, -1) {
		seg := text[loc[0]:loc[1]]
		trimmed := strings.TrimSpace(seg)
		b.WriteString(text[last:loc[0]])
		if trimmed == "" {
			b.WriteString(seg)
		} else {
			lead := strings.Index(seg, trimmed)
			b.WriteString(seg[:lead])
			b.WriteString(capitalizeFirst(trimmed))
			b.WriteString(seg[lead+len(trimmed):])
		}
		last = loc[1]
	}
	b.WriteString(text[last:])
	return strings.TrimSpace(b.String())
}

// capitalizeFirst upper-cases the first letter of a segment unless its first
// word is already all caps.
func capitalizeFirst(seg string) string {
	first := seg
	if i := strings.IndexByte(seg, ' '); i >= 0 {
		first = seg[:i]
	}
	if isAllCaps(first) {
		return seg
	}
	for i, r := range seg {
		if unicode.IsLetter(r) {
			return seg[:i] + string(unicode.ToUpper(r)) + seg[i+utf8.RuneLen(r):]
		}
		if i >= len(first) {
			break
		}
	}
	return seg
}

func isAllCaps(word string) bool {
	letters := 0
	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters > 0
}

func finalTidy(text string) string {
	text = periodRunRe.ReplaceAllString(text, ".")
	text = periodSpaceRe.ReplaceAllString(text, ". ")
	return squeeze(text)
}
