package transcript

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	namedRefRe   = regexp.MustCompile(`&[A-Za-z][A-Za-z0-9]*;`)
	decimalRefRe = regexp.MustCompile(`&#([0-9]+);`)
	hexRefRe     = regexp.MustCompile(`&#[xX]([0-9A-Fa-f]+);`)
)

// quoteReplacer maps the apostrophe, quote and ampersand spellings caption
// feeds emit to their literal characters.
var quoteReplacer = strings.NewReplacer(
	"&apos;", "'",
	"&#39;", "'",
	"&#039;", "'",
	"&#x27;", "'",
	"&#X27;", "'",
	"&quot;", `"`,
	"&#34;", `"`,
	"&#034;", `"`,
	"&#x22;", `"`,
	"&#X22;", `"`,
	"&amp;", "&",
	"&#38;", "&",
	"&#x26;", "&",
	"&#X26;", "&",
)

// maxDecodePasses bounds the fixed-point loop over nested escapes.
const maxDecodePasses = 8

var decodePipeline = Pipeline{
	{Name: "named-references", Apply: decodeNamed},
	{Name: "decimal-references", Apply: decodeDecimal},
	{Name: "hex-references", Apply: decodeHex},
	{Name: "quotes-and-ampersands", Apply: decodeQuotes},
}

// Decode resolves HTML character references in caption text. Caption feeds
// double-encode entities, so the whole chain repeats until nothing changes.
func Decode(text string) string {
	for range maxDecodePasses {
		next := decodePipeline.Run(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func decodeNamed(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}
	return namedRefRe.ReplaceAllStringFunc(text, html.UnescapeString)
}

func decodeDecimal(text string) string {
	return decodeNumeric(decimalRefRe, text, 10)
}

func decodeHex(text string) string {
	return decodeNumeric(hexRefRe, text, 16)
}

func decodeNumeric(re *regexp.Regexp, text string, base int) string {
	if !strings.Contains(text, "&#") {
		return text
	}
	return re.ReplaceAllStringFunc(text, func(ref string) string {
		digits := re.FindStringSubmatch(ref)[1]
		cp, err := strconv.ParseInt(digits, base, 32)
		if err != nil || cp == 0 || !utf8.ValidRune(rune(cp)) {
			return ref
		}
		return string(rune(cp))
	})
}

func decodeQuotes(text string) string {
	return quoteReplacer.Replace(text)
}
