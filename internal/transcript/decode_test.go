package transcript

import (
	"testing"

	"pgregory.net/rapid"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"named references", "&lt;b&gt; Tom &amp; Jerry", "<b> Tom & Jerry"},
		{"decimal reference", "caf&#233;", "café"},
		{"hex reference", "&#x41;&#X42;", "AB"},
		{"apostrophe variants", "it&apos;s it&#39;s it&#x27;s", "it's it's it's"},
		{"quote variants", "&quot;a&quot; &#34;b&#34; &#x22;c&#x22;", `"a" "b" "c"`},
		{"double escaped apostrophe", "&amp;#39;", "'"},
		{"double escaped quote", "&amp;quot;hi&amp;quot;", `"hi"`},
		{"triple escaped ampersand", "&amp;amp;amp;", "&"},
		{"double escaped named reference", "&amp;lt;b&amp;gt;", "<b>"},
		{"triple escaped named reference", "&amp;amp;lt;", "<"},
		{"double escaped speaker marker", "&amp;gt;&amp;gt; Hi", ">> Hi"},
		{"double escaped decimal reference", "caf&amp;#233;", "café"},
		{"unknown entity kept", "&bogus; text", "&bogus; text"},
		{"zero code point kept", "&#0;", "&#0;"},
		{"surrogate kept", "&#55296;", "&#55296;"},
		{"out of range kept", "&#x110000;", "&#x110000;"},
		{"bare ampersand kept", "rock & roll", "rock & roll"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.input); got != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeIdempotentOnPlainASCII(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[ -%'-~]*`).Draw(t, "text")
		once := Decode(s)
		if once != s {
			t.Fatalf("Decode changed entity-free text: %q -> %q", s, once)
		}
		if twice := Decode(once); twice != once {
			t.Fatalf("Decode not idempotent: %q -> %q", once, twice)
		}
	})
}
