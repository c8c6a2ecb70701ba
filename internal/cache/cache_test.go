package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	base := GenerateCacheKey("gpt-4o-mini", 800, "Summarize.", "The cat sat.")

	if len(base) != 64 {
		t.Fatalf("expected hex sha256, got %q", base)
	}
	if again := GenerateCacheKey("gpt-4o-mini", 800, "Summarize.", "The cat sat."); again != base {
		t.Error("key is not deterministic")
	}

	variants := map[string]string{
		"model":      GenerateCacheKey("gpt-4o", 800, "Summarize.", "The cat sat."),
		"tokens":     GenerateCacheKey("gpt-4o-mini", 400, "Summarize.", "The cat sat."),
		"template":   GenerateCacheKey("gpt-4o-mini", 800, "Summarize briefly.", "The cat sat."),
		"transcript": GenerateCacheKey("gpt-4o-mini", 800, "Summarize.", "The dog sat."),
		// field boundaries must not be ambiguous
		"shifted": GenerateCacheKey("gpt-4o-mini", 800, "Summarize.The", " cat sat."),
	}
	for name, key := range variants {
		if key == base {
			t.Errorf("changing %s did not change the key", name)
		}
	}
}

func TestDecodeEntry(t *testing.T) {
	entry, err := decodeEntry([]byte(`{"text":"A summary.","degraded":true,"chunks":3,"failed_chunks":[1]}`))
	if err != nil {
		t.Fatal(err)
	}
	if entry.Text != "A summary." || !entry.Degraded || entry.Chunks != 3 || len(entry.FailedChunks) != 1 {
		t.Errorf("unexpected entry %+v", entry)
	}

	if _, err := decodeEntry([]byte("not json")); err == nil {
		t.Error("expected error for corrupt entry")
	}
}
