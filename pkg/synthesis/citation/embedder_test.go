package citation

import (
	"reflect"
	"strings"
	"testing"

	"ai-guidance-be/pkg/store"
)

func verse(ref, theme string, relevance float64) store.Verse {
	return store.Verse{ID: ref, SanskritText: "text", Reference: ref, ClusterTheme: theme, RelevanceScore: relevance}
}

func TestEmbedRelevanceFloor(t *testing.T) {
	citations := New(1).Embed([]store.Verse{
		verse("Bhagavad Gita 2.47", "dharma", 0.95),
		verse("Bhagavad Gita 3.35", "dharma", 0.7), // exactly at floor: excluded
		verse("Isha Upanishad 1", "peace", 0.3),
	})

	if len(citations) != 1 {
		t.Fatalf("citations = %d, want 1 (only strictly above %v qualifies)", len(citations), MinRelevance)
	}
	if citations[0].VerseRef != "Bhagavad Gita 2.47" {
		t.Errorf("cited verse = %q", citations[0].VerseRef)
	}
}

func TestEmbedCapAndOrder(t *testing.T) {
	citations := New(1).Embed([]store.Verse{
		verse("Ref A", "dharma", 0.8),
		verse("Ref B", "dharma", 0.95),
		verse("Ref C", "peace", 0.9),
		verse("Ref D", "karma", 0.85),
	})

	if len(citations) != MaxCitations {
		t.Fatalf("citations = %d, want %d", len(citations), MaxCitations)
	}
	want := []string{"Ref B", "Ref C", "Ref D"}
	for i, w := range want {
		if citations[i].VerseRef != w {
			t.Errorf("citations[%d] = %q, want %q", i, citations[i].VerseRef, w)
		}
	}
}

func TestEmbedDeterministicForSeed(t *testing.T) {
	verses := []store.Verse{
		verse("Bhagavad Gita 2.47", "dharma", 0.95),
		verse("Isha Upanishad 1", "peace", 0.9),
	}

	first := New(42).Embed(verses)
	second := New(42).Embed(verses)

	if !reflect.DeepEqual(first, second) {
		t.Error("same seed must produce identical citation sentences")
	}
}

func TestEmbedSentenceMentionsSourceFamily(t *testing.T) {
	citations := New(7).Embed([]store.Verse{verse("Bhagavad Gita 2.47", "dharma", 0.9)})

	if len(citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(citations))
	}
	sentence := citations[0].Sentence
	if sentence == "" {
		t.Fatal("citation sentence is empty")
	}
	if !strings.Contains(sentence, "Bhagavad Gita") {
		t.Errorf("sentence %q does not name the source family", sentence)
	}
}

func TestSourceName(t *testing.T) {
	tests := []struct {
		reference string
		want      string
	}{
		{"Bhagavad Gita 2.47", "Bhagavad Gita"},
		{"gita 18.66", "Bhagavad Gita"},
		{"Katha Upanishad 1.2.23", "Upanishads"},
		{"Yoga Sutra 1.2", "Yoga Sutras of Patanjali"},
		{"Ramayana, Ayodhya Kanda", "Ramayana"},
		{"Mahabharata 12.109", "Mahabharata"},
		{"Rig Veda 10.129", "Vedas"},
		{"Manusmriti 6.92", "Manu Smriti"},
		{"Dhammapada 183", "Dhammapada"},
		{"Unknown Text 1.1", "ancient scriptures"},
		{"", "ancient scriptures"},
	}

	for _, tt := range tests {
		t.Run(tt.reference, func(t *testing.T) {
			if got := SourceName(tt.reference); got != tt.want {
				t.Errorf("SourceName(%q) = %q, want %q", tt.reference, got, tt.want)
			}
		})
	}
}

func TestPlacement(t *testing.T) {
	tests := []struct {
		theme string
		want  string
	}{
		{"dharma", PlacementDevelopment},
		{"karma", PlacementDevelopment},
		{"work", PlacementDevelopment},
		{"peace", PlacementCulmination},
		{"moksha", PlacementCulmination},
		{"bhakti", PlacementCulmination},
		{"mind", PlacementCulmination},
		{"general", PlacementDevelopment},
		{"", PlacementDevelopment},
	}

	for _, tt := range tests {
		if got := Placement(tt.theme); got != tt.want {
			t.Errorf("Placement(%q) = %q, want %q", tt.theme, got, tt.want)
		}
	}
}

func TestEmbedEmptyReferenceGetsGenericLabel(t *testing.T) {
	v := store.Verse{ID: "x", SanskritText: "text", ClusterTheme: "dharma", RelevanceScore: 0.9}
	citations := New(3).Embed([]store.Verse{v})

	if len(citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(citations))
	}
	if citations[0].Sentence == "" {
		t.Error("sentence empty for verse without reference")
	}
}
