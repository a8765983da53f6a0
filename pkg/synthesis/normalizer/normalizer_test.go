package normalizer

import (
	"testing"

	"ai-guidance-be/pkg/retrieval"
)

func score(s float64) *float64 { return &s }

func TestNormalizeRankedPositionalScores(t *testing.T) {
	result := &retrieval.Result{
		Kind: retrieval.KindRanked,
		Ranked: []retrieval.Item{
			{ID: "a", Source: "Bhagavad Gita 2.47", Text: "first"},
			{ID: "b", Source: "Bhagavad Gita 2.48", Text: "second"},
			{ID: "c", Source: "Bhagavad Gita 2.49", Text: "third"},
			{ID: "d", Source: "Bhagavad Gita 2.50", Text: "fourth"},
		},
	}

	verses := New(nil).Normalize(result)

	if len(verses) != 4 {
		t.Fatalf("verse count = %d, want 4", len(verses))
	}

	// item i of n gets (n-i)/n
	want := []float64{1.0, 0.75, 0.5, 0.25}
	for i, w := range want {
		if verses[i].RelevanceScore != w {
			t.Errorf("verses[%d].RelevanceScore = %v, want %v", i, verses[i].RelevanceScore, w)
		}
	}
}

func TestNormalizeRankedExplicitScoreClamped(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"in range", 0.42, 0.42},
		{"above one", 1.7, 1.0},
		{"negative", -0.3, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &retrieval.Result{
				Kind:   retrieval.KindRanked,
				Ranked: []retrieval.Item{{ID: "x", Text: "text", Score: score(tt.score)}},
			}

			verses := New(nil).Normalize(result)
			if len(verses) != 1 {
				t.Fatalf("verse count = %d, want 1", len(verses))
			}
			if verses[0].RelevanceScore != tt.want {
				t.Errorf("RelevanceScore = %v, want %v", verses[0].RelevanceScore, tt.want)
			}
		})
	}
}

func TestNormalizeDropsVersesWithoutText(t *testing.T) {
	result := &retrieval.Result{
		Kind: retrieval.KindRanked,
		Ranked: []retrieval.Item{
			{ID: "keep", Text: "valid text"},
			{ID: "drop", Text: "   "},
			{ID: "drop2", Text: ""},
		},
	}

	verses := New(nil).Normalize(result)

	if len(verses) != 1 {
		t.Fatalf("verse count = %d, want 1", len(verses))
	}
	if verses[0].ID != "keep" {
		t.Errorf("kept verse id = %q, want %q", verses[0].ID, "keep")
	}
}

func TestNormalizeClustered(t *testing.T) {
	result := &retrieval.Result{
		Kind: retrieval.KindClustered,
		Clusters: []retrieval.Cluster{
			{Theme: "dharma", Items: []retrieval.Item{
				{ID: "a", Text: "on duty", Score: score(0.9)},
				{ID: "b", Text: "also on duty"},
			}},
			{Theme: "peace", Items: []retrieval.Item{
				{ID: "c", Text: "on stillness", Score: score(0.6)},
			}},
		},
	}

	verses := New(nil).Normalize(result)

	if len(verses) != 3 {
		t.Fatalf("verse count = %d, want 3", len(verses))
	}
	if verses[0].ClusterTheme != "dharma" || verses[2].ClusterTheme != "peace" {
		t.Errorf("cluster themes not preserved: %q, %q", verses[0].ClusterTheme, verses[2].ClusterTheme)
	}
	// unscored clustered items default to 0.5
	if verses[1].RelevanceScore != 0.5 {
		t.Errorf("unscored clustered verse score = %v, want 0.5", verses[1].RelevanceScore)
	}
}

func TestNormalizeThemeTaggingFromVocabulary(t *testing.T) {
	result := &retrieval.Result{
		Kind: retrieval.KindRanked,
		Ranked: []retrieval.Item{
			{ID: "a", Text: "verse text", Translation: "perform your duty without attachment"},
			{ID: "b", Text: "verse text two", Translation: "nothing matching here"},
		},
	}

	verses := New(nil).Normalize(result)

	if verses[0].ClusterTheme != "dharma" {
		t.Errorf("verses[0].ClusterTheme = %q, want %q", verses[0].ClusterTheme, "dharma")
	}
	if verses[1].ClusterTheme != "" {
		t.Errorf("verses[1].ClusterTheme = %q, want empty", verses[1].ClusterTheme)
	}
}

func TestNormalizeDegenerateInputs(t *testing.T) {
	n := New(nil)

	if got := n.Normalize(nil); got != nil {
		t.Errorf("Normalize(nil) = %v, want nil", got)
	}

	empty := &retrieval.Result{Kind: retrieval.KindRanked}
	if got := n.Normalize(empty); len(got) != 0 {
		t.Errorf("Normalize(empty) yielded %d verses, want 0", len(got))
	}
}

func TestNormalizeStableFallbackID(t *testing.T) {
	result := &retrieval.Result{
		Kind:   retrieval.KindRanked,
		Ranked: []retrieval.Item{{Text: "same text"}},
	}

	first := New(nil).Normalize(result)
	second := New(nil).Normalize(result)

	if first[0].ID == "" {
		t.Fatal("fallback id is empty")
	}
	if first[0].ID != second[0].ID {
		t.Errorf("fallback id not stable: %q vs %q", first[0].ID, second[0].ID)
	}
}
