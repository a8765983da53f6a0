package narrative

import (
	"reflect"
	"strings"
	"testing"

	"ai-guidance-be/pkg/store"
	"ai-guidance-be/pkg/synthesis/cluster"
)

func fixtureVerses() []store.Verse {
	return []store.Verse{
		{ID: "a", SanskritText: "text a", Translation: "trans a", Interpretation: "act without attachment", Reference: "Bhagavad Gita 2.47", ClusterTheme: "dharma", RelevanceScore: 0.9},
		{ID: "b", SanskritText: "text b", Translation: "trans b", Reference: "Bhagavad Gita 3.35", ClusterTheme: "dharma", RelevanceScore: 0.7},
		{ID: "c", SanskritText: "text c", Interpretation: "stillness is strength", Reference: "Isha Upanishad 1", ClusterTheme: "peace", RelevanceScore: 0.6},
	}
}

func buildFixture(t *testing.T) *Structure {
	t.Helper()
	verses := fixtureVerses()
	outcome := cluster.New().Cluster(verses)
	s := New().Build(outcome, verses)
	if s == nil {
		t.Fatal("Build returned nil for non-empty input")
	}
	return s
}

func TestBuildArcShape(t *testing.T) {
	s := buildFixture(t)

	if s.PrimaryTheme != "dharma" {
		t.Errorf("PrimaryTheme = %q, want dharma", s.PrimaryTheme)
	}
	if !reflect.DeepEqual(s.SupportingThemes, []string{"peace"}) {
		t.Errorf("SupportingThemes = %v, want [peace]", s.SupportingThemes)
	}
	if s.Arc.Introduction == "" || s.Arc.Development == "" || s.Arc.Conclusion == "" {
		t.Error("arc prose sections must all be populated")
	}
	if len(s.Arc.FollowUps) != 3 {
		t.Errorf("follow-ups = %d, want 3", len(s.Arc.FollowUps))
	}
}

func TestBuildDeterministic(t *testing.T) {
	first := buildFixture(t)
	second := buildFixture(t)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical structures")
	}
}

func TestBuildDevelopmentVersesCappedAtTwo(t *testing.T) {
	verses := []store.Verse{
		{ID: "a", SanskritText: "a", ClusterTheme: "dharma", RelevanceScore: 0.9},
		{ID: "b", SanskritText: "b", ClusterTheme: "dharma", RelevanceScore: 0.8},
		{ID: "c", SanskritText: "c", ClusterTheme: "dharma", RelevanceScore: 0.7},
	}
	outcome := cluster.New().Cluster(verses)
	s := New().Build(outcome, verses)

	if got := len(s.Arc.DevelopmentVerses); got != 2 {
		t.Errorf("development verses = %d, want 2", got)
	}
	// highest relevance first
	if s.Arc.DevelopmentVerses[0].SanskritText != "a" {
		t.Errorf("first development verse = %q, want a", s.Arc.DevelopmentVerses[0].SanskritText)
	}
}

func TestBuildCulminationIsHighestInPrimaryTheme(t *testing.T) {
	s := buildFixture(t)

	if s.Arc.Culmination == nil {
		t.Fatal("culmination is nil")
	}
	if s.Arc.Culmination.Source != "Bhagavad Gita 2.47" {
		t.Errorf("culmination source = %q, want Bhagavad Gita 2.47", s.Arc.Culmination.Source)
	}
}

func TestBuildCulminationFallsBackToOverallBest(t *testing.T) {
	// no verse carries the primary theme label (possible after manual
	// grouping); the overall best verse is the essence
	verses := []store.Verse{
		{ID: "a", SanskritText: "a", Reference: "Ref A", ClusterTheme: "peace", RelevanceScore: 0.4},
		{ID: "b", SanskritText: "b", Reference: "Ref B", ClusterTheme: "peace", RelevanceScore: 0.8},
	}
	outcome := cluster.Outcome{
		Primary: &cluster.ThematicGroup{Theme: "dharma", Verses: verses},
	}
	s := New().Build(outcome, verses)

	if s.Arc.Culmination == nil || s.Arc.Culmination.Source != "Ref B" {
		t.Errorf("culmination = %+v, want Ref B", s.Arc.Culmination)
	}
}

func TestBuildPracticalGuidanceFromInterpretations(t *testing.T) {
	s := buildFixture(t)

	if got := len(s.Arc.PracticalGuidance); got != 2 {
		t.Fatalf("practical guidance = %d, want 2 (one per interpreted verse)", got)
	}
	if s.Arc.PracticalGuidance[0].Insight != "act without attachment" {
		t.Errorf("guidance insight = %q", s.Arc.PracticalGuidance[0].Insight)
	}
}

func TestBuildNilWhenNoPrimary(t *testing.T) {
	if s := New().Build(cluster.Outcome{}, nil); s != nil {
		t.Errorf("Build on empty outcome = %+v, want nil", s)
	}
}

func TestHumanThemeInProse(t *testing.T) {
	verses := []store.Verse{{ID: "a", SanskritText: "a", ClusterTheme: "general_spiritual", RelevanceScore: 0.5}}
	outcome := cluster.New().Cluster(verses)
	s := New().Build(outcome, verses)

	if !strings.Contains(s.Arc.Introduction, "the spiritual path") {
		t.Errorf("introduction does not humanize the catch-all theme: %q", s.Arc.Introduction)
	}
}
