package narrative

import (
	"fmt"
	"strings"

	"ai-guidance-be/pkg/store"
	"ai-guidance-be/pkg/synthesis/cluster"
)

// VersePassage is one verse rendered into the development section.
type VersePassage struct {
	SanskritText   string `json:"sanskrit_text"`
	Translation    string `json:"translation,omitempty"`
	Interpretation string `json:"interpretation,omitempty"`
	Source         string `json:"source"`
}

// GuidancePoint is one practical insight with its source.
type GuidancePoint struct {
	Insight string `json:"insight"`
	Source  string `json:"source"`
}

// Arc is the fixed six-part narrative shape.
type Arc struct {
	Introduction      string          `json:"introduction"`
	Development       string          `json:"development"`
	DevelopmentVerses []VersePassage  `json:"development_verses"`
	Culmination       *VersePassage   `json:"culmination,omitempty"`
	Conclusion        string          `json:"conclusion"`
	PracticalGuidance []GuidancePoint `json:"practical_guidance"`
	FollowUps         []string        `json:"follow_up_suggestions"`
}

// Structure is the narrative built once per synthesis call.
type Structure struct {
	PrimaryTheme     string   `json:"primary_theme"`
	SupportingThemes []string `json:"supporting_themes"`
	Arc              Arc      `json:"arc"`
}

// Structurer builds the narrative arc from clustered themes and the verse
// pool. Every field is generated deterministically from the same inputs so
// the structure stays reproducible independent of any text-generation call.
type Structurer struct{}

func New() *Structurer {
	return &Structurer{}
}

func (s *Structurer) Build(outcome cluster.Outcome, verses []store.Verse) *Structure {
	if outcome.Primary == nil {
		return nil
	}

	primary := outcome.Primary.Theme
	supporting := outcome.ThemeNames()

	arc := Arc{
		Introduction:      s.introduction(primary),
		Development:       s.development(primary, supporting),
		DevelopmentVerses: s.representativeVerses(outcome),
		Culmination:       s.essenceVerse(primary, verses),
		Conclusion:        s.conclusion(primary),
		PracticalGuidance: s.practicalGuidance(verses),
		FollowUps:         s.followUps(primary),
	}

	return &Structure{
		PrimaryTheme:     primary,
		SupportingThemes: supporting,
		Arc:              arc,
	}
}

func (s *Structurer) introduction(primary string) string {
	return fmt.Sprintf(
		"Your question touches upon %s, a theme the scriptures return to again and again.",
		humanTheme(primary))
}

func (s *Structurer) development(primary string, supporting []string) string {
	if len(supporting) == 0 {
		return fmt.Sprintf(
			"The verses below explore %s from several angles.", humanTheme(primary))
	}

	names := make([]string, len(supporting))
	for i, t := range supporting {
		names[i] = humanTheme(t)
	}
	return fmt.Sprintf(
		"The teachings weave %s together with %s, each verse illuminating another facet.",
		humanTheme(primary), strings.Join(names, " and "))
}

// representativeVerses picks up to two verses from the primary group.
func (s *Structurer) representativeVerses(outcome cluster.Outcome) []VersePassage {
	verses := outcome.Primary.Verses
	limit := len(verses)
	if limit > 2 {
		limit = 2
	}

	passages := make([]VersePassage, 0, limit)
	for _, v := range verses[:limit] {
		passages = append(passages, VersePassage{
			SanskritText:   v.SanskritText,
			Translation:    v.Translation,
			Interpretation: v.Interpretation,
			Source:         v.Reference,
		})
	}
	return passages
}

// essenceVerse is the highest-relevance verse within the primary theme,
// falling back to the highest-relevance verse overall.
func (s *Structurer) essenceVerse(primary string, verses []store.Verse) *VersePassage {
	var best *store.Verse
	for i := range verses {
		v := &verses[i]
		if v.ClusterTheme != primary {
			continue
		}
		if best == nil || v.RelevanceScore > best.RelevanceScore {
			best = v
		}
	}
	if best == nil {
		for i := range verses {
			v := &verses[i]
			if best == nil || v.RelevanceScore > best.RelevanceScore {
				best = v
			}
		}
	}
	if best == nil {
		return nil
	}

	return &VersePassage{
		SanskritText:   best.SanskritText,
		Translation:    best.Translation,
		Interpretation: best.Interpretation,
		Source:         best.Reference,
	}
}

func (s *Structurer) conclusion(primary string) string {
	return fmt.Sprintf(
		"May these reflections on %s accompany you; the verses reward slow, repeated contemplation.",
		humanTheme(primary))
}

// practicalGuidance derives up to three insights from verses that carry an
// interpretive annotation.
func (s *Structurer) practicalGuidance(verses []store.Verse) []GuidancePoint {
	var points []GuidancePoint
	for _, v := range verses {
		if v.Interpretation == "" {
			continue
		}
		points = append(points, GuidancePoint{
			Insight: v.Interpretation,
			Source:  v.Reference,
		})
		if len(points) == 3 {
			break
		}
	}
	return points
}

func (s *Structurer) followUps(primary string) []string {
	theme := humanTheme(primary)
	return []string{
		fmt.Sprintf("How does %s show up in your daily life right now?", theme),
		fmt.Sprintf("Which verse on %s speaks most directly to your situation?", theme),
		fmt.Sprintf("Would you like to explore how the scriptures relate %s to inner peace?", theme),
	}
}

// humanTheme renders internal theme labels for prose.
func humanTheme(theme string) string {
	switch theme {
	case "general", "general_spiritual":
		return "the spiritual path"
	default:
		return strings.ReplaceAll(theme, "_", " ")
	}
}
