package citation

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"ai-guidance-be/pkg/store"
)

const (
	// MinRelevance is the floor a verse must exceed to be cited.
	MinRelevance = 0.7

	// MaxCitations caps attributions per narrative.
	MaxCitations = 3

	PlacementDevelopment = "development"
	PlacementCulmination = "culmination"
)

// sentence templates; {source} is the human-readable family name and
// {reference} the raw reference label.
var templates = []string{
	"As the %s teaches us in %s, this wisdom has guided seekers for millennia.",
	"The %s reminds us in %s of this timeless truth.",
	"In %s, the %s speaks directly to this very question.",
	"These words from %s of the %s carry the weight of lived tradition.",
}

// sourceFamily maps reference-string fragments to canonical source names.
// Order matters: more specific fragments first.
type sourceFamily struct {
	fragment string
	name     string
}

var sourceFamilies = []sourceFamily{
	{"bhagavad", "Bhagavad Gita"},
	{"gita", "Bhagavad Gita"},
	{"upanishad", "Upanishads"},
	{"yoga sutra", "Yoga Sutras of Patanjali"},
	{"yogasutra", "Yoga Sutras of Patanjali"},
	{"ramayana", "Ramayana"},
	{"mahabharata", "Mahabharata"},
	{"bhagavata purana", "Bhagavata Purana"},
	{"purana", "Puranas"},
	{"veda", "Vedas"},
	{"arthashastra", "Arthashastra"},
	{"arthasastra", "Arthashastra"},
	{"manu smriti", "Manu Smriti"},
	{"manusmriti", "Manu Smriti"},
	{"panchatantra", "Panchatantra"},
	{"dhammapada", "Dhammapada"},
}

// developmentThemes place a citation alongside the unfolding argument;
// everything peace/bliss-flavored belongs to the culmination.
var developmentThemes = map[string]bool{
	"dharma": true, "karma": true, "work": true, "relationships": true,
}

var culminationThemes = map[string]bool{
	"peace": true, "moksha": true, "bhakti": true, "yoga": true, "mind": true,
}

// Embedder selects the most relevant verses and produces natural-language
// attributions. Template choice is pseudo-random with an injectable seed so
// tests stay deterministic. Annotation only: the narrative text produced
// upstream is never mutated here.
type Embedder struct {
	rng *rand.Rand
}

func New(seed int64) *Embedder {
	return &Embedder{rng: rand.New(rand.NewSource(seed))}
}

// Embed returns at most MaxCitations citations, highest relevance first.
// Only verses strictly above MinRelevance qualify.
func (e *Embedder) Embed(verses []store.Verse) []store.Citation {
	eligible := make([]store.Verse, 0, len(verses))
	for _, v := range verses {
		if v.RelevanceScore > MinRelevance {
			eligible = append(eligible, v)
		}
	}

	sort.SliceStable(eligible, func(a, b int) bool {
		return eligible[a].RelevanceScore > eligible[b].RelevanceScore
	})
	if len(eligible) > MaxCitations {
		eligible = eligible[:MaxCitations]
	}

	citations := make([]store.Citation, 0, len(eligible))
	for _, v := range eligible {
		citations = append(citations, store.Citation{
			VerseRef:      v.Reference,
			Sentence:      e.sentence(v),
			PlacementHint: Placement(v.ClusterTheme),
			ThemeContext:  v.ClusterTheme,
		})
	}
	return citations
}

func (e *Embedder) sentence(v store.Verse) string {
	source := SourceName(v.Reference)
	reference := v.Reference
	if reference == "" {
		reference = "the received text"
	}

	switch e.rng.Intn(len(templates)) {
	case 0:
		return fmt.Sprintf(templates[0], source, reference)
	case 1:
		return fmt.Sprintf(templates[1], source, reference)
	case 2:
		return fmt.Sprintf(templates[2], reference, source)
	default:
		return fmt.Sprintf(templates[3], reference, source)
	}
}

// SourceName derives a human-readable source name from a reference string
// by matching known canonical source families. Unmatched references get a
// generic label rather than an error.
func SourceName(reference string) string {
	lowered := strings.ToLower(reference)
	for _, family := range sourceFamilies {
		if strings.Contains(lowered, family.fragment) {
			return family.name
		}
	}
	return "ancient scriptures"
}

// Placement decides where the attribution naturally belongs in the arc.
func Placement(theme string) string {
	if culminationThemes[theme] {
		return PlacementCulmination
	}
	if developmentThemes[theme] {
		return PlacementDevelopment
	}
	return PlacementDevelopment
}
