package synthesis

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"ai-guidance-be/pkg/llm"
	"ai-guidance-be/pkg/retrieval"
	"ai-guidance-be/pkg/store"
	"ai-guidance-be/pkg/synthesis/citation"
	"ai-guidance-be/pkg/synthesis/cluster"
	"ai-guidance-be/pkg/synthesis/narrative"
	"ai-guidance-be/pkg/synthesis/normalizer"
)

const (
	// LowRelevanceThreshold flags weak grounding in metadata. Synthesis
	// still proceeds: partial grounding beats a hard failure in a guidance
	// application.
	LowRelevanceThreshold = 0.2

	defaultGenerationTimeout = 60 * time.Second
)

// FallbackHumble is returned when retrieval yields no usable verses.
const FallbackHumble = "I searched the scriptures but could not find verses that speak directly to your question. " +
	"Rather than offer words without grounding, I would invite you to rephrase the question, " +
	"or to sit with it a while longer — sometimes the question itself is the beginning of the answer."

// FallbackApologetic is returned when text generation fails twice.
const FallbackApologetic = "I found verses that speak to your question, but I am unable to weave them into " +
	"a full reflection right now. Please ask again in a moment; the sources themselves are listed below " +
	"and reward direct reading."

// placeholderMarkers disqualify a generated narrative.
var placeholderMarkers = []string{
	"[insert",
	"{source}",
	"{reference}",
	"lorem ipsum",
	"as an ai",
	"i cannot provide",
	"placeholder",
}

// Result is the public synthesize contract's return shape.
type Result struct {
	Narrative string                 `json:"narrative"`
	Citations []store.Citation       `json:"citations"`
	Sources   []store.SourceSummary  `json:"sources"`
	Metadata  map[string]interface{} `json:"metadata"`

	// Structure and Verses are exposed for turn context snapshots.
	Structure *narrative.Structure `json:"-"`
	Verses    []store.Verse        `json:"-"`
}

// Options tune a single orchestrator instance.
type Options struct {
	CitationSeed      int64
	GenerationTimeout time.Duration
}

// Orchestrator sequences normalize → cluster → structure → generate → cite
// into one synthesis call, with validation and fallback policy. Generation
// failures never propagate: the caller always receives a narrative.
type Orchestrator struct {
	normalizer        *normalizer.Normalizer
	clusterer         *cluster.Clusterer
	structurer        *narrative.Structurer
	embedder          *citation.Embedder
	llmProvider       llm.LLMProvider
	logger            *log.Logger
	generationTimeout time.Duration
}

// NewOrchestrator wires the pipeline. llmProvider may be nil, in which case
// the deterministic template rendering of the arc is the narrative.
func NewOrchestrator(llmProvider llm.LLMProvider, logger *log.Logger, opts Options) *Orchestrator {
	timeout := opts.GenerationTimeout
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &Orchestrator{
		normalizer:        normalizer.New(logger),
		clusterer:         cluster.New(),
		structurer:        narrative.New(),
		embedder:          citation.New(opts.CitationSeed),
		llmProvider:       llmProvider,
		logger:            logger,
		generationTimeout: timeout,
	}
}

// Synthesize runs the full pipeline over a raw retrieval result.
func (o *Orchestrator) Synthesize(ctx context.Context, result *retrieval.Result, question string) *Result {
	verses := o.normalizer.Normalize(result)
	return o.SynthesizeFromVerses(ctx, verses, question)
}

// SynthesizeFromVerses runs the pipeline over already-normalized verses,
// which lets a continued conversation reuse a prior turn's grounding.
func (o *Orchestrator) SynthesizeFromVerses(ctx context.Context, verses []store.Verse, question string) *Result {
	if len(verses) == 0 {
		o.logger.Printf("[SYNTHESIS] No usable verses; returning humble fallback")
		return &Result{
			Narrative: FallbackHumble,
			Citations: []store.Citation{},
			Sources:   []store.SourceSummary{},
			Metadata: map[string]interface{}{
				"fallback":    "no_grounding",
				"verse_count": 0,
			},
		}
	}

	metadata := map[string]interface{}{
		"verse_count": len(verses),
	}

	// Permissive reference validation: free-form or missing references are
	// a soft warning only, since upstream retrieval metadata is not always
	// well-formed.
	for _, v := range verses {
		if v.Reference == "" {
			o.logger.Printf("[SYNTHESIS] Soft warning: verse %s has no reference label", v.ID)
		}
	}

	avg := averageRelevance(verses)
	metadata["average_relevance"] = avg
	if avg < LowRelevanceThreshold {
		o.logger.Printf("[SYNTHESIS] Low average relevance %.3f; proceeding with flag", avg)
		metadata["low_relevance"] = true
	}

	outcome := o.clusterer.Cluster(verses)
	structure := o.structurer.Build(outcome, verses)
	metadata["primary_theme"] = structure.PrimaryTheme
	metadata["supporting_themes"] = structure.SupportingThemes

	narrativeText, generated := o.generateNarrative(ctx, question, structure, verses)
	metadata["llm_generated"] = generated
	if !generated && o.llmProvider != nil {
		metadata["fallback"] = "generation_failure"
	}

	citations := o.embedder.Embed(verses)

	return &Result{
		Narrative: narrativeText,
		Citations: citations,
		Sources:   sourceSummaries(verses),
		Metadata:  metadata,
		Structure: structure,
		Verses:    verses,
	}
}

// generateNarrative asks the text backend to turn the arc into prose. One
// retry with a stricter instruction; after that the deterministic rendering
// (or the apologetic fallback) takes over. The raw backend error never
// reaches the caller.
func (o *Orchestrator) generateNarrative(
	ctx context.Context,
	question string,
	structure *narrative.Structure,
	verses []store.Verse,
) (string, bool) {

	rendered := RenderArc(structure)
	if o.llmProvider == nil {
		return rendered, false
	}

	prompt := o.buildGroundingPrompt(question, structure, verses, false)
	text, err := o.callGeneration(ctx, prompt)
	if err == nil && !containsPlaceholder(text) {
		return text, true
	}
	if err != nil {
		o.logger.Printf("[SYNTHESIS] Generation failed: %v (retrying once)", err)
	} else {
		o.logger.Printf("[SYNTHESIS] Generation returned placeholder content (retrying once)")
	}

	strictPrompt := o.buildGroundingPrompt(question, structure, verses, true)
	text, err = o.callGeneration(ctx, strictPrompt)
	if err == nil && !containsPlaceholder(text) {
		return text, true
	}
	if err != nil {
		o.logger.Printf("[SYNTHESIS] Retry failed: %v; using apologetic fallback", err)
	} else {
		o.logger.Printf("[SYNTHESIS] Retry still contains placeholder; using apologetic fallback")
	}

	return FallbackApologetic, false
}

func (o *Orchestrator) callGeneration(ctx context.Context, prompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, o.generationTimeout)
	defer cancel()

	text, err := o.llmProvider.Generate(genCtx, prompt, llm.WithTemperature(0.4))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("generation backend returned empty text")
	}
	return strings.TrimSpace(text), nil
}

func (o *Orchestrator) buildGroundingPrompt(
	question string,
	structure *narrative.Structure,
	verses []store.Verse,
	strict bool,
) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a spiritual guide answering from Hindu scripture.\n")
	prompt.WriteString("Weave the narrative arc and verses below into warm, flowing prose.\n")
	prompt.WriteString("Ground every claim in the provided verses. Do NOT use outside knowledge.\n")
	if strict {
		prompt.WriteString("STRICT: Output ONLY the finished narrative. No placeholders, no brackets,\n")
		prompt.WriteString("no template markers, no meta commentary about being an assistant.\n")
	}
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<narrative_arc>\n")
	prompt.WriteString(fmt.Sprintf("Primary theme: %s\n", structure.PrimaryTheme))
	if len(structure.SupportingThemes) > 0 {
		prompt.WriteString(fmt.Sprintf("Supporting themes: %s\n", strings.Join(structure.SupportingThemes, ", ")))
	}
	prompt.WriteString(fmt.Sprintf("Introduction: %s\n", structure.Arc.Introduction))
	prompt.WriteString(fmt.Sprintf("Development: %s\n", structure.Arc.Development))
	prompt.WriteString(fmt.Sprintf("Conclusion: %s\n", structure.Arc.Conclusion))
	prompt.WriteString("</narrative_arc>\n\n")

	prompt.WriteString("<grounding_verses>\n")
	for i, v := range topVerses(verses, 5) {
		prompt.WriteString(fmt.Sprintf("--- Verse %d (%s) ---\n", i+1, v.Reference))
		prompt.WriteString(v.SanskritText)
		prompt.WriteString("\n")
		if v.Translation != "" {
			prompt.WriteString("Translation: " + v.Translation + "\n")
		}
		if v.Interpretation != "" {
			prompt.WriteString("Interpretation: " + v.Interpretation + "\n")
		}
	}
	prompt.WriteString("</grounding_verses>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</user_question>\n\n")

	prompt.WriteString("Narrative:")

	return prompt.String()
}

// RenderArc flattens the deterministic arc into readable prose. Used when
// no generation backend is configured and by offline tooling.
func RenderArc(structure *narrative.Structure) string {
	var b strings.Builder

	b.WriteString(structure.Arc.Introduction)
	b.WriteString("\n\n")
	b.WriteString(structure.Arc.Development)
	b.WriteString("\n")

	for _, p := range structure.Arc.DevelopmentVerses {
		b.WriteString("\n")
		b.WriteString(p.SanskritText)
		b.WriteString("\n")
		if p.Translation != "" {
			b.WriteString(p.Translation + "\n")
		}
		if p.Interpretation != "" {
			b.WriteString(p.Interpretation + "\n")
		}
		b.WriteString("— " + p.Source + "\n")
	}

	if c := structure.Arc.Culmination; c != nil {
		b.WriteString("\nAt the heart of it stands this verse:\n")
		b.WriteString(c.SanskritText + "\n")
		if c.Translation != "" {
			b.WriteString(c.Translation + "\n")
		}
		b.WriteString("— " + c.Source + "\n")
	}

	b.WriteString("\n" + structure.Arc.Conclusion)

	if len(structure.Arc.PracticalGuidance) > 0 {
		b.WriteString("\n\nTo carry into daily life:\n")
		for _, g := range structure.Arc.PracticalGuidance {
			b.WriteString(fmt.Sprintf("- %s (%s)\n", g.Insight, g.Source))
		}
	}

	return b.String()
}

func averageRelevance(verses []store.Verse) float64 {
	if len(verses) == 0 {
		return 0
	}
	var sum float64
	for _, v := range verses {
		sum += v.RelevanceScore
	}
	return sum / float64(len(verses))
}

func topVerses(verses []store.Verse, n int) []store.Verse {
	sorted := make([]store.Verse, len(verses))
	copy(sorted, verses)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].RelevanceScore > sorted[b].RelevanceScore
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func sourceSummaries(verses []store.Verse) []store.SourceSummary {
	summaries := make([]store.SourceSummary, 0, len(verses))
	seen := make(map[string]bool)
	for _, v := range verses {
		if v.Reference == "" || seen[v.Reference] {
			continue
		}
		seen[v.Reference] = true
		summaries = append(summaries, store.SourceSummary{
			Reference: v.Reference,
			Name:      citation.SourceName(v.Reference),
			Theme:     v.ClusterTheme,
			Relevance: v.RelevanceScore,
		})
	}
	return summaries
}

func containsPlaceholder(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
