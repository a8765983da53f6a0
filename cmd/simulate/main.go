package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"ai-guidance-be/pkg/dialogue"
	"ai-guidance-be/pkg/retrieval"
	"ai-guidance-be/pkg/synthesis"

	"github.com/fatih/color"
)

// Offline driver for the synthesis pipeline: runs the dialogue policy and
// the full normalize→cluster→structure→cite sequence over fixture verses,
// without a retrieval backend or generation model. Useful for eyeballing
// narrative output after changing templates or clustering rules.

var fixtureScore = func(s float64) *float64 { return &s }

var fixtures = &retrieval.Result{
	Kind: retrieval.KindRanked,
	Ranked: []retrieval.Item{
		{
			ID:             "bg-2-47",
			Source:         "Bhagavad Gita 2.47",
			Text:           "karmaṇy evādhikāras te mā phaleṣu kadācana",
			Translation:    "You have a right to your actions alone, never to their fruits.",
			Interpretation: "Act from duty, releasing attachment to outcomes.",
			Score:          fixtureScore(0.95),
		},
		{
			ID:          "bg-3-35",
			Source:      "Bhagavad Gita 3.35",
			Text:        "śreyān sva-dharmo viguṇaḥ para-dharmāt sv-anuṣṭhitāt",
			Translation: "Better one's own duty done imperfectly than another's done well.",
			Score:       fixtureScore(0.82),
		},
		{
			ID:          "isha-1",
			Source:      "Isha Upanishad 1",
			Text:        "īśāvāsyam idaṁ sarvaṁ yat kiñca jagatyāṁ jagat",
			Translation: "All this, whatever moves in this moving world, is pervaded by the divine.",
			Score:       fixtureScore(0.64),
		},
		{
			ID:             "bg-2-48",
			Source:         "Bhagavad Gita 2.48",
			Text:           "yoga-sthaḥ kuru karmāṇi saṅgaṁ tyaktvā dhanañjaya",
			Translation:    "Established in yoga, perform your actions, abandoning attachment.",
			Interpretation: "Evenness of mind amid success and failure is called yoga.",
			Score:          fixtureScore(0.78),
		},
	},
}

func main() {
	question := flag.String("q", "What is my duty when work feels meaningless?", "question to run through the pipeline")
	flag.Parse()

	logger := log.New(os.Stderr, "[SIMULATE] ", log.LstdFlags)

	heading := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)
	dim := color.New(color.FgHiBlack)

	heading.Println("=== Dialogue Policy ===")
	engine := dialogue.NewEngine(logger)
	decision := engine.Decide(*question, nil)
	label.Printf("intent:     ")
	fmt.Println(decision.Intent)
	label.Printf("themes:     ")
	fmt.Println(decision.Themes)
	label.Printf("retrieve:   ")
	fmt.Printf("%v (%s)\n\n", decision.NeedsNewQuery, decision.Reason)

	heading.Println("=== Synthesis ===")
	orchestrator := synthesis.NewOrchestrator(nil, logger, synthesis.Options{CitationSeed: 42})
	result := orchestrator.Synthesize(context.Background(), fixtures, *question)

	fmt.Println(result.Narrative)
	fmt.Println()

	heading.Println("=== Citations ===")
	for _, c := range result.Citations {
		label.Printf("[%s] ", c.PlacementHint)
		fmt.Println(c.Sentence)
	}
	fmt.Println()

	heading.Println("=== Sources ===")
	for _, s := range result.Sources {
		fmt.Printf("%-22s %s", s.Reference, s.Name)
		dim.Printf("  (theme=%s relevance=%.2f)\n", s.Theme, s.Relevance)
	}
	fmt.Println()

	heading.Println("=== Metadata ===")
	for k, v := range result.Metadata {
		dim.Printf("%s=%v\n", k, v)
	}

	printFollowUps(result, label)
}

func printFollowUps(result *synthesis.Result, label *color.Color) {
	if result.Structure == nil {
		return
	}
	label.Println("\nFollow-up suggestions:")
	for _, f := range result.Structure.Arc.FollowUps {
		fmt.Println("  - " + f)
	}
}
