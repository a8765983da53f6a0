package dialogue

import (
	"log"
	"math"
	"strings"

	"ai-guidance-be/pkg/store"
)

// Intent labels, used for logging and query shaping only; never a hard gate.
const (
	IntentKnowledgeSeeking = "knowledge_seeking"
	IntentGuidanceSeeking  = "guidance_seeking"
	IntentMeaningSeeking   = "meaning_seeking"
	IntentEthicalGuidance  = "ethical_guidance"
	IntentGeneralInquiry   = "general_inquiry"
)

// topicShiftThreshold: overlap below this declares a new topic.
const topicShiftThreshold = 0.3

// deepeningVocabulary signals the user wants more depth on the same topic,
// which still warrants fresh retrieval.
var deepeningVocabulary = []string{
	"deeper", "further", "elaborate", "more detail", "expand", "go on", "tell me more",
}

var intentVocabulary = []struct {
	intent   string
	keywords []string
}{
	{IntentKnowledgeSeeking, []string{"what is", "what does", "who is", "define", "explain", "meaning of"}},
	{IntentEthicalGuidance, []string{"should i", "is it right", "is it wrong", "moral", "ethical"}},
	{IntentGuidanceSeeking, []string{"how do i", "how can i", "help me", "guide", "struggling", "advice"}},
	{IntentMeaningSeeking, []string{"why", "purpose", "meaning of life", "point of", "significance"}},
}

// Decision is the per-question output of the policy engine.
type Decision struct {
	IsTopicShift  bool
	Confidence    float64
	OverlapRatio  float64
	NeedsNewQuery bool
	Reason        string
	Intent        string
	Themes        []string
	Query         string
	ThemeHints    []string
}

// Engine decides, per incoming question, whether the topic shifted and
// whether fresh retrieval is required, from the session's recent history.
type Engine struct {
	logger *log.Logger
}

func NewEngine(logger *log.Logger) *Engine {
	return &Engine{logger: logger}
}

// Decide inspects the last 3 turns. An empty history is always a topic
// shift with confidence 1.0: the first question always triggers retrieval.
func (e *Engine) Decide(question string, session *store.ConversationSession) Decision {
	themes := ExtractThemes(question)
	intent := ClassifyIntent(question)

	decision := Decision{
		Intent:     intent,
		Themes:     themes,
		Query:      question,
		ThemeHints: themeHints(themes),
	}

	var lastTurn *store.Turn
	var recent []*store.Turn
	if session != nil {
		lastTurn = session.LastTurn()
		recent = session.RecentTurns(3)
	}

	if lastTurn == nil {
		decision.IsTopicShift = true
		decision.Confidence = 1.0
		decision.NeedsNewQuery = true
		decision.Reason = "first question in session"
		e.log(question, decision)
		return decision
	}

	overlap := overlapRatio(lastTurn.Question.Themes, themes)
	decision.OverlapRatio = overlap
	decision.Confidence = math.Abs(overlap-0.5) * 2
	decision.IsTopicShift = overlap < topicShiftThreshold

	switch {
	case decision.IsTopicShift:
		decision.NeedsNewQuery = true
		decision.Reason = "topic shift detected"
	case !anyVerseData(recent):
		decision.NeedsNewQuery = true
		decision.Reason = "no cached verse data in recent turns"
	case isDeepening(question):
		decision.NeedsNewQuery = true
		decision.Reason = "deepening request on same topic"
	default:
		decision.NeedsNewQuery = false
		decision.Reason = "continuation with cached context"
	}

	e.log(question, decision)
	return decision
}

func (e *Engine) log(question string, d Decision) {
	if e.logger == nil {
		return
	}
	e.logger.Printf("[POLICY] shift=%v conf=%.2f overlap=%.2f retrieve=%v intent=%s reason=%q q=%q",
		d.IsTopicShift, d.Confidence, d.OverlapRatio, d.NeedsNewQuery, d.Intent, d.Reason, truncate(question, 80))
}

// overlapRatio = |intersection| / max(|previous|, |new|).
func overlapRatio(previous, current []string) float64 {
	if len(previous) == 0 && len(current) == 0 {
		return 0
	}

	prevSet := make(map[string]bool, len(previous))
	for _, t := range previous {
		prevSet[t] = true
	}

	var intersection int
	for _, t := range current {
		if prevSet[t] {
			intersection++
		}
	}

	denom := len(previous)
	if len(current) > denom {
		denom = len(current)
	}
	if denom == 0 {
		return 0
	}
	return float64(intersection) / float64(denom)
}

func anyVerseData(turns []*store.Turn) bool {
	for _, t := range turns {
		if t.HasVerseData() {
			return true
		}
	}
	return false
}

func isDeepening(question string) bool {
	lowered := strings.ToLower(question)
	for _, phrase := range deepeningVocabulary {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// ClassifyIntent buckets the question with a keyword heuristic.
func ClassifyIntent(question string) string {
	lowered := strings.ToLower(question)
	for _, entry := range intentVocabulary {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.intent
			}
		}
	}
	return IntentGeneralInquiry
}

// themeHints passes matched themes to the retrieval backend, skipping the
// catch-all label which carries no signal.
func themeHints(themes []string) []string {
	hints := make([]string, 0, len(themes))
	for _, t := range themes {
		if t != ThemeGeneral {
			hints = append(hints, t)
		}
	}
	return hints
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
