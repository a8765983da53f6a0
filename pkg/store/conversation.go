package store

import (
	"time"
)

// Verse is a normalized unit of retrieved scripture text.
// Immutable once produced by the normalizer; owned by the synthesis
// call that created it.
type Verse struct {
	ID             string  `json:"id"`
	SanskritText   string  `json:"sanskrit_text"`
	Translation    string  `json:"translation,omitempty"`
	Interpretation string  `json:"interpretation,omitempty"`
	Reference      string  `json:"reference"`
	RelevanceScore float64 `json:"relevance_score"` // always clamped to [0,1]
	ClusterTheme   string  `json:"cluster_theme"`
	CitationStyle  string  `json:"citation_style,omitempty"`
}

// Citation is a natural-language source attribution attached to a narrative.
type Citation struct {
	VerseRef      string `json:"verse_ref"`
	Sentence      string `json:"sentence"`
	PlacementHint string `json:"placement_hint"` // "development" | "culmination"
	ThemeContext  string `json:"theme_context"`
}

// SourceSummary describes one cited source for the response payload.
type SourceSummary struct {
	Reference string  `json:"reference"`
	Name      string  `json:"name"`
	Theme     string  `json:"theme"`
	Relevance float64 `json:"relevance"`
}

// QuestionRecord captures the user side of a turn.
type QuestionRecord struct {
	Text   string   `json:"text"`
	Intent string   `json:"intent"`
	Themes []string `json:"themes"`
}

// ResponseRecord captures the synthesized side of a turn.
type ResponseRecord struct {
	Narrative string                 `json:"narrative"`
	Citations []Citation             `json:"citations"`
	Sources   []SourceSummary        `json:"sources"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// TurnContext snapshots the verse data a turn was grounded on, so later
// turns on the same topic can be answered without a fresh retrieval call.
type TurnContext struct {
	Verses           []Verse  `json:"verses,omitempty"`
	PrimaryTheme     string   `json:"primary_theme,omitempty"`
	SupportingThemes []string `json:"supporting_themes,omitempty"`
}

// Turn is one question/response exchange. Appended, never mutated.
type Turn struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Question  QuestionRecord `json:"question"`
	Response  ResponseRecord `json:"response"`
	Context   TurnContext    `json:"context"`
}

// HasVerseData reports whether this turn carries usable grounding context.
func (t *Turn) HasVerseData() bool {
	return len(t.Context.Verses) > 0
}

// SessionMetadata aggregates what the conversation has covered so far.
type SessionMetadata struct {
	DistinctThemes    []string `json:"distinct_themes"`
	DistinctIntents   []string `json:"distinct_intents"`
	LastIntent        string   `json:"last_intent,omitempty"`
	ConversationDepth int      `json:"conversation_depth"`
}

// ConversationSession is the per-session dialogue state held in memory.
// TotalTurns counts every turn ever appended, including ones dropped by
// the retained-turn cap.
type ConversationSession struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActivity time.Time       `json:"last_activity"`
	Turns        []*Turn         `json:"turns"`
	TotalTurns   int             `json:"total_turns"`
	Metadata     SessionMetadata `json:"metadata"`
}

// RecentTurns returns up to n most-recent turns, oldest first.
func (s *ConversationSession) RecentTurns(n int) []*Turn {
	if len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// LastTurn returns the most recent turn, or nil for a fresh session.
func (s *ConversationSession) LastTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return s.Turns[len(s.Turns)-1]
}
