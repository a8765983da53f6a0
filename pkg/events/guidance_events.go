package events

import "time"

// Event type codes for the guidance domain.
const (
	TypeTurnSynthesized = "TURN_SYNTHESIZED"
	TypeSessionExpired  = "SESSION_EXPIRED"
)

// NewTurnSynthesized reports one completed question/response exchange.
func NewTurnSynthesized(sessionID, turnID, intent, primaryTheme string, themes []string, usedRetrieval bool) Event {
	return BaseEvent{
		Type: TypeTurnSynthesized,
		Data: map[string]interface{}{
			"session_id":     sessionID,
			"turn_id":        turnID,
			"intent":         intent,
			"primary_theme":  primaryTheme,
			"themes":         themes,
			"used_retrieval": usedRetrieval,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionExpired reports an explicit session teardown.
func NewSessionExpired(sessionID string, totalTurns int) Event {
	return BaseEvent{
		Type: TypeSessionExpired,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"total_turns": totalTurns,
		},
		OccurredAt: time.Now(),
	}
}
