package dto

import (
	"time"

	"ai-guidance-be/pkg/retrieval"
	"ai-guidance-be/pkg/store"
)

// SynthesizeRequest starts (or extends) a guidance conversation. VerseData
// lets an upstream caller supply retrieval output directly; when omitted,
// the service consults the dialogue policy and may call the retrieval
// backend itself. SessionId is generated when omitted.
type SynthesizeRequest struct {
	Question  string                 `json:"question" validate:"required"`
	VerseData *retrieval.Result      `json:"verse_data,omitempty"`
	SessionId string                 `json:"session_id,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// ContinueRequest extends an existing conversation; unknown session ids
// are a not-found condition.
type ContinueRequest struct {
	Question  string                 `json:"question" validate:"required"`
	SessionId string                 `json:"session_id" validate:"required"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

type SynthesizeResponse struct {
	SessionId string                 `json:"session_id"`
	Narrative string                 `json:"narrative"`
	Citations []store.Citation       `json:"citations"`
	Sources   []store.SourceSummary  `json:"sources"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// TurnDTO is a turn without its verse snapshot; the grounding context is
// internal state, not API surface.
type TurnDTO struct {
	Id        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Question  store.QuestionRecord `json:"question"`
	Response  store.ResponseRecord `json:"response"`
}

type ConversationResponse struct {
	SessionId string                `json:"session_id"`
	Turns     []TurnDTO             `json:"turns"`
	Total     int                   `json:"total"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	Metadata  store.SessionMetadata `json:"metadata"`
}
