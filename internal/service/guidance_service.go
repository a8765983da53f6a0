package service

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"ai-guidance-be/internal/apperror"
	"ai-guidance-be/internal/config"
	"ai-guidance-be/internal/dto"
	"ai-guidance-be/internal/pkg/serverutils"
	"ai-guidance-be/internal/repository/memory"
	"ai-guidance-be/pkg/dialogue"
	"ai-guidance-be/pkg/events"
	"ai-guidance-be/pkg/llm"
	pktNats "ai-guidance-be/pkg/nats"
	"ai-guidance-be/pkg/retrieval"
	"ai-guidance-be/pkg/store"
	"ai-guidance-be/pkg/synthesis"

	"github.com/google/uuid"
)

// IGuidanceService defines the guidance conversation surface.
type IGuidanceService interface {
	Synthesize(ctx context.Context, request *dto.SynthesizeRequest) (*dto.SynthesizeResponse, error)
	Continue(ctx context.Context, request *dto.ContinueRequest) (*dto.SynthesizeResponse, error)
	GetConversation(ctx context.Context, sessionID string, limit, offset int) (*dto.ConversationResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// guidanceService coordinates the dialogue policy, retrieval, synthesis
// pipeline and conversation store for each incoming question.
type guidanceService struct {
	policy           *dialogue.Engine
	orchestrator     *synthesis.Orchestrator
	retriever        retrieval.Provider
	conversationRepo *memory.ConversationRepository
	publisher        *PublisherService
	natsPub          *pktNats.Publisher
	retrievalTimeout time.Duration
	pipelineLogger   *log.Logger
}

// NewGuidanceService wires the domain components. natsPub may be nil when
// the event bus is unreachable; publishing is best effort.
func NewGuidanceService(
	cfg *config.Config,
	llmProvider llm.LLMProvider,
	retriever retrieval.Provider,
	conversationRepo *memory.ConversationRepository,
	publisher *PublisherService,
	natsPub *pktNats.Publisher,
) IGuidanceService {

	pipelineLogger := initPipelineLogger()

	orchestrator := synthesis.NewOrchestrator(llmProvider, pipelineLogger, synthesis.Options{
		CitationSeed:      cfg.Guidance.CitationSeed,
		GenerationTimeout: cfg.Guidance.GenerationTimeout,
	})

	// Every way a session can leave the store (janitor sweep, TTL, explicit
	// delete) funnels through this hook, so the expiry event cannot be
	// missed. Publishing is best effort on both buses.
	conversationRepo.OnExpired(func(session *store.ConversationSession) {
		event := events.NewSessionExpired(session.ID, session.TotalTurns)
		if publisher != nil {
			if err := publisher.Publish(event); err != nil {
				pipelineLogger.Printf("[EVENTS] In-process publish failed: %v", err)
			}
		}
		if natsPub != nil {
			if err := natsPub.Publish(context.Background(), event); err != nil {
				pipelineLogger.Printf("[EVENTS] NATS publish failed: %v", err)
			}
		}
	})

	return &guidanceService{
		policy:           dialogue.NewEngine(pipelineLogger),
		orchestrator:     orchestrator,
		retriever:        retriever,
		conversationRepo: conversationRepo,
		publisher:        publisher,
		natsPub:          natsPub,
		retrievalTimeout: cfg.Guidance.RetrievalTimeout,
		pipelineLogger:   pipelineLogger,
	}
}

func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "synthesis.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[SYNTHESIS] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// Synthesize answers a question, creating the session lazily when no id is
// supplied.
func (gs *guidanceService) Synthesize(ctx context.Context, request *dto.SynthesizeRequest) (*dto.SynthesizeResponse, error) {
	if err := serverutils.RequireNonEmpty("question", request.Question); err != nil {
		return nil, err
	}

	sessionID := request.SessionId
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	return gs.answer(ctx, sessionID, request.Question, request.VerseData, false)
}

// Continue extends an existing conversation; an unknown or expired session
// id is a not-found condition (a new id must be used to resume).
func (gs *guidanceService) Continue(ctx context.Context, request *dto.ContinueRequest) (*dto.SynthesizeResponse, error) {
	if err := serverutils.RequireNonEmpty("question", request.Question); err != nil {
		return nil, err
	}

	if _, found := gs.conversationRepo.Get(request.SessionId); !found {
		return nil, apperror.SessionNotFound(request.SessionId)
	}

	return gs.answer(ctx, request.SessionId, request.Question, nil, true)
}

// answer runs one full turn: policy decision, optional retrieval,
// synthesis and turn append. mustExist refuses to resurrect a session
// that expired while the turn was in flight.
func (gs *guidanceService) answer(
	ctx context.Context,
	sessionID string,
	question string,
	suppliedData *retrieval.Result,
	mustExist bool,
) (*dto.SynthesizeResponse, error) {

	session, _ := gs.conversationRepo.Get(sessionID)
	decision := gs.policy.Decide(question, session)

	var result *synthesis.Result
	usedRetrieval := false

	switch {
	case suppliedData != nil:
		result = gs.orchestrator.Synthesize(ctx, suppliedData, question)

	case decision.NeedsNewQuery:
		retrieved, err := gs.retrieve(ctx, decision)
		if err != nil {
			return nil, err
		}
		usedRetrieval = true
		result = gs.orchestrator.Synthesize(ctx, retrieved, question)

	default:
		result = gs.orchestrator.SynthesizeFromVerses(ctx, gs.cachedVerses(session), question)
	}

	result.Metadata["intent"] = decision.Intent
	result.Metadata["topic_shift"] = decision.IsTopicShift
	result.Metadata["shift_confidence"] = decision.Confidence
	result.Metadata["used_retrieval"] = usedRetrieval || suppliedData != nil

	turn := gs.buildTurn(question, decision, result)
	if mustExist {
		if _, ok := gs.conversationRepo.AppendTurnExisting(sessionID, turn); !ok {
			return nil, apperror.SessionNotFound(sessionID)
		}
	} else {
		gs.conversationRepo.AppendTurn(sessionID, turn)
	}

	gs.publishTurn(ctx, sessionID, turn, decision, usedRetrieval)

	return &dto.SynthesizeResponse{
		SessionId: sessionID,
		Narrative: result.Narrative,
		Citations: result.Citations,
		Sources:   result.Sources,
		Metadata:  result.Metadata,
	}, nil
}

func (gs *guidanceService) retrieve(ctx context.Context, decision dialogue.Decision) (*retrieval.Result, error) {
	retrievalCtx, cancel := context.WithTimeout(ctx, gs.retrievalTimeout)
	defer cancel()

	retrieved, err := gs.retriever.Search(retrievalCtx, decision.Query, decision.ThemeHints)
	if err != nil {
		gs.pipelineLogger.Printf("[RETRIEVAL] Backend call failed: %v", err)
		return nil, apperror.RetrievalUnavailable(err)
	}
	return retrieved, nil
}

// cachedVerses pulls grounding context from the most recent of the last 3
// turns that carries verse data.
func (gs *guidanceService) cachedVerses(session *store.ConversationSession) []store.Verse {
	if session == nil {
		return nil
	}
	recent := session.RecentTurns(3)
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].HasVerseData() {
			return recent[i].Context.Verses
		}
	}
	return nil
}

func (gs *guidanceService) buildTurn(question string, decision dialogue.Decision, result *synthesis.Result) *store.Turn {
	turn := &store.Turn{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Question: store.QuestionRecord{
			Text:   question,
			Intent: decision.Intent,
			Themes: decision.Themes,
		},
		Response: store.ResponseRecord{
			Narrative: result.Narrative,
			Citations: result.Citations,
			Sources:   result.Sources,
			Metadata:  result.Metadata,
		},
	}

	if result.Structure != nil {
		turn.Context = store.TurnContext{
			Verses:           result.Verses,
			PrimaryTheme:     result.Structure.PrimaryTheme,
			SupportingThemes: result.Structure.SupportingThemes,
		}
	}

	return turn
}

// publishTurn emits the turn to the in-process analytics bus and, when
// connected, to NATS. Failures are logged, never surfaced.
func (gs *guidanceService) publishTurn(
	ctx context.Context,
	sessionID string,
	turn *store.Turn,
	decision dialogue.Decision,
	usedRetrieval bool,
) {
	event := events.NewTurnSynthesized(
		sessionID,
		turn.ID,
		decision.Intent,
		turn.Context.PrimaryTheme,
		decision.Themes,
		usedRetrieval,
	)

	if gs.publisher != nil {
		if err := gs.publisher.Publish(event); err != nil {
			gs.pipelineLogger.Printf("[EVENTS] In-process publish failed: %v", err)
		}
	}

	if gs.natsPub != nil {
		if err := gs.natsPub.Publish(ctx, event); err != nil {
			gs.pipelineLogger.Printf("[EVENTS] NATS publish failed: %v", err)
		}
	}
}

// GetConversation returns the retained turn history, paginated.
func (gs *guidanceService) GetConversation(ctx context.Context, sessionID string, limit, offset int) (*dto.ConversationResponse, error) {
	session, found := gs.conversationRepo.Get(sessionID)
	if !found {
		return nil, apperror.SessionNotFound(sessionID)
	}

	if limit <= 0 || limit > len(session.Turns) {
		limit = len(session.Turns)
	}
	if offset < 0 {
		offset = 0
	}

	turns := make([]dto.TurnDTO, 0, limit)
	if offset < len(session.Turns) {
		end := offset + limit
		if end > len(session.Turns) {
			end = len(session.Turns)
		}
		for _, t := range session.Turns[offset:end] {
			turns = append(turns, dto.TurnDTO{
				Id:        t.ID,
				Timestamp: t.Timestamp,
				Question:  t.Question,
				Response:  t.Response,
			})
		}
	}

	return &dto.ConversationResponse{
		SessionId: sessionID,
		Turns:     turns,
		Total:     session.TotalTurns,
		Limit:     limit,
		Offset:    offset,
		Metadata:  session.Metadata,
	}, nil
}

// DeleteSession tears a session down explicitly. The expiry event is
// emitted by the repository's eviction hook, same as for TTL expiry.
func (gs *guidanceService) DeleteSession(ctx context.Context, sessionID string) error {
	if _, found := gs.conversationRepo.Get(sessionID); !found {
		return apperror.SessionNotFound(sessionID)
	}

	gs.conversationRepo.Delete(sessionID)
	return nil
}
