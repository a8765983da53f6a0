package memory

import (
	"sync"
	"time"

	"ai-guidance-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// DefaultMaxTurns caps the retained turn list per session. Older turns are
// dropped; TotalTurns keeps the real count.
const DefaultMaxTurns = 50

// ConversationRepository holds per-session dialogue state in memory.
//
// Eviction runs on two redundant paths: the cache janitor sweeps all
// sessions periodically, and every append resets the per-session TTL, so
// the earlier of the two always wins. All access is serialized per
// session; readers receive a snapshot, never the live session, so a
// concurrent append cannot race a caller walking the turn list.
type ConversationRepository struct {
	cache    *cache.Cache
	maxTurns int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewConversationRepository creates a store with the given inactivity
// timeout and janitor sweep interval (defaults: 1 hour, 30 minutes).
func NewConversationRepository(ttl, sweep time.Duration, maxTurns int) *ConversationRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	if sweep <= 0 {
		sweep = 30 * time.Minute
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &ConversationRepository{
		cache:    cache.New(ttl, sweep),
		maxTurns: maxTurns,
		locks:    make(map[string]*sync.Mutex),
	}
}

// OnExpired registers a callback fired whenever a session leaves the
// store, whether collected by the janitor sweep after its TTL lapsed or
// removed by an explicit Delete. The callback receives a snapshot taken
// under the session lock.
func (r *ConversationRepository) OnExpired(fn func(*store.ConversationSession)) {
	r.cache.OnEvicted(func(sessionID string, value interface{}) {
		session, ok := value.(*store.ConversationSession)
		if !ok {
			return
		}
		lock := r.sessionLock(sessionID)
		lock.Lock()
		copied := snapshot(session)
		lock.Unlock()
		fn(copied)
	})
}

// Get returns a snapshot of the session, or false if it expired or never
// existed. The live session stays private to this repository: an append
// running concurrently can never be observed mid-mutation.
func (r *ConversationRepository) Get(sessionID string) (*store.ConversationSession, bool) {
	lock := r.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, found := r.live(sessionID)
	if !found {
		return nil, false
	}
	return snapshot(session), true
}

// AppendTurn appends to the session, creating it lazily on first use, and
// resets the session's expiry timer. The retained list is trimmed to the
// configured maximum; metadata aggregates every turn ever appended.
func (r *ConversationRepository) AppendTurn(sessionID string, turn *store.Turn) *store.ConversationSession {
	lock := r.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return r.appendLocked(sessionID, turn)
}

// AppendTurnExisting appends only while the session is still live. An
// expired session is never resurrected; callers get false and must start
// over with a new session id.
func (r *ConversationRepository) AppendTurnExisting(sessionID string, turn *store.Turn) (*store.ConversationSession, bool) {
	lock := r.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if _, found := r.live(sessionID); !found {
		return nil, false
	}
	return r.appendLocked(sessionID, turn), true
}

func (r *ConversationRepository) appendLocked(sessionID string, turn *store.Turn) *store.ConversationSession {
	now := time.Now()

	session, found := r.live(sessionID)
	if !found {
		session = &store.ConversationSession{
			ID:           sessionID,
			CreatedAt:    now,
			LastActivity: now,
		}
	}

	session.Turns = append(session.Turns, turn)
	if len(session.Turns) > r.maxTurns {
		session.Turns = session.Turns[len(session.Turns)-r.maxTurns:]
	}
	session.TotalTurns++

	// lastActivity is monotonically non-decreasing
	if now.After(session.LastActivity) {
		session.LastActivity = now
	}

	session.Metadata.DistinctThemes = mergeDistinct(session.Metadata.DistinctThemes, turn.Question.Themes)
	session.Metadata.DistinctIntents = mergeDistinct(session.Metadata.DistinctIntents, []string{turn.Question.Intent})
	session.Metadata.LastIntent = turn.Question.Intent
	session.Metadata.ConversationDepth = session.TotalTurns

	r.cache.Set(sessionID, session, cache.DefaultExpiration)
	return snapshot(session)
}

// Touch resets a session's expiry without mutating its history.
func (r *ConversationRepository) Touch(sessionID string) bool {
	lock := r.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, found := r.live(sessionID)
	if !found {
		return false
	}
	r.cache.Set(sessionID, session, cache.DefaultExpiration)
	return true
}

// Delete tears a session down explicitly; a new session id is required to
// resume (there is no transition back from expired).
func (r *ConversationRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)

	r.mu.Lock()
	delete(r.locks, sessionID)
	r.mu.Unlock()
}

// Count reports live (non-expired) sessions.
func (r *ConversationRepository) Count() int {
	return r.cache.ItemCount()
}

func (r *ConversationRepository) live(sessionID string) (*store.ConversationSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.ConversationSession), true
	}
	return nil, false
}

// snapshot copies everything an append mutates: the turn slice header and
// the metadata slices. Turn records themselves are append-only and safe
// to share.
func snapshot(s *store.ConversationSession) *store.ConversationSession {
	copied := *s
	copied.Turns = append([]*store.Turn(nil), s.Turns...)
	copied.Metadata.DistinctThemes = append([]string(nil), s.Metadata.DistinctThemes...)
	copied.Metadata.DistinctIntents = append([]string(nil), s.Metadata.DistinctIntents...)
	return &copied
}

func (r *ConversationRepository) sessionLock(sessionID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[sessionID] = lock
	}
	return lock
}

func mergeDistinct(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range incoming {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		existing = append(existing, v)
	}
	return existing
}
