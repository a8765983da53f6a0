package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"ai-guidance-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func newTurn(text, intent string, themes []string) *store.Turn {
	return &store.Turn{
		ID:        fmt.Sprintf("turn-%s", text),
		Timestamp: time.Now(),
		Question:  store.QuestionRecord{Text: text, Intent: intent, Themes: themes},
	}
}

func TestAppendTurnCreatesSessionLazily(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 50)

	_, found := repo.Get("s1")
	assert.False(t, found)

	session := repo.AppendTurn("s1", newTurn("q1", "general_inquiry", []string{"dharma"}))

	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, 1, session.TotalTurns)
	assert.Len(t, session.Turns, 1)

	got, found := repo.Get("s1")
	assert.True(t, found)
	assert.Equal(t, session, got)
}

func TestAppendTurnTrimsToMaxButCountsAll(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 5)

	for i := 0; i < 8; i++ {
		repo.AppendTurn("s1", newTurn(fmt.Sprintf("q%d", i), "general_inquiry", nil))
	}

	session, found := repo.Get("s1")
	assert.True(t, found)
	assert.Len(t, session.Turns, 5, "retained list is capped")
	assert.Equal(t, 8, session.TotalTurns, "TotalTurns counts dropped turns too")

	// most recent turns survive
	assert.Equal(t, "q7", session.LastTurn().Question.Text)
	assert.Equal(t, "q3", session.Turns[0].Question.Text)
}

func TestAppendTurnLastActivityMonotone(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 50)

	first := repo.AppendTurn("s1", newTurn("q1", "general_inquiry", nil))
	before := first.LastActivity

	second := repo.AppendTurn("s1", newTurn("q2", "general_inquiry", nil))

	assert.False(t, second.LastActivity.Before(before), "lastActivity must never decrease")
}

func TestMetadataAggregation(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 50)

	repo.AppendTurn("s1", newTurn("q1", "knowledge_seeking", []string{"dharma", "karma"}))
	repo.AppendTurn("s1", newTurn("q2", "guidance_seeking", []string{"karma", "peace"}))

	session, _ := repo.Get("s1")

	assert.Equal(t, []string{"dharma", "karma", "peace"}, session.Metadata.DistinctThemes)
	assert.Equal(t, []string{"knowledge_seeking", "guidance_seeking"}, session.Metadata.DistinctIntents)
	assert.Equal(t, "guidance_seeking", session.Metadata.LastIntent)
	assert.Equal(t, 2, session.Metadata.ConversationDepth)
}

func TestExpiredSessionNotFound(t *testing.T) {
	repo := NewConversationRepository(30*time.Millisecond, time.Hour, 50)

	repo.AppendTurn("s1", newTurn("q1", "general_inquiry", nil))
	time.Sleep(60 * time.Millisecond)

	_, found := repo.Get("s1")
	assert.False(t, found, "expired session must behave exactly like a missing one")
}

func TestAppendResetsExpiry(t *testing.T) {
	repo := NewConversationRepository(80*time.Millisecond, time.Hour, 50)

	repo.AppendTurn("s1", newTurn("q1", "general_inquiry", nil))
	time.Sleep(50 * time.Millisecond)
	repo.AppendTurn("s1", newTurn("q2", "general_inquiry", nil))
	time.Sleep(50 * time.Millisecond)

	// 100ms after creation but only 50ms after last append
	_, found := repo.Get("s1")
	assert.True(t, found, "append must reset the inactivity timer")
}

func TestDeleteRemovesSession(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 50)

	repo.AppendTurn("s1", newTurn("q1", "general_inquiry", nil))
	assert.Equal(t, 1, repo.Count())

	repo.Delete("s1")

	_, found := repo.Get("s1")
	assert.False(t, found)
	assert.Equal(t, 0, repo.Count())
}

func TestTouch(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 50)

	assert.False(t, repo.Touch("missing"))

	repo.AppendTurn("s1", newTurn("q1", "general_inquiry", nil))
	assert.True(t, repo.Touch("s1"))

	session, _ := repo.Get("s1")
	assert.Equal(t, 1, session.TotalTurns, "touch must not mutate history")
}

func TestGetReturnsSnapshot(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 50)

	repo.AppendTurn("s1", newTurn("q1", "knowledge_seeking", []string{"dharma"}))
	before, found := repo.Get("s1")
	assert.True(t, found)

	repo.AppendTurn("s1", newTurn("q2", "guidance_seeking", []string{"peace"}))

	// the earlier snapshot is unaffected by later appends
	assert.Len(t, before.Turns, 1)
	assert.Equal(t, 1, before.TotalTurns)
	assert.Equal(t, []string{"dharma"}, before.Metadata.DistinctThemes)

	after, _ := repo.Get("s1")
	assert.Len(t, after.Turns, 2)
	assert.Equal(t, 2, after.TotalTurns)
}

func TestConcurrentReadAndAppend(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 100)

	const turns = 50
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < turns; i++ {
			repo.AppendTurn("s1", newTurn(fmt.Sprintf("q%d", i), "general_inquiry", []string{"dharma"}))
		}
	}()

	// readers walk the turn list while the writer appends; snapshots keep
	// this free of torn reads
	for {
		session, found := repo.Get("s1")
		if found {
			count := 0
			for _, turn := range session.Turns {
				assert.NotNil(t, turn)
				count++
			}
			assert.Equal(t, len(session.Turns), count)
		}
		select {
		case <-done:
			session, _ := repo.Get("s1")
			assert.Equal(t, turns, session.TotalTurns)
			return
		default:
		}
	}
}

func TestAppendTurnExistingRequiresLiveSession(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 50)

	_, ok := repo.AppendTurnExisting("never-created", newTurn("q1", "general_inquiry", nil))
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Count(), "a dead session must not be resurrected")

	repo.AppendTurn("s1", newTurn("q1", "general_inquiry", nil))
	session, ok := repo.AppendTurnExisting("s1", newTurn("q2", "general_inquiry", nil))
	assert.True(t, ok)
	assert.Equal(t, 2, session.TotalTurns)
}

func TestAppendTurnExistingExpiredSession(t *testing.T) {
	repo := NewConversationRepository(30*time.Millisecond, time.Hour, 50)

	repo.AppendTurn("s1", newTurn("q1", "general_inquiry", nil))
	time.Sleep(60 * time.Millisecond)

	_, ok := repo.AppendTurnExisting("s1", newTurn("q2", "general_inquiry", nil))
	assert.False(t, ok, "expiry mid-conversation must not recreate the session")
}

func TestOnExpiredFiresForTTLEviction(t *testing.T) {
	repo := NewConversationRepository(30*time.Millisecond, 20*time.Millisecond, 50)

	expired := make(chan *store.ConversationSession, 1)
	repo.OnExpired(func(session *store.ConversationSession) {
		expired <- session
	})

	repo.AppendTurn("s1", newTurn("q1", "general_inquiry", nil))
	repo.AppendTurn("s1", newTurn("q2", "general_inquiry", nil))

	select {
	case session := <-expired:
		assert.Equal(t, "s1", session.ID)
		assert.Equal(t, 2, session.TotalTurns)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor sweep did not report the expired session")
	}
}

func TestOnExpiredFiresForExplicitDelete(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 50)

	expired := make(chan *store.ConversationSession, 1)
	repo.OnExpired(func(session *store.ConversationSession) {
		expired <- session
	})

	repo.AppendTurn("s1", newTurn("q1", "general_inquiry", nil))
	repo.Delete("s1")

	select {
	case session := <-expired:
		assert.Equal(t, "s1", session.ID)
	case <-time.After(time.Second):
		t.Fatal("delete did not report the evicted session")
	}
}

func TestConcurrentAppendsSameSession(t *testing.T) {
	repo := NewConversationRepository(time.Hour, time.Hour, 200)

	const writers = 20
	const perWriter = 5

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				repo.AppendTurn("s1", newTurn(fmt.Sprintf("w%d-q%d", w, i), "general_inquiry", nil))
			}
		}(w)
	}
	wg.Wait()

	session, found := repo.Get("s1")
	assert.True(t, found)
	assert.Equal(t, writers*perWriter, session.TotalTurns)
	assert.Len(t, session.Turns, writers*perWriter)
}
