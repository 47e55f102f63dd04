package conversation

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(maxTurns int) *Store {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewStore(maxTurns, logger)
}

func TestStoreAppendAndHistory(t *testing.T) {
	store := newTestStore(10)

	store.Append("s1", "What are the symptoms of lung cancer?", "Persistent cough and chest pain.")
	store.Append("s1", "What about treatment?", "Surgery, chemotherapy and radiation.")

	history := store.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, "What are the symptoms of lung cancer?", history[0].Question)
	assert.Equal(t, "Persistent cough and chest pain.", history[0].Answer)
	assert.Equal(t, "What about treatment?", history[1].Question)
	assert.False(t, history[0].AskedAt.IsZero())
}

func TestStoreHistoryReturnsCopy(t *testing.T) {
	store := newTestStore(10)
	store.Append("s1", "q1", "a1")

	history := store.History("s1")
	require.Len(t, history, 1)
	history[0].Question = "mutated"

	assert.Equal(t, "q1", store.History("s1")[0].Question)
}

func TestStoreBoundedRetention(t *testing.T) {
	store := newTestStore(3)

	for i := 1; i <= 5; i++ {
		store.Append("s1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	history := store.History("s1")
	require.Len(t, history, 3)
	assert.Equal(t, "q3", history[0].Question)
	assert.Equal(t, "q4", history[1].Question)
	assert.Equal(t, "q5", history[2].Question)
}

func TestStoreSessionIsolation(t *testing.T) {
	store := newTestStore(10)

	store.Append("s1", "q1", "a1")
	store.Append("s2", "q2", "a2")

	require.Len(t, store.History("s1"), 1)
	require.Len(t, store.History("s2"), 1)
	assert.Equal(t, "q1", store.History("s1")[0].Question)
	assert.Equal(t, "q2", store.History("s2")[0].Question)
	assert.Equal(t, 2, store.Sessions())
}

func TestStoreUnknownSession(t *testing.T) {
	store := newTestStore(10)
	assert.Nil(t, store.History("missing"))
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(10)
	store.Append("s1", "q1", "a1")

	assert.True(t, store.Clear("s1"))
	assert.Nil(t, store.History("s1"))
	assert.Equal(t, 0, store.Sessions())

	assert.False(t, store.Clear("s1"))
}

func TestStoreDefaultMaxTurns(t *testing.T) {
	store := newTestStore(0)

	for i := 0; i < DefaultMaxTurns+5; i++ {
		store.Append("s1", fmt.Sprintf("q%d", i), "a")
	}

	assert.Len(t, store.History("s1"), DefaultMaxTurns)
}

func TestStoreConcurrentAppend(t *testing.T) {
	store := newTestStore(50)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				store.Append("shared", fmt.Sprintf("q%d-%d", g, i), "a")
				store.Append(fmt.Sprintf("own-%d", g), "q", "a")
			}
		}(g)
	}
	wg.Wait()

	assert.Len(t, store.History("shared"), 50)
	for g := 0; g < 10; g++ {
		assert.Len(t, store.History(fmt.Sprintf("own-%d", g)), 10)
	}
}
