package session

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(maxHistory int) *Store {
	return NewStore(maxHistory, zerolog.Nop())
}

func TestGetOrCreate(t *testing.T) {
	store := newTestStore(20)

	sess := store.GetOrCreate(1)
	require.NotNil(t, sess)
	assert.Empty(t, sess.History)
	assert.Nil(t, sess.Image)

	// Second call returns the same session
	again := store.GetOrCreate(1)
	assert.Same(t, sess, again)
	assert.Equal(t, 1, store.Count())
}

func TestAppendTurn_TrimsOldestFirst(t *testing.T) {
	store := newTestStore(20)

	for i := 0; i < 25; i++ {
		store.AppendTurn(1, RoleUser, fmt.Sprintf("message %d", i))
	}

	history := store.History(1)
	require.Len(t, history, 20)

	// The most recent 20 turns survive in original order
	for i, turn := range history {
		assert.Equal(t, fmt.Sprintf("message %d", i+5), turn.Content)
	}
}

func TestAppendExchange_KeepsPairsAligned(t *testing.T) {
	store := newTestStore(6)

	for i := 0; i < 10; i++ {
		store.AppendExchange(1, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	history := store.History(1)
	require.Len(t, history, 6)

	// History starts on a user turn and alternates
	for i, turn := range history {
		if i%2 == 0 {
			assert.Equal(t, RoleUser, turn.Role)
		} else {
			assert.Equal(t, RoleAssistant, turn.Role)
		}
	}
	assert.Equal(t, "q7", history[0].Content)
	assert.Equal(t, "a9", history[5].Content)
}

func TestHistory_ReturnsCopy(t *testing.T) {
	store := newTestStore(20)
	store.AppendTurn(1, RoleUser, "original")

	history := store.History(1)
	history[0].Content = "mutated"

	assert.Equal(t, "original", store.History(1)[0].Content)
}

func TestSetImageContext_ReplacesExisting(t *testing.T) {
	store := newTestStore(20)

	store.SetImageContext(1, []byte("first"), "image/jpeg", "a cat")
	store.SetImageContext(1, []byte("second"), "image/png", "a dog")

	img := store.ImageContext(1)
	require.NotNil(t, img)
	assert.Equal(t, []byte("second"), img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "a dog", img.Descriptor)
	assert.False(t, img.CapturedAt.IsZero())
}

func TestImageContext_NotSharedAcrossUsers(t *testing.T) {
	store := newTestStore(20)

	store.SetImageContext(1, []byte("photo"), "image/jpeg", "a cat")

	assert.NotNil(t, store.ImageContext(1))
	assert.Nil(t, store.ImageContext(2))
}

func TestClear(t *testing.T) {
	store := newTestStore(20)

	store.AppendExchange(1, "hello", "hi there")
	store.SetImageContext(1, []byte("photo"), "image/jpeg", "a cat")

	store.Clear(1)

	assert.Empty(t, store.History(1))
	assert.Nil(t, store.ImageContext(1))

	// Idempotent, including for unknown users
	store.Clear(1)
	store.Clear(99)
	assert.Empty(t, store.History(1))
}

func TestClear_DoesNotAffectOtherUsers(t *testing.T) {
	store := newTestStore(20)

	store.AppendTurn(1, RoleUser, "one")
	store.AppendTurn(2, RoleUser, "two")

	store.Clear(1)

	assert.Empty(t, store.History(1))
	assert.Len(t, store.History(2), 1)
}

func TestReset(t *testing.T) {
	store := newTestStore(20)

	store.AppendTurn(1, RoleUser, "one")
	store.AppendTurn(2, RoleUser, "two")
	require.Equal(t, 2, store.Count())

	store.Reset()

	assert.Equal(t, 0, store.Count())
	assert.Empty(t, store.History(1))
}

func TestNewStore_DefaultMaxHistory(t *testing.T) {
	store := NewStore(0, zerolog.Nop())
	assert.Equal(t, DefaultMaxHistory, store.MaxHistory())
}
