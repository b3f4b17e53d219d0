package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

func TestMessageStore_AddAndList(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	conv, err := store.ConversationStore().Create(ctx, "chat", 0)
	require.NoError(t, err)

	msg := domain.NewMessage(conv.ID, domain.RoleUser, "What is a grimoire?")
	msg.TokensUsed = 12
	msg.Metadata = map[string]any{"client": "desktop"}

	added, err := store.MessageStore().Add(ctx, msg)
	require.NoError(t, err)
	assert.NotZero(t, added.ID)

	reply := domain.NewMessage(conv.ID, domain.RoleAssistant, "A book of knowledge.")
	reply.ModelUsed = "claude-sonnet"
	_, err = store.MessageStore().Add(ctx, reply)
	require.NoError(t, err)

	messages, err := store.MessageStore().ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, 12, messages[0].TokensUsed)
	assert.Equal(t, "desktop", messages[0].Metadata["client"])
	assert.Equal(t, domain.RoleAssistant, messages[1].Role)
	assert.Equal(t, "claude-sonnet", messages[1].ModelUsed)
}

func TestMessageStore_AddValidation(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	conv, err := store.ConversationStore().Create(ctx, "chat", 0)
	require.NoError(t, err)

	_, err = store.MessageStore().Add(ctx, domain.Message{ConversationID: conv.ID, Role: "narrator", Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.MessageStore().Add(ctx, domain.Message{ConversationID: conv.ID, Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.MessageStore().Add(ctx, domain.Message{Role: domain.RoleUser, Content: "orphan"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMessageStore_AddToMissingConversation(t *testing.T) {
	store := newMemStore(t)

	_, err := store.MessageStore().Add(context.Background(),
		domain.NewMessage(9999, domain.RoleUser, "hello?"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMessageStore_AddBatch(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	conv, err := store.ConversationStore().Create(ctx, "bulk", 0)
	require.NoError(t, err)

	msgs := []domain.Message{
		domain.NewMessage(conv.ID, domain.RoleUser, "first"),
		domain.NewMessage(conv.ID, domain.RoleAssistant, "second"),
		domain.NewMessage(conv.ID, domain.RoleUser, "third"),
	}

	n, err := store.MessageStore().AddBatch(ctx, msgs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	listed, err := store.MessageStore().ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestMessageStore_AddBatchEmpty(t *testing.T) {
	store := newMemStore(t)

	n, err := store.MessageStore().AddBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMessageStore_AddBatchAtomic(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	conv, err := store.ConversationStore().Create(ctx, "bulk", 0)
	require.NoError(t, err)

	// The second message references a missing conversation; the whole
	// batch must fail without persisting the first.
	msgs := []domain.Message{
		domain.NewMessage(conv.ID, domain.RoleUser, "good"),
		domain.NewMessage(9999, domain.RoleUser, "bad"),
	}

	n, err := store.MessageStore().AddBatch(ctx, msgs)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, countRows(t, store, "messages"))
}

func TestMessageStore_ListEmptyConversation(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	conv, err := store.ConversationStore().Create(ctx, "quiet", 0)
	require.NoError(t, err)

	messages, err := store.MessageStore().ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
