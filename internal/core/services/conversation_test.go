package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorevault/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lorevault/internal/core/domain"
)

func newTestEngine(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(context.Background(), sqlite.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func newConversationService(t *testing.T) *ConversationService {
	t.Helper()
	store := newTestEngine(t)
	return NewConversationService(store.ConversationStore(), store.MessageStore())
}

func TestConversationService_CreateTrimsTitle(t *testing.T) {
	svc := newConversationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "  Padded title  ", 0)
	require.NoError(t, err)
	assert.Equal(t, "Padded title", created.Title)

	_, err = svc.Create(ctx, "   ", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConversationService_MessagesRequireConversation(t *testing.T) {
	svc := newConversationService(t)

	_, err := svc.Messages(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationService_AddMessageValidates(t *testing.T) {
	svc := newConversationService(t)
	ctx := context.Background()

	conv, err := svc.Create(ctx, "chat", 0)
	require.NoError(t, err)

	_, err = svc.AddMessage(ctx, domain.Message{ConversationID: conv.ID, Role: "villain", Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddMessage(ctx, domain.Message{ConversationID: conv.ID, Role: domain.RoleUser, Content: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	msg, err := svc.AddMessage(ctx, domain.NewMessage(conv.ID, domain.RoleUser, "hello"))
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
}

func TestConversationService_AddMessagesRoundTrip(t *testing.T) {
	svc := newConversationService(t)
	ctx := context.Background()

	conv, err := svc.Create(ctx, "bulk", 0)
	require.NoError(t, err)

	n, err := svc.AddMessages(ctx, []domain.Message{
		domain.NewMessage(conv.ID, domain.RoleUser, "q"),
		domain.NewMessage(conv.ID, domain.RoleAssistant, "a"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	messages, err := svc.Messages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestConversationService_SearchMessages(t *testing.T) {
	svc := newConversationService(t)
	ctx := context.Background()

	conv, err := svc.Create(ctx, "field notes", 0)
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, domain.NewMessage(conv.ID, domain.RoleUser,
		"observations on wyvern migration"))
	require.NoError(t, err)

	hits, err := svc.SearchMessages(ctx, "  wyvern  ", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, conv.ID, hits[0].ConversationID)

	_, err = svc.SearchMessages(ctx, "   ", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConversationService_ListCapsLimit(t *testing.T) {
	svc := newConversationService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "only", 0)
	require.NoError(t, err)

	conversations, err := svc.List(ctx, 100000, -5, false)
	require.NoError(t, err)
	assert.Len(t, conversations, 1)
}
