package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herbqa/teachat-go/internal/conversation"
	"github.com/herbqa/teachat-go/internal/history"
)

// mockTransport mirrors transport.Transport with a pluggable function.
type mockTransport struct {
	fetch func(ctx context.Context, question string, onUpdate func(string)) error
}

func (m *mockTransport) FetchAnswer(ctx context.Context, question string, onUpdate func(string)) error {
	if m.fetch != nil {
		return m.fetch(ctx, question, onUpdate)
	}
	return nil
}

func TestCanSend(t *testing.T) {
	c := New(conversation.NewStore(nil), &mockTransport{}, nil, "sess")

	require.True(t, c.CanSend("金银花茶有什么功效？"))
	require.True(t, c.CanSend("  trimmed  "))
	require.False(t, c.CanSend(""))
	require.False(t, c.CanSend("   \t\n"))
}

func TestAsk_AppendsBothMessagesBeforeNetworkCompletes(t *testing.T) {
	store := conversation.NewStore(nil)

	mt := &mockTransport{fetch: func(ctx context.Context, question string, onUpdate func(string)) error {
		// By the time the transport runs, both messages must already exist.
		msgs := store.Messages()
		require.Len(t, msgs, 2)
		require.Equal(t, conversation.RoleUser, msgs[0].Role)
		require.Equal(t, question, msgs[0].Text)
		require.Equal(t, conversation.RoleAssistant, msgs[1].Role)
		require.Equal(t, ThinkingPlaceholder, msgs[1].Text)
		return nil
	}}

	c := New(store, mt, nil, "sess")
	require.NoError(t, c.Ask(context.Background(), "金银花茶有什么功效？"))
	require.Equal(t, 2, store.Len())
}

// Two streamed chunks rewrite the placeholder step by step.
func TestAsk_StreamedSnapshotsRewritePlaceholder(t *testing.T) {
	var texts []string
	var store *conversation.Store
	store = conversation.NewStore(func() {
		msgs := store.Messages()
		last := msgs[len(msgs)-1]
		if last.Role == conversation.RoleAssistant {
			texts = append(texts, last.Text)
		}
	})

	mt := &mockTransport{fetch: func(ctx context.Context, question string, onUpdate func(string)) error {
		onUpdate("金银花")
		onUpdate("金银花茶有清热功效")
		return nil
	}}

	recorder := history.Open(t.TempDir()) // memory-only fallback
	c := New(store, mt, recorder, "sess")

	require.NoError(t, c.Ask(context.Background(), "金银花茶有什么功效？"))
	require.Equal(t, []string{"正在思考…", "金银花", "金银花茶有清热功效"}, texts)
	require.False(t, c.InFlight())

	msgs := store.Messages()
	require.Equal(t, "金银花茶有清热功效", msgs[1].Text)

	// Both sides of the settled exchange reach the transcript.
	pending := recorder.Pending()
	require.Len(t, pending, 2)
	require.Equal(t, "金银花茶有什么功效？", pending[0].Content)
	require.Equal(t, "金银花茶有清热功效", pending[1].Content)
}

func TestAsk_TransportFailureShowsFixedText(t *testing.T) {
	store := conversation.NewStore(nil)
	boom := errors.New("unexpected status code: 500")
	mt := &mockTransport{fetch: func(context.Context, string, func(string)) error {
		return boom
	}}

	c := New(store, mt, nil, "sess")
	err := c.Ask(context.Background(), "金银花茶有什么功效？")
	require.ErrorIs(t, err, boom)

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, FailureText, msgs[1].Text)
	require.False(t, c.InFlight(), "in-flight flag must clear on failure")

	// The session stays usable after a failure.
	require.True(t, c.CanSend("下一个问题"))
}

func TestAsk_BlankInputIgnored(t *testing.T) {
	store := conversation.NewStore(nil)
	mt := &mockTransport{fetch: func(context.Context, string, func(string)) error {
		t.Fatal("transport must not run for a blank submission")
		return nil
	}}

	c := New(store, mt, nil, "sess")
	require.NoError(t, c.Ask(context.Background(), "   "))
	require.Zero(t, store.Len())
}

func TestAsk_TrimsInput(t *testing.T) {
	store := conversation.NewStore(nil)
	c := New(store, &mockTransport{}, nil, "sess")

	require.NoError(t, c.Ask(context.Background(), "  夏季适合喝什么茶？  "))
	msgs := store.Messages()
	require.Equal(t, "夏季适合喝什么茶？", msgs[0].Text)
}

// A submission while another request streams is dropped, not queued.
func TestAsk_RejectsConcurrentSubmission(t *testing.T) {
	store := conversation.NewStore(nil)
	started := make(chan struct{})
	release := make(chan struct{})

	mt := &mockTransport{fetch: func(ctx context.Context, q string, onUpdate func(string)) error {
		close(started)
		<-release
		onUpdate("答案")
		return nil
	}}

	c := New(store, mt, nil, "sess")
	done := make(chan error, 1)
	go func() { done <- c.Ask(context.Background(), "第一个问题") }()
	<-started

	require.False(t, c.CanSend("第二个问题"))
	require.NoError(t, c.Ask(context.Background(), "第二个问题"))
	require.Equal(t, 2, store.Len(), "ignored submission must not append messages")

	close(release)
	require.NoError(t, <-done)
	require.True(t, c.CanSend("第二个问题"))
	require.Equal(t, 2, store.Len())
}
