package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndFind(t *testing.T) {
	s := NewStore(nil)

	userID := s.Append(RoleUser, "金银花茶有什么功效？")
	assistantID := s.Append(RoleAssistant, "正在思考…")
	require.NotEqual(t, userID, assistantID)
	require.Equal(t, 2, s.Len())

	m, ok := s.Find(assistantID)
	require.True(t, ok)
	require.Equal(t, RoleAssistant, m.Role)
	require.Equal(t, "正在思考…", m.Text)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, userID, msgs[0].ID)
	require.Equal(t, assistantID, msgs[1].ID)
}

func TestStore_UpdateReplacesText(t *testing.T) {
	s := NewStore(nil)
	id := s.Append(RoleAssistant, "正在思考…")

	s.Update(id, "金银花")
	s.Update(id, "金银花茶有清热功效")

	m, ok := s.Find(id)
	require.True(t, ok)
	require.Equal(t, "金银花茶有清热功效", m.Text)
	require.Equal(t, 1, s.Len(), "update must not append")
}

// A missing id is a documented no-op, not an error.
func TestStore_UpdateMissingIDIsSilentNoop(t *testing.T) {
	var refreshes int
	s := NewStore(func() { refreshes++ })
	id := s.Append(RoleUser, "hello")

	before := refreshes
	s.Update("no-such-id", "ignored")
	require.Equal(t, before, refreshes, "a missed update must not fire a refresh")

	m, ok := s.Find(id)
	require.True(t, ok)
	require.Equal(t, "hello", m.Text)
	require.Equal(t, 1, s.Len())
}

func TestStore_RefreshFiresOnAppendAndUpdate(t *testing.T) {
	var refreshes int
	s := NewStore(func() { refreshes++ })

	id := s.Append(RoleAssistant, "a")
	require.Equal(t, 1, refreshes)

	s.Update(id, "ab")
	require.Equal(t, 2, refreshes)
}

// The refresh hook reads back from the store, so it must run outside the lock.
func TestStore_RefreshMayReadStore(t *testing.T) {
	var last string
	var store *Store
	store = NewStore(func() {
		msgs := store.Messages()
		last = msgs[len(msgs)-1].Text
	})
	id := store.Append(RoleAssistant, "first")
	require.Equal(t, "first", last)
	store.Update(id, "second")
	require.Equal(t, "second", last)
}

func TestStore_FindReturnsCopy(t *testing.T) {
	s := NewStore(nil)
	id := s.Append(RoleUser, "original")

	m, _ := s.Find(id)
	m.Text = "mutated"

	again, _ := s.Find(id)
	require.Equal(t, "original", again.Text)
}
