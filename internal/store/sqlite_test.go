package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enso-app/enso/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReplaceAndGetItems(t *testing.T) {
	s := newTestStore(t)

	records := []models.RawRecord{
		{ID: "a", Title: "First", ImageURL: "https://img.example/a.jpg"},
		{ID: "b", Title: "Second", ImageURL: "https://img.example/b.jpg"},
	}
	require.NoError(t, s.ReplaceItems(records))

	got, err := s.GetItems()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID, "upload order preserved")
	assert.Equal(t, "b", got[1].ID)

	count, err := s.CountItems()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A second replace drops the previous dataset entirely.
	require.NoError(t, s.ReplaceItems([]models.RawRecord{{ID: "c", Title: "Third"}}))
	got, err = s.GetItems()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestUpsertItemsMergesAndAppends(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.ReplaceItems([]models.RawRecord{
		{ID: "a", Title: "Old Title"},
		{ID: "b", Title: "Keep"},
	}))
	require.NoError(t, s.UpsertItems([]models.RawRecord{
		{ID: "a", Title: "New Title"},
		{ID: "c", Title: "Appended"},
	}))

	got, err := s.GetItems()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "New Title", got[0].Title, "existing record updated in place")
	assert.Equal(t, "Appended", got[2].Title, "new record appended after the tail")
}

func TestCustomItemLifecycle(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateCustomItem("user-1", &models.CustomItemRequest{
		Title:    "My Model",
		ImageURL: "https://img.example/mine.jpg",
		Tags:     []string{"mine"},
	})
	require.NoError(t, err)
	assert.Contains(t, created.ID, "custom-")

	items, err := s.GetCustomItems("user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "My Model", items[0].Title)
	assert.Equal(t, []string{"mine"}, items[0].Tags)

	others, err := s.GetCustomItems("user-2")
	require.NoError(t, err)
	assert.Empty(t, others, "custom items are per user")

	deleted, err := s.DeleteCustomItem("user-2", created.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "cannot delete another user's item")

	deleted, err = s.DeleteCustomItem("user-1", created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestSavedItemLifecycle(t *testing.T) {
	s := newTestStore(t)

	item := models.Item{ID: "m-1", Title: "Dragon", ImageURL: "https://img.example/d.jpg"}
	saved, err := s.SaveItem("user-1", item)
	require.NoError(t, err)
	assert.Equal(t, item.Key(), saved.Key)

	// Saving twice is idempotent.
	_, err = s.SaveItem("user-1", item)
	require.NoError(t, err)

	items, err := s.GetSavedItems("user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dragon", items[0].Item.Title)

	deleted, err := s.DeleteSavedItem("user-1", saved.Key)
	require.NoError(t, err)
	assert.True(t, deleted)

	items, err = s.GetSavedItems("user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSaveItemWithoutKey(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SaveItem("user-1", models.Item{Title: "No Key"})
	assert.Error(t, err)
}

func TestAdjustLikeCountClampsAtZero(t *testing.T) {
	s := newTestStore(t)

	count, err := s.AdjustLikeCount("key-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = s.AdjustLikeCount("key-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = s.AdjustLikeCount("key-1", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = s.AdjustLikeCount("key-2", -1)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "unliking an unseen key stays at zero")
}

func TestGetLikeCounts(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AdjustLikeCount("key-1", 1)
	require.NoError(t, err)

	counts, err := s.GetLikeCounts([]string{"key-1", "key-missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"key-1": 1}, counts)
}

func TestCreateFeedback(t *testing.T) {
	s := newTestStore(t)

	fb, err := s.CreateFeedback("user-1", &models.FeedbackRequest{
		Message: "great app",
		Section: "home",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fb.ID)
	assert.Equal(t, "great app", fb.Message)
}
