package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enso-app/enso/internal/models"
)

func TestRecommendForOrdersSameSourceFirst(t *testing.T) {
	items := []models.Item{
		{ID: "a", Source: "ModelHub"},
		{ID: "b", Source: "PrintBay"},
		{ID: "c", Source: "ModelHub"},
		{ID: "d", Source: "MeshWorks"},
		{ID: "e", Source: "ModelHub"},
	}

	got := recommendFor(items, items[0])

	ids := make([]string, len(got))
	for i, item := range got {
		ids[i] = item.ID
	}
	assert.Equal(t, []string{"c", "e", "b", "d"}, ids)
}

func TestRecommendForDedupesByID(t *testing.T) {
	items := []models.Item{
		{ID: "a", Source: "ModelHub"},
		{ID: "b", Source: "ModelHub"},
		{ID: "b", Source: "PrintBay"},
	}

	got := recommendFor(items, items[0])
	require.Len(t, got, 1)
	assert.Equal(t, "ModelHub", got[0].Source, "first occurrence wins")
}

func TestSelectBackRestoresPreviousItemAndScroll(t *testing.T) {
	s := NewSession("s1", testItems(10), "ds-1", testFeedConfig(), &stubLoader{})
	defer s.Close()

	first, err := s.Select("item-1", 340)
	require.NoError(t, err)
	require.NotNil(t, first.Selected)
	assert.Equal(t, "item-1", first.Selected.ID)
	assert.Equal(t, 1, first.StackDepth)
	assert.Equal(t, 9, first.TotalCount)

	second, err := s.Select("item-4", 120)
	require.NoError(t, err)
	assert.Equal(t, "item-4", second.Selected.ID)
	assert.Equal(t, 2, second.StackDepth)

	back, err := s.Back()
	require.NoError(t, err)
	require.NotNil(t, back.Selected)
	assert.Equal(t, "item-1", back.Selected.ID)
	assert.Equal(t, 120, back.RestoreScrollY)

	home, err := s.Back()
	require.NoError(t, err)
	assert.Nil(t, home.Selected)
	assert.Equal(t, 340, home.RestoreScrollY, "leaving the detail view restores the feed scroll position")
}

func TestBackOnEmptyStackClearsSelection(t *testing.T) {
	s := NewSession("s1", testItems(5), "ds-1", testFeedConfig(), &stubLoader{})
	defer s.Close()

	state, err := s.Back()
	require.NoError(t, err)
	assert.Nil(t, state.Selected)
	assert.Zero(t, state.RestoreScrollY)
}

func TestSelectUnknownItem(t *testing.T) {
	s := NewSession("s1", testItems(5), "ds-1", testFeedConfig(), &stubLoader{})
	defer s.Close()

	_, err := s.Select("nope", 0)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDetailSentinelGrowsVisibleWindow(t *testing.T) {
	cfg := testFeedConfig()
	cfg.DetailInitialCount = 3
	cfg.DetailPageSize = 2
	cfg.ReleaseDelay = time.Millisecond
	s := NewSession("s1", testItems(10), "ds-1", cfg, &stubLoader{})
	defer s.Close()

	state, err := s.Select("item-0", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, state.VisibleCount)
	assert.True(t, state.CanLoadMore)

	state, err = s.DetailSentinel()
	require.NoError(t, err)
	assert.Equal(t, 5, state.VisibleCount)

	for state.CanLoadMore {
		state, err = s.DetailSentinel()
		require.NoError(t, err)
	}
	assert.Equal(t, 9, state.VisibleCount, "window capped at the recommendation count")

	state, err = s.DetailSentinel()
	require.NoError(t, err)
	assert.Equal(t, 9, state.VisibleCount)
}

func TestDetailSentinelWithoutSelection(t *testing.T) {
	s := NewSession("s1", testItems(5), "ds-1", testFeedConfig(), &stubLoader{})
	defer s.Close()

	_, err := s.DetailSentinel()
	assert.ErrorIs(t, err, ErrNoSelection)
}
