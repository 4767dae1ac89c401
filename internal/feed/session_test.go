package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/models"
)

// stubLoader resolves image probes instantly, failing the URLs it is told to.
type stubLoader struct {
	mu    sync.Mutex
	fail  map[string]bool
	loads int
}

func (l *stubLoader) Load(_ context.Context, imageURL string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	if l.fail[imageURL] {
		return errors.New("probe failed")
	}
	return nil
}

func testFeedConfig() config.FeedConfig {
	return config.FeedConfig{
		RepeatCount:         1,
		PrefetchBatchSize:   50,
		ReadyBatchThreshold: 24,
		DisplayBatchSize:    24,
		MaxReadyQueue:       72,
		AutoReleaseLimit:    3,
		ReleaseDelay:        5 * time.Millisecond,
		IdlePrefetchDelay:   20 * time.Millisecond,
		DetailInitialCount:  70,
		DetailPageSize:      60,
		SessionTTL:          time.Minute,
		ImageProbeTimeout:   time.Second,
	}
}

func testItems(n int) []models.Item {
	items := make([]models.Item, n)
	sources := []string{"ModelHub", "PrintBay", "MeshWorks"}
	for i := range items {
		items[i] = models.Item{
			ID:        fmt.Sprintf("item-%d", i),
			Title:     fmt.Sprintf("Model %d", i),
			Source:    sources[i%len(sources)],
			ImageURL:  fmt.Sprintf("https://img.example/%d.jpg", i),
			SourceURL: fmt.Sprintf("https://example.com/models/%d", i),
		}
	}
	return items
}

func TestSessionFirstReleaseIsFullBatch(t *testing.T) {
	s := NewSession("s1", testItems(100), "ds-1", testFeedConfig(), &stubLoader{})
	defer s.Close()

	require.Eventually(t, func() bool {
		return s.Snapshot().DisplayedCount > 0
	}, 2*time.Second, time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, 24, snap.DisplayedCount, "first release reveals exactly one display batch")
	assert.False(t, snap.InitialLoading)
}

func TestSessionEventuallyDrainsDataset(t *testing.T) {
	s := NewSession("s1", testItems(100), "ds-1", testFeedConfig(), &stubLoader{})
	defer s.Close()

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		assert.LessOrEqual(t, snap.ReadyCount, 72, "ready queue exceeded its cap")
		// User keeps interacting so paused cycles restart.
		s.Scroll()
		s.Sentinel()
		return snap.DisplayedCount == 100 && !snap.HasMore
	}, 5*time.Second, 5*time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, 100, snap.DisplayedCount)
	assert.False(t, snap.HasMore)
}

func TestSessionDropsItemsWithFailedProbes(t *testing.T) {
	items := testItems(30)
	loader := &stubLoader{fail: map[string]bool{
		items[3].ImageURL: true,
		items[7].ImageURL: true,
	}}
	s := NewSession("s1", items, "ds-1", testFeedConfig(), loader)
	defer s.Close()

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		s.Sentinel()
		return snap.DisplayedCount == 28 && !snap.HasMore
	}, 5*time.Second, 5*time.Millisecond)

	displayed := s.Snapshot().Displayed
	for _, item := range displayed {
		assert.NotEqual(t, items[3].ID, item.ID, "failed probe leaked into the feed")
		assert.NotEqual(t, items[7].ID, item.ID, "failed probe leaked into the feed")
	}
}

func TestSessionPartialTailFlushed(t *testing.T) {
	// 10 items never reach the display batch size; exhaustion flushes them.
	s := NewSession("s1", testItems(10), "ds-1", testFeedConfig(), &stubLoader{})
	defer s.Close()

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.DisplayedCount == 10 && !snap.HasMore
	}, 2*time.Second, time.Millisecond)
}

func TestSessionTailFlushesAfterCooldown(t *testing.T) {
	// 30 items: one full batch of 24, then a tail of 6 that only becomes
	// releasable once the cooldown expires. No user interaction.
	s := NewSession("s1", testItems(30), "ds-1", testFeedConfig(), &stubLoader{})
	defer s.Close()

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.DisplayedCount == 30 && !snap.HasMore
	}, 2*time.Second, time.Millisecond)
}

func TestSessionAutoReleasePausesAtLimit(t *testing.T) {
	cfg := testFeedConfig()
	cfg.ReadyBatchThreshold = 2
	cfg.DisplayBatchSize = 2
	cfg.MaxReadyQueue = 30

	s := NewSession("s1", testItems(20), "ds-1", cfg, &stubLoader{})
	defer s.Close()

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.ReleaseState == "paused"
	}, 2*time.Second, time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, cfg.DisplayBatchSize*cfg.AutoReleaseLimit, snap.DisplayedCount,
		"consecutive auto releases exceeded the limit")

	// A scroll cancels the pause; the idle timer restarts the cycle.
	s.Scroll()
	require.Eventually(t, func() bool {
		return s.Snapshot().DisplayedCount > cfg.DisplayBatchSize*cfg.AutoReleaseLimit
	}, 2*time.Second, time.Millisecond)
}

func TestSessionEmptyDataset(t *testing.T) {
	s := NewSession("s1", nil, "ds-empty", testFeedConfig(), &stubLoader{})
	defer s.Close()

	snap := s.Snapshot()
	assert.False(t, snap.HasMore)
	assert.Zero(t, snap.DisplayedCount)
}

func TestSessionResetReplacesDisplayedOnce(t *testing.T) {
	// A long cooldown keeps the tail of the replacement dataset queued, so the
	// assertion observes exactly the replacing batch.
	cfg := testFeedConfig()
	cfg.ReleaseDelay = 200 * time.Millisecond
	s := NewSession("s1", testItems(30), "ds-1", cfg, &stubLoader{})
	defer s.Close()

	require.Eventually(t, func() bool {
		return s.Snapshot().DisplayedCount > 0
	}, 2*time.Second, time.Millisecond)

	replacement := make([]models.Item, 40)
	for i := range replacement {
		replacement[i] = models.Item{
			ID:        fmt.Sprintf("next-%d", i),
			Title:     fmt.Sprintf("Next %d", i),
			Source:    "ModelHub",
			ImageURL:  fmt.Sprintf("https://img.example/next-%d.jpg", i),
			SourceURL: fmt.Sprintf("https://example.com/next/%d", i),
		}
	}
	s.ResetDataset(replacement, "ds-2")

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.Refreshed && snap.DatasetIdentity == "ds-2"
	}, 2*time.Second, time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, 24, snap.DisplayedCount, "refresh replaces instead of appending")
	for _, item := range snap.Displayed {
		assert.Contains(t, item.ID, "next-", "stale item survived the dataset swap")
	}
}

func TestSessionResetKeepsDisplayedIDsSeen(t *testing.T) {
	items := testItems(30)
	s := NewSession("s1", items, "ds-1", testFeedConfig(), &stubLoader{})
	defer s.Close()

	require.Eventually(t, func() bool {
		return s.Snapshot().DisplayedCount > 0
	}, 2*time.Second, time.Millisecond)
	onScreen := s.Snapshot().Displayed

	// Same items under a new identity: everything already on screen must not
	// be re-enqueued for the replacement release.
	s.ResetDataset(items, "ds-2")

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		s.Sentinel()
		return !snap.HasMore
	}, 5*time.Second, 5*time.Millisecond)

	displayedAfter := make(map[string]int)
	for _, item := range s.Snapshot().Displayed {
		displayedAfter[item.ID]++
	}
	for _, item := range onScreen {
		assert.LessOrEqual(t, displayedAfter[item.ID], 1, "item %s released twice", item.ID)
	}
}

func TestSessionClosedIsInert(t *testing.T) {
	s := NewSession("s1", testItems(10), "ds-1", testFeedConfig(), &stubLoader{})
	s.Close()

	s.Scroll()
	s.Sentinel()
	s.Retry()
	_, err := s.Select("item-1", 0)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(testFeedConfig(), &stubLoader{})
	defer m.Stop()

	s := m.Create(testItems(10), "ds-1")
	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	m.Delete(s.ID)
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Get("no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerResetAll(t *testing.T) {
	m := NewManager(testFeedConfig(), &stubLoader{})
	defer m.Stop()

	a := m.Create(testItems(10), "ds-1")
	b := m.Create(testItems(10), "ds-1")

	m.ResetAll(func() ([]models.Item, string) {
		return testItems(20), "ds-2"
	})

	require.Eventually(t, func() bool {
		return a.Snapshot().DatasetIdentity == "ds-2" && b.Snapshot().DatasetIdentity == "ds-2"
	}, time.Second, time.Millisecond)
}
