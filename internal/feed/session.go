package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/models"
)

var (
	ErrSessionClosed = errors.New("feed session is closed")
	ErrItemNotFound  = errors.New("item not found in session dataset")
	ErrNoSelection   = errors.New("no item selected")
)

// autoCycleState tracks the auto-release cycle: a bounded burst of automatic
// releases triggered by queue fullness absent user scrolling.
//
// Transitions:
//
//	idle   -> active  queue reached the ready threshold while release allowed
//	active -> paused  loop limit hit, queue starved, or cooldown expired
//	active -> idle    user scrolled (cycle canceled immediately)
//	paused -> idle    queue drained below the threshold, or user scrolled
type autoCycleState int

const (
	cycleIdle autoCycleState = iota
	cycleActive
	cyclePaused
)

type selection struct {
	item    *models.Item
	scrollY int
}

// Session owns one client's feed state: the shuffled working set, the
// prefetch cursor and seen-id set, the ready queue, the displayed list, the
// release scheduler and the detail view. All fields are guarded by mu;
// image probes run outside the lock and re-enter through onBatchDone /
// enqueueReady, which re-check the dataset generation so loads that finish
// after a reset are ignored.
type Session struct {
	ID     string
	cfg    config.FeedConfig
	loader ImageLoader

	mu sync.Mutex

	items      []models.Item
	datasetKey string
	generation int

	cursor      int
	seen        map[string]struct{}
	ready       []models.Item
	displayed   []models.Item
	prefetching bool

	refreshing     bool
	refreshed      bool
	hasMore        bool
	initialLoading bool
	loadErr        string

	scrollLoading  bool
	scrollStartLen int

	releaseAllowed bool
	cooldown       *time.Timer
	cycle          autoCycleState
	releaseLoops   int

	idleTimer     *time.Timer
	userScrolling bool

	selected      *models.Item
	stack         []selection
	detailVisible int
	recommended   []models.Item
	baseScrollY   int

	lastTouched time.Time
	closed      bool
}

// NewSession creates a session over an already assembled working set and
// starts the first prefetch pass plus the idle timer.
func NewSession(id string, items []models.Item, datasetKey string, cfg config.FeedConfig, loader ImageLoader) *Session {
	s := &Session{
		ID:             id,
		cfg:            cfg,
		loader:         loader,
		items:          items,
		datasetKey:     datasetKey,
		seen:           make(map[string]struct{}),
		releaseAllowed: true,
		initialLoading: true,
		hasMore:        len(items) > 0,
		lastTouched:    time.Now(),
	}

	s.mu.Lock()
	s.schedulePrefetchLocked()
	s.armIdleTimerLocked()
	s.mu.Unlock()
	return s
}

// Close stops timers and marks the session dead. In-flight image probes are
// not aborted; their callbacks see closed and drop their results.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cooldown != nil {
		s.cooldown.Stop()
		s.cooldown = nil
	}
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
}

// LastTouched reports the last client interaction, for TTL eviction.
func (s *Session) LastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouched
}

// ResetDataset swaps in a new working set after a dataset-identity change.
// Ids already on screen stay seen so the new scan does not re-enqueue them;
// everything else (queue, cursor, lock, error) starts over, and the next
// release replaces the displayed list wholesale.
func (s *Session) ResetDataset(items []models.Item, datasetKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	preserved := make(map[string]struct{}, len(s.displayed))
	for _, item := range s.displayed {
		if key := item.Key(); key != "" {
			preserved[key] = struct{}{}
		}
	}

	s.items = items
	s.datasetKey = datasetKey
	s.generation++
	s.seen = preserved
	s.ready = nil
	s.cursor = 0
	s.prefetching = false
	s.loadErr = ""
	s.refreshing = len(s.displayed) > 0
	s.initialLoading = len(s.displayed) == 0
	s.updateHasMoreLocked()
	s.schedulePrefetchLocked()
}

/* ----- prefetch engine ----- */

// schedulePrefetchLocked scans forward from the cursor collecting unseen
// items and dispatches their image probes. Caller holds mu.
func (s *Session) schedulePrefetchLocked() {
	if s.closed || s.prefetching || len(s.items) == 0 {
		return
	}
	remainingSpace := s.cfg.MaxReadyQueue - len(s.ready)
	if remainingSpace <= 0 {
		return
	}

	s.loadErr = ""
	s.prefetching = true

	var batch []models.Item
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.loadErr = fmt.Sprintf("failed to load items: %v", r)
				s.prefetching = false
				batch = nil
			}
		}()

		targetSize := s.cfg.PrefetchBatchSize
		if remainingSpace < targetSize {
			targetSize = remainingSpace
		}
		for s.cursor < len(s.items) && len(batch) < targetSize {
			item := s.items[s.cursor]
			s.cursor++
			key := item.Key()
			if key == "" {
				continue
			}
			if _, dup := s.seen[key]; dup {
				continue
			}
			// Marked seen before the image resolves: at-most-once enqueue
			// even with overlapping scans.
			s.seen[key] = struct{}{}
			batch = append(batch, item)
		}
	}()

	if len(batch) == 0 {
		s.prefetching = false
		s.updateHasMoreLocked()
		if !s.hasMore && len(s.ready) > 0 {
			s.releaseReadyBatchLocked()
		}
		return
	}

	go s.probeBatch(s.generation, batch)
}

// probeBatch races the batch's image loads and joins on full completion
// before deciding whether to scan again. Runs without the lock.
func (s *Session) probeBatch(gen int, batch []models.Item) {
	var wg sync.WaitGroup
	for _, item := range batch {
		if item.ImageURL == "" {
			// No image, never shown; still counts as completed.
			continue
		}
		wg.Add(1)
		go func(item models.Item) {
			defer wg.Done()
			if err := s.loader.Load(context.Background(), item.ImageURL); err != nil {
				// Unreachable image: the item is dropped, not retried.
				return
			}
			s.enqueueReady(gen, item)
		}(item)
	}
	wg.Wait()
	s.onBatchDone(gen)
}

func (s *Session) enqueueReady(gen int, item models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}
	s.ready = append(s.ready, item)
	s.afterQueueChangeLocked()
}

func (s *Session) onBatchDone(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}
	s.prefetching = false
	s.updateHasMoreLocked()
	if len(s.ready) < s.cfg.ReadyBatchThreshold && s.cursor < len(s.items) {
		s.schedulePrefetchLocked()
	}
	if !s.hasMore && len(s.ready) > 0 {
		s.releaseReadyBatchLocked()
	}
}

// afterQueueChangeLocked applies the reactions to a ready-queue length
// change: clearing a consumed pause, starting or feeding an auto cycle,
// flushing the tail when the dataset is exhausted, and topping up the scan.
func (s *Session) afterQueueChangeLocked() {
	s.updateHasMoreLocked()

	if len(s.ready) < s.cfg.ReadyBatchThreshold {
		if s.cycle == cyclePaused {
			s.cycle = cycleIdle
		}
	} else {
		s.startAutoReleaseCycleLocked()
	}

	s.releaseReadyBatchLocked()

	if !s.hasMore && len(s.ready) > 0 {
		s.releaseReadyBatchLocked()
	}
	if s.hasMore && len(s.ready) < s.cfg.ReadyBatchThreshold {
		s.schedulePrefetchLocked()
	}
}

// updateHasMoreLocked recomputes whether the scan can still produce items:
// cursor headroom or a probe batch in flight. Items sitting in the ready
// queue do not count; exhaustion is what lets a partial tail release.
func (s *Session) updateHasMoreLocked() {
	s.hasMore = s.cursor < len(s.items) || s.prefetching
}

/* ----- release scheduler ----- */

// releaseReadyBatchLocked moves one batch from the ready queue into the
// displayed list. Returns false whenever the gate, the auto-cycle cap or the
// required batch size blocks the move. Caller holds mu.
func (s *Session) releaseReadyBatchLocked() bool {
	if !s.releaseAllowed {
		return false
	}
	if len(s.ready) == 0 {
		return false
	}
	if s.cycle == cycleActive && s.releaseLoops >= s.cfg.AutoReleaseLimit {
		s.cycle = cyclePaused
		s.releaseLoops = 0
		return false
	}

	requiredCount := s.cfg.DisplayBatchSize
	if !s.hasMore {
		// Dataset exhausted: flush whatever remains, even a partial batch.
		requiredCount = 1
	}
	if len(s.ready) < requiredCount {
		if s.cycle == cycleActive {
			s.cycle = cyclePaused
			s.releaseLoops = 0
		}
		return false
	}

	takeCount := s.cfg.DisplayBatchSize
	if len(s.ready) < takeCount {
		takeCount = len(s.ready)
	}
	batch := s.ready[:takeCount]
	s.ready = append([]models.Item(nil), s.ready[takeCount:]...)

	if s.refreshing {
		s.refreshing = false
		s.refreshed = true
		s.displayed = append([]models.Item(nil), batch...)
	} else {
		s.refreshed = false
		s.displayed = append(s.displayed, batch...)
	}
	s.initialLoading = false

	if s.cycle == cycleActive {
		s.releaseLoops++
	}
	s.releaseAllowed = false
	s.scheduleReleaseCooldownLocked()
	s.updateHasMoreLocked()
	return true
}

func (s *Session) scheduleReleaseCooldownLocked() {
	if s.cooldown != nil {
		s.cooldown.Stop()
	}
	s.cooldown = time.AfterFunc(s.cfg.ReleaseDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.releaseAllowed = true
		s.cooldown = nil
		if s.cycle == cycleActive &&
			s.releaseLoops < s.cfg.AutoReleaseLimit &&
			len(s.ready) >= s.cfg.DisplayBatchSize {
			s.releaseReadyBatchLocked()
			return
		}
		// Exhausted dataset: keep flushing the tail, one cooldown apart.
		if !s.hasMore && len(s.ready) > 0 {
			s.releaseReadyBatchLocked()
			return
		}
		if s.cycle == cycleActive {
			s.cycle = cyclePaused
			s.releaseLoops = 0
		}
	})
}

func (s *Session) startAutoReleaseCycleLocked() {
	if s.cycle != cycleIdle {
		return
	}
	if !s.releaseAllowed {
		return
	}
	if len(s.ready) < s.cfg.ReadyBatchThreshold {
		return
	}
	s.cycle = cycleActive
	s.releaseLoops = 0
	s.releaseReadyBatchLocked()
}

/* ----- scroll / idle observer ----- */

// Sentinel handles a viewport intersection with the end-of-list marker:
// raise the scroll-loading indicator and scan for more items.
func (s *Session) Sentinel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.lastTouched = time.Now()
	if !s.hasMore {
		return
	}
	s.scrollStartLen = len(s.displayed)
	s.scrollLoading = true
	s.schedulePrefetchLocked()
}

// Scroll handles a user-scroll report: any auto-release cycle is canceled
// immediately and the idle timer restarts.
func (s *Session) Scroll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.lastTouched = time.Now()
	s.userScrolling = true
	s.cycle = cycleIdle
	s.releaseLoops = 0
	s.armIdleTimerLocked()
}

func (s *Session) armIdleTimerLocked() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = time.AfterFunc(s.cfg.IdlePrefetchDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.userScrolling = false
		if s.hasMore && len(s.ready) < s.cfg.MaxReadyQueue {
			s.schedulePrefetchLocked()
		}
		if len(s.ready) >= s.cfg.ReadyBatchThreshold {
			s.startAutoReleaseCycleLocked()
		}
	})
}

// Retry re-invokes prefetching after a user-visible load error.
func (s *Session) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.lastTouched = time.Now()
	if s.hasMore && len(s.ready) < s.cfg.ReadyBatchThreshold && s.prefetching {
		return
	}
	s.loadErr = ""
	s.scrollStartLen = len(s.displayed)
	s.scrollLoading = true
	s.schedulePrefetchLocked()
}

/* ----- state snapshot ----- */

// Snapshot returns the observable feed state.
func (s *Session) Snapshot() models.FeedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTouched = time.Now()

	if s.scrollLoading {
		if s.loadErr != "" || !s.hasMore || len(s.displayed) > s.scrollStartLen {
			s.scrollLoading = false
		}
	}

	displayed := append([]models.Item(nil), s.displayed...)
	return models.FeedState{
		SessionID:       s.ID,
		Displayed:       displayed,
		DisplayedCount:  len(displayed),
		ReadyCount:      len(s.ready),
		HasMore:         s.hasMore,
		InitialLoading:  s.initialLoading,
		LoadingMore:     s.hasMore && len(s.ready) < s.cfg.ReadyBatchThreshold,
		ScrollLoading:   s.scrollLoading,
		Refreshed:       s.refreshed,
		LoadError:       s.loadErr,
		ReleaseState:    s.releaseStateLocked(),
		DatasetSize:     len(s.items),
		DatasetIdentity: s.datasetKey,
	}
}

func (s *Session) releaseStateLocked() string {
	if !s.releaseAllowed {
		return "cooling-down"
	}
	switch s.cycle {
	case cycleActive:
		return "auto-cycling"
	case cyclePaused:
		return "paused"
	default:
		return "idle"
	}
}
