package feed

import (
	"time"

	"github.com/enso-app/enso/internal/models"
)

// recommendFor orders the working set for a detail view: items from the
// selected item's source first (keeping the session's shuffle order), then
// everything else, deduplicated by id with first occurrence winning. The
// selected item and its repeat clones are excluded.
func recommendFor(items []models.Item, selected models.Item) []models.Item {
	sameSource := make([]models.Item, 0, len(items))
	others := make([]models.Item, 0, len(items))
	for _, item := range items {
		if models.SameItem(item, selected) {
			continue
		}
		if item.Source == selected.Source {
			sameSource = append(sameSource, item)
		} else {
			others = append(others, item)
		}
	}

	merged := append(sameSource, others...)
	seen := make(map[string]struct{}, len(merged))
	out := make([]models.Item, 0, len(merged))
	for _, item := range merged {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Select opens the detail view for an item, pushing the previous selection
// (and the client's scroll position) onto the navigation stack.
func (s *Session) Select(itemID string, scrollY int) (models.DetailState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.DetailState{}, ErrSessionClosed
	}
	s.lastTouched = time.Now()

	var found *models.Item
	for i := range s.items {
		if s.items[i].ID == itemID {
			found = &s.items[i]
			break
		}
	}
	if found == nil {
		return models.DetailState{}, ErrItemNotFound
	}

	if s.selected == nil {
		s.baseScrollY = scrollY
	}
	s.stack = append(s.stack, selection{item: s.selected, scrollY: scrollY})

	item := *found
	s.selected = &item
	s.recommended = recommendFor(s.items, item)
	s.detailVisible = s.cfg.DetailInitialCount
	if s.detailVisible > len(s.recommended) {
		s.detailVisible = len(s.recommended)
	}

	return s.detailStateLocked(0), nil
}

// Back pops the navigation stack, restoring the previously selected item
// and scroll position, or clears the selection entirely when the stack is
// empty.
func (s *Session) Back() (models.DetailState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.DetailState{}, ErrSessionClosed
	}
	s.lastTouched = time.Now()

	if len(s.stack) == 0 {
		restore := s.baseScrollY
		s.clearSelectionLocked()
		return s.detailStateLocked(restore), nil
	}

	last := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	if last.item == nil {
		s.clearSelectionLocked()
		return s.detailStateLocked(last.scrollY), nil
	}

	s.selected = last.item
	s.recommended = recommendFor(s.items, *last.item)
	s.detailVisible = s.cfg.DetailInitialCount
	if s.detailVisible > len(s.recommended) {
		s.detailVisible = len(s.recommended)
	}
	return s.detailStateLocked(last.scrollY), nil
}

// DetailSentinel grows the detail view's recommendation page, the detail
// column's own infinite scroll, independent of the home feed.
func (s *Session) DetailSentinel() (models.DetailState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.DetailState{}, ErrSessionClosed
	}
	s.lastTouched = time.Now()
	if s.selected == nil {
		return models.DetailState{}, ErrNoSelection
	}

	if s.detailVisible < len(s.recommended) {
		s.detailVisible += s.cfg.DetailPageSize
		if s.detailVisible > len(s.recommended) {
			s.detailVisible = len(s.recommended)
		}
	}
	return s.detailStateLocked(0), nil
}

// Detail returns the current detail view without mutating it.
func (s *Session) Detail() (models.DetailState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.DetailState{}, ErrSessionClosed
	}
	return s.detailStateLocked(0), nil
}

func (s *Session) clearSelectionLocked() {
	s.selected = nil
	s.stack = nil
	s.recommended = nil
	s.detailVisible = 0
	s.baseScrollY = 0
}

func (s *Session) detailStateLocked(restoreScrollY int) models.DetailState {
	visible := s.detailVisible
	if visible > len(s.recommended) {
		visible = len(s.recommended)
	}
	return models.DetailState{
		Selected:       s.selected,
		Recommended:    append([]models.Item(nil), s.recommended[:visible]...),
		VisibleCount:   visible,
		TotalCount:     len(s.recommended),
		CanLoadMore:    visible < len(s.recommended),
		StackDepth:     len(s.stack),
		RestoreScrollY: restoreScrollY,
	}
}
