package models

// CreateSessionRequest opens a feed session. RepeatCount overrides the
// configured dataset repeat-expansion factor when positive.
type CreateSessionRequest struct {
	RepeatCount int `json:"repeat_count" binding:"omitempty,min=1,max=16"`
}

// ScrollRequest reports user scroll activity for a session.
type ScrollRequest struct {
	ScrollY int `json:"scroll_y" binding:"omitempty,min=0"`
}

// SelectionRequest opens the detail view for an item.
type SelectionRequest struct {
	ItemID  string `json:"item_id" binding:"required"`
	ScrollY int    `json:"scroll_y" binding:"omitempty,min=0"`
}

// FeedState is the observable state of a feed session.
type FeedState struct {
	SessionID       string `json:"session_id"`
	Displayed       []Item `json:"displayed"`
	DisplayedCount  int    `json:"displayed_count"`
	ReadyCount      int    `json:"ready_count"`
	HasMore         bool   `json:"has_more"`
	InitialLoading  bool   `json:"initial_loading"`
	LoadingMore     bool   `json:"loading_more"`
	ScrollLoading   bool   `json:"scroll_loading"`
	Refreshed       bool   `json:"refreshed"`
	LoadError       string `json:"load_error,omitempty"`
	ReleaseState    string `json:"release_state"`
	DatasetSize     int    `json:"dataset_size"`
	DatasetIdentity string `json:"dataset_identity"`
}

// DetailState is the observable state of a session's detail view.
type DetailState struct {
	Selected       *Item  `json:"selected"`
	Recommended    []Item `json:"recommended"`
	VisibleCount   int    `json:"visible_count"`
	TotalCount     int    `json:"total_count"`
	CanLoadMore    bool   `json:"can_load_more"`
	StackDepth     int    `json:"stack_depth"`
	RestoreScrollY int    `json:"restore_scroll_y"`
}

// DailyPick is the deterministic item-of-the-day selection.
type DailyPick struct {
	Date string `json:"date"`
	Item *Item  `json:"item"`
}
