package models

import "time"

// CustomItem is a user-submitted model link as persisted.
type CustomItem struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	ImageURL    string    `json:"image_url"`
	SourceURL   string    `json:"source_url"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// RawRecord maps a custom item into the shared normalization path.
func (c CustomItem) RawRecord() RawRecord {
	return RawRecord{
		ID:        c.ID,
		Title:     c.Title,
		Tags:      FlexTags(c.Tags),
		Source:    c.Source,
		ImageURL:  c.ImageURL,
		SourceURL: c.SourceURL,
		IsCustom:  true,
	}
}

// SavedItem is an entry in a user's saved collection.
type SavedItem struct {
	Key       string    `json:"key"`
	UserID    string    `json:"user_id"`
	Item      Item      `json:"item"`
	CreatedAt time.Time `json:"created_at"`
}

// Feedback is a persisted free-text submission.
type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Section   string    `json:"section"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomItemRequest is a user-submitted model link.
type CustomItemRequest struct {
	Title       string   `json:"title" binding:"required"`
	Source      string   `json:"source"`
	ImageURL    string   `json:"image_url" binding:"required,url"`
	SourceURL   string   `json:"source_url" binding:"omitempty,url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// SavedItemRequest toggles an item in the caller's saved collection.
type SavedItemRequest struct {
	Item Item `json:"item" binding:"required"`
}

// LikeToggleRequest toggles the caller's like on an item.
type LikeToggleRequest struct {
	Item  Item `json:"item" binding:"required"`
	Liked bool `json:"liked"`
}

// LikeToggleResponse carries the post-toggle tally. Synced is false when the
// store write failed and the count is only the optimistic local value.
type LikeToggleResponse struct {
	Key    string `json:"key"`
	Count  int    `json:"count"`
	Liked  bool   `json:"liked"`
	Synced bool   `json:"synced"`
}

// FeedbackRequest is a free-text submission.
type FeedbackRequest struct {
	Message string `json:"message" binding:"required"`
	Section string `json:"section"`
	Query   string `json:"query"`
}

// UserDescriptor is the nullable current-user shape yielded by the
// authentication gateway.
type UserDescriptor struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
