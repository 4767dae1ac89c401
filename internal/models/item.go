package models

import "net/url"

// PlaceholderImageURL is substituted when a record carries no image at all.
const PlaceholderImageURL = "https://placehold.co/600x800?text=No+Image"

// RawRecord is the wire shape shared by the bulk dataset, the search index
// and the custom-item collection. Every field is optional; the sites the
// records were scraped from disagree on naming, so the normalizer resolves
// each attribute through a fallback chain.
type RawRecord struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	TitleEn string `json:"title_en,omitempty"`
	TitleJa string `json:"title_ja,omitempty"`
	Name    string `json:"name,omitempty"`

	Tags   FlexTags `json:"tags,omitempty"`
	TagsEn []string `json:"tags_en,omitempty"`
	TagsJa []string `json:"tags_ja,omitempty"`

	Site       string `json:"site,omitempty"`
	Source     string `json:"source,omitempty"`
	SourceName string `json:"source_name,omitempty"`

	SourceURL string `json:"source_url,omitempty"`
	URL       string `json:"url,omitempty"`

	ImageURL  string `json:"image_url,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Preview   string `json:"preview,omitempty"`

	DescriptionEn string `json:"description_en,omitempty"`
	DescriptionJa string `json:"description_ja,omitempty"`

	Price  string `json:"price,omitempty"`
	IsFree bool   `json:"is_free,omitempty"`

	IsCustom bool `json:"isCustom,omitempty"`
}

// Item is the canonical model-link record shown as a card.
type Item struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	TitleEn   string   `json:"titleEn"`
	Tags      []string `json:"tags"`
	Source    string   `json:"source"`
	ImageURL  string   `json:"image_url"`
	SourceURL string   `json:"source_url,omitempty"`
	IsCustom  bool     `json:"isCustom"`
}

// Key returns the identity used by the seen-id set: id, then source URL,
// then image URL. Empty when the item has none of them.
func (it Item) Key() string {
	if it.ID != "" {
		return it.ID
	}
	if it.SourceURL != "" {
		return it.SourceURL
	}
	return it.ImageURL
}

// LikeKey returns the document key used for like tallies: the URL-escaped
// first non-empty of source URL, image URL, id.
func (it Item) LikeKey() string {
	raw := it.SourceURL
	if raw == "" {
		raw = it.ImageURL
	}
	if raw == "" {
		raw = it.ID
	}
	if raw == "" {
		return ""
	}
	return url.QueryEscape(raw)
}

// SameItem reports whether two items refer to the same record, matching by
// id first and source URL second.
func SameItem(a, b Item) bool {
	if a.ID != "" && b.ID != "" && a.ID == b.ID {
		return true
	}
	return a.SourceURL != "" && b.SourceURL != "" && a.SourceURL == b.SourceURL
}
