// Package feed implements the incremental feed-loading pipeline: the item
// normalizer, the dataset assembler, the prefetch engine, the release
// scheduler and the detail/recommendation view, held together per client by
// a Session.
package feed

import (
	"regexp"
	"strings"

	"github.com/enso-app/enso/internal/models"
)

var (
	hashtagPattern   = regexp.MustCompile(`#[^\s#,、\n]+`)
	delimiterPattern = regexp.MustCompile("[,，、\n]+")
)

// SplitTags extracts tags from a free-form string. Hashtags win when
// present; otherwise the string is split on commas (ASCII and Japanese) and
// whitespace. Leading '#' runs are stripped and duplicates removed, keeping
// first-occurrence order.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	if matches := hashtagPattern.FindAllString(s, -1); len(matches) > 0 {
		return dedupeTags(matches)
	}

	spaced := delimiterPattern.ReplaceAllString(s, " ")
	return dedupeTags(strings.Fields(spaced))
}

// ParseTags flattens a raw tag field. Each element goes through SplitTags so
// a single delimited string and a proper list produce the same result.
func ParseTags(tags models.FlexTags) []string {
	var out []string
	for _, t := range tags {
		out = append(out, SplitTags(t)...)
	}
	return dedupeExact(out)
}

func dedupeTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimLeft(strings.TrimSpace(t), "#")
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return dedupeExact(cleaned)
}

// dedupeExact removes duplicates by exact string match. Deliberately no
// case folding: "Dragon" and "dragon" are distinct tags.
func dedupeExact(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Normalize maps a heterogeneous raw record into the canonical item shape.
// Total: every field has a fallback and no input panics. URL well-formedness
// is not validated here.
func Normalize(rec models.RawRecord) models.Item {
	tags := make([]string, 0, len(rec.TagsJa)+len(rec.TagsEn))
	tags = append(tags, rec.TagsJa...)
	tags = append(tags, rec.TagsEn...)
	tags = append(tags, ParseTags(rec.Tags)...)

	return models.Item{
		ID:        rec.ID,
		Title:     firstNonEmpty(rec.TitleJa, rec.Title, rec.Name, "Untitled"),
		TitleEn:   firstNonEmpty(rec.TitleEn, rec.Title, rec.Name, ""),
		Tags:      dedupeExact(tags),
		Source:    firstNonEmpty(rec.Site, rec.Source, rec.SourceName, "Unknown"),
		ImageURL:  firstNonEmpty(rec.ImageURL, rec.Thumbnail, rec.Preview, models.PlaceholderImageURL),
		SourceURL: firstNonEmpty(rec.SourceURL, rec.URL, ""),
		IsCustom:  rec.IsCustom,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
