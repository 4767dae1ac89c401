package feed

import (
	"fmt"
	"math/rand"

	"github.com/enso-app/enso/internal/models"
	"github.com/enso-app/enso/internal/utils"
)

// Assemble produces the shuffled working set for a feed session: custom
// items first, then the bulk dataset, everything normalized, expanded by the
// repeat factor with stable-but-unique ids, and Fisher-Yates shuffled.
//
// The shuffle re-runs on every call, so two sessions over the same dataset
// see different orders. rnd may be nil, in which case the shared generator
// is used; tests pass a seeded one.
func Assemble(custom, bulk []models.RawRecord, repeat int, rnd *rand.Rand) []models.Item {
	if repeat < 1 {
		repeat = 1
	}

	base := make([]models.Item, 0, len(custom)+len(bulk))
	for _, rec := range custom {
		base = append(base, Normalize(rec))
	}
	for _, rec := range bulk {
		base = append(base, Normalize(rec))
	}

	expanded := make([]models.Item, 0, len(base)*repeat)
	assigned := make(map[string]struct{}, len(base)*repeat)
	for r := 0; r < repeat; r++ {
		for i, item := range base {
			clone := item
			clone.ID = assignID(item, i, r, assigned)
			expanded = append(expanded, clone)
		}
	}

	shuffle(expanded, rnd)
	return expanded
}

// MergeCustom collapses duplicate custom-item submissions. Records are keyed
// by source URL, falling back to id; the later submission wins and every
// survivor is forced custom.
func MergeCustom(records []models.RawRecord) []models.RawRecord {
	type slot struct {
		index int
		rec   models.RawRecord
	}
	byKey := make(map[string]*slot, len(records))
	order := 0

	for _, rec := range records {
		rec.IsCustom = true
		key := firstNonEmpty(rec.SourceURL, rec.URL, rec.ID)
		if key == "" {
			key = fmt.Sprintf("anon-%d", order)
		}
		if existing, ok := byKey[key]; ok {
			existing.rec = rec
			continue
		}
		byKey[key] = &slot{index: order, rec: rec}
		order++
	}

	merged := make([]models.RawRecord, len(byKey))
	for _, s := range byKey {
		merged[s.index] = s.rec
	}
	return merged
}

// assignID derives the repeat-suffixed id for an expanded item. The base id
// is the first non-empty of existing id, source URL and image URL, falling
// back to a source+title composite. Records that still collide (two listings
// sharing a source_url, say) get a short content hash appended so ids stay
// pairwise distinct.
func assignID(item models.Item, index, repeatIdx int, assigned map[string]struct{}) string {
	baseID := firstNonEmpty(
		item.ID,
		item.SourceURL,
		item.ImageURL,
		fmt.Sprintf("%s-%s-%d", firstNonEmpty(item.Source, "item"), item.Title, index),
	)

	id := fmt.Sprintf("%s--%d", baseID, repeatIdx)
	if _, taken := assigned[id]; taken {
		id = fmt.Sprintf("%s~%s--%d", baseID, utils.ShortHash(item.Title, item.ImageURL, fmt.Sprint(index)), repeatIdx)
	}
	for n := 2; ; n++ {
		if _, taken := assigned[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s~%d--%d", baseID, n, repeatIdx)
	}
	assigned[id] = struct{}{}
	return id
}

// shuffle is an in-place Fisher-Yates over a uniform [0,1) generator.
func shuffle(items []models.Item, rnd *rand.Rand) {
	random := rand.Float64
	if rnd != nil {
		random = rnd.Float64
	}
	for i := len(items) - 1; i > 0; i-- {
		j := int(random() * float64(i+1))
		items[i], items[j] = items[j], items[i]
	}
}

// DailyPick deterministically selects one item for a date key such as
// "2026-08-30": same key, same pick, for any client.
func DailyPick(items []models.Item, dateKey string) *models.Item {
	if len(items) == 0 {
		return nil
	}
	var hash uint32
	for _, ch := range []byte(dateKey) {
		hash = hash*31 + uint32(ch)
	}
	pick := items[int(hash%uint32(len(items)))]
	return &pick
}
