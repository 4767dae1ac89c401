package search

import (
	"strings"

	"github.com/enso-app/enso/internal/models"
	"github.com/enso-app/enso/internal/utils"
)

// localMatch runs the fallback substring search over an in-memory corpus.
// Matching is accent-folded and case-insensitive; every whitespace-separated
// term of the query must appear in at least one indexed field.
func localMatch(corpus []models.Item, query string, limit int) []models.Item {
	terms := strings.Fields(utils.Fold(query))
	if len(terms) == 0 {
		return nil
	}

	var hits []models.Item
	for _, item := range corpus {
		if matchesAllTerms(item, terms) {
			hits = append(hits, item)
			if len(hits) >= limit {
				break
			}
		}
	}
	return hits
}

func matchesAllTerms(item models.Item, terms []string) bool {
	haystack := []string{
		utils.Fold(item.Title),
		utils.Fold(item.TitleEn),
		utils.Fold(item.Source),
	}
	for _, tag := range item.Tags {
		haystack = append(haystack, utils.Fold(tag))
	}

	for _, term := range terms {
		found := false
		for _, field := range haystack {
			if strings.Contains(field, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
