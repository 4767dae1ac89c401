package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/enso-app/enso/internal/models"
)

// ContentID computes the stable per-record document id used by the upload
// pipeline: a SHA-256 over the record's identifying fields, so re-running an
// upload upserts instead of duplicating. index breaks ties for records with
// no identifying fields at all.
func ContentID(rec models.RawRecord, index int) string {
	candidates := []string{
		rec.SourceURL,
		rec.ImageURL,
		rec.TitleEn,
		rec.Title,
		rec.Name,
		rec.TitleJa,
		rec.ID,
	}

	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("item-%d", index))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "||")))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first 8 hex characters of a SHA-256 over the given
// parts. Used to disambiguate colliding feed item ids.
func ShortHash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "||")))
	return hex.EncodeToString(sum[:])[:8]
}
