package feed

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/enso-app/enso/internal/models"
)

func TestAssembleLengthAndUniqueIDs(t *testing.T) {
	bulk := make([]models.RawRecord, 30)
	for i := range bulk {
		bulk[i] = models.RawRecord{
			Title:     "Model",
			SourceURL: "https://example.com/models/" + strings.Repeat("x", i+1),
			ImageURL:  "https://img.example/x.jpg",
		}
	}
	custom := []models.RawRecord{
		{Title: "Mine", ImageURL: "https://img.example/mine.jpg", IsCustom: true},
	}

	const repeat = 3
	items := Assemble(custom, bulk, repeat, rand.New(rand.NewSource(1)))

	if expected := (len(bulk) + len(custom)) * repeat; len(items) != expected {
		t.Fatalf("len(items) = %d, expected %d", len(items), expected)
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" {
			t.Fatalf("item %q has empty id", item.Title)
		}
		if _, dup := seen[item.ID]; dup {
			t.Fatalf("duplicate id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
}

func TestAssembleCollidingRecordsStayDistinct(t *testing.T) {
	// Two listings sharing a source_url, a real dataset artifact.
	bulk := []models.RawRecord{
		{Title: "Red Variant", SourceURL: "https://example.com/models/1", ImageURL: "https://img.example/red.jpg"},
		{Title: "Blue Variant", SourceURL: "https://example.com/models/1", ImageURL: "https://img.example/blue.jpg"},
	}

	items := Assemble(nil, bulk, 2, rand.New(rand.NewSource(7)))
	if len(items) != 4 {
		t.Fatalf("len(items) = %d, expected 4", len(items))
	}
	seen := make(map[string]struct{})
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			t.Fatalf("duplicate id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
}

func TestAssembleRepeatFloor(t *testing.T) {
	bulk := []models.RawRecord{{Title: "One", ImageURL: "https://img.example/1.jpg"}}
	items := Assemble(nil, bulk, 0, rand.New(rand.NewSource(3)))
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, expected 1 with repeat floored to 1", len(items))
	}
}

func TestAssembleCustomItemsIncluded(t *testing.T) {
	custom := []models.RawRecord{
		{Title: "Mine", ImageURL: "https://img.example/mine.jpg", IsCustom: true},
	}
	bulk := []models.RawRecord{
		{Title: "Theirs", SourceURL: "https://example.com/m/1", ImageURL: "https://img.example/1.jpg"},
	}

	items := Assemble(custom, bulk, 1, rand.New(rand.NewSource(5)))
	var foundCustom bool
	for _, item := range items {
		if item.IsCustom && item.Title == "Mine" {
			foundCustom = true
		}
	}
	if !foundCustom {
		t.Fatal("custom item missing from assembled set")
	}
}

func TestMergeCustomLaterWins(t *testing.T) {
	records := []models.RawRecord{
		{Title: "Old", SourceURL: "https://example.com/m/1"},
		{Title: "Other", ID: "c-2"},
		{Title: "New", SourceURL: "https://example.com/m/1"},
	}

	merged := MergeCustom(records)
	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, expected 2", len(merged))
	}
	if merged[0].Title != "New" {
		t.Errorf("merged[0].Title = %q, expected the later submission to win", merged[0].Title)
	}
	for _, rec := range merged {
		if !rec.IsCustom {
			t.Errorf("record %q not marked custom", rec.Title)
		}
	}
}

func TestDailyPickDeterministic(t *testing.T) {
	items := Assemble(nil, []models.RawRecord{
		{Title: "A", SourceURL: "https://example.com/a", ImageURL: "https://img.example/a.jpg"},
		{Title: "B", SourceURL: "https://example.com/b", ImageURL: "https://img.example/b.jpg"},
		{Title: "C", SourceURL: "https://example.com/c", ImageURL: "https://img.example/c.jpg"},
	}, 1, rand.New(rand.NewSource(9)))

	first := DailyPick(items, "2026-08-30")
	second := DailyPick(items, "2026-08-30")
	if first == nil || second == nil {
		t.Fatal("DailyPick returned nil for non-empty set")
	}
	if first.ID != second.ID {
		t.Errorf("same date key picked %q then %q", first.ID, second.ID)
	}

	if pick := DailyPick(nil, "2026-08-30"); pick != nil {
		t.Errorf("DailyPick(empty) = %+v, expected nil", pick)
	}
}
